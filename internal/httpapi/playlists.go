package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tubeshelf/internal/app/playlists"
	"tubeshelf/internal/apperr"
	"tubeshelf/internal/auth"
	"tubeshelf/internal/logging"
	"tubeshelf/internal/models"
)

type playlistRequest struct {
	Title string `json:"title"`
}

type playlistResponse struct {
	*models.Playlist
	Path   string          `json:"path"`
	Videos []*models.Video `json:"videos,omitempty"`
}

type partialAttachResponse struct {
	Error string        `json:"error"`
	Video *models.Video `json:"video"`
}

func present(p *models.Playlist) playlistResponse {
	return playlistResponse{Playlist: p, Path: p.Path()}
}

// playlistID parses the {id} route variable. Malformed ids cannot name a playlist.
func playlistID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperr.E("playlists.lookup", apperr.NotFound, err)
	}
	return id, nil
}

// handleListPlaylists lists every playlist, or only the caller's with ?mine=true.
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	var (
		list []*models.Playlist
		err  error
	)
	id := auth.IdentityFrom(r.Context())
	if mine, _ := strconv.ParseBool(r.URL.Query().Get("mine")); mine && id.Authenticated {
		list, err = s.playlists.ListByUser(r.Context(), id.UserID)
	} else {
		list, err = s.playlists.List(r.Context())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]playlistResponse, 0, len(list))
	for _, p := range list {
		out = append(out, present(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w)
		return
	}

	p, err := s.playlists.Create(r.Context(), playlists.PlaylistInput{Title: req.Title, UserID: userID})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Location", p.Path())
	writeJSON(w, http.StatusCreated, present(p))
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := playlistID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	p, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resolved, err := s.playlists.Videos(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := present(p)
	resp.Videos = resolved
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAttachVideo(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	id, err := playlistID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w)
		return
	}

	p, video, err := s.playlists.AttachVideo(r.Context(), playlists.AttachInput{
		PlaylistID: id,
		UserID:     userID,
		URL:        req.URL,
		Title:      req.Title,
	})
	if errors.Is(err, playlists.ErrPartialAttach) && video != nil {
		logging.WithContext(r.Context()).Error().Err(err).Str("host_id", video.HostID).Msg("attach failed after creating video")
		writeJSON(w, http.StatusInternalServerError, partialAttachResponse{
			Error: "video was created but could not be added to the playlist",
			Video: video,
		})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, present(p))
}

func (s *Server) handleRemoveVideo(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	id, err := playlistID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.fail(w, r, apperr.Field("playlists.RemoveAt", "index", "must be an integer"))
		return
	}

	p, err := s.playlists.RemoveAt(r.Context(), id, userID, index)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, present(p))
}
