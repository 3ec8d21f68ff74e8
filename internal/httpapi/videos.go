package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tubeshelf/internal/app/videos"
)

type videoRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type resumeResponse struct {
	HostID   string  `json:"host_id"`
	Position float64 `json:"position"`
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	list, err := s.videos.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddVideo(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w)
		return
	}

	video, err := s.videos.Add(r.Context(), videos.VideoInput{URL: req.URL, Title: req.Title, UserID: userID})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Location", video.Path())
	writeJSON(w, http.StatusCreated, video)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := s.videos.Get(r.Context(), mux.Vars(r)["hostID"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) handleEditVideo(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w)
		return
	}

	video, err := s.videos.Edit(r.Context(), mux.Vars(r)["hostID"], videos.EditInput{URL: req.URL, Title: req.Title, UserID: userID})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	if err := s.videos.Delete(r.Context(), mux.Vars(r)["hostID"], userID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	hostID := mux.Vars(r)["hostID"]
	position, err := s.watch.ResumePosition(r.Context(), hostID, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resumeResponse{HostID: hostID, Position: position})
}
