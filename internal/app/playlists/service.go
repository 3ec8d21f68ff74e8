package playlists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tubeshelf/internal/app/videos"
	"tubeshelf/internal/apperr"
	"tubeshelf/internal/models"
	"tubeshelf/internal/store"
	"tubeshelf/internal/validation"
)

// ErrPartialAttach means the video was created but could not be appended to
// the playlist. The created video is still returned to the caller.
var ErrPartialAttach = errors.New("video created but not attached to playlist")

// Store captures the persistence needs for playlist workflows.
type Store interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreatePlaylist(ctx context.Context, p *models.Playlist) (*models.Playlist, error)
	PlaylistByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	UpdatePlaylistHostIDs(ctx context.Context, id uuid.UUID, mode models.UpdateMode, ids []string) (*models.Playlist, error)
	SwapPlaylistHostIDs(ctx context.Context, id uuid.UUID, expected, ids []string) (*models.Playlist, error)
	ListPlaylists(ctx context.Context) ([]*models.Playlist, error)
	PlaylistsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Playlist, error)
	VideosByHostIDs(ctx context.Context, ids []string) ([]*models.Video, error)
}

// Videos is the slice of the video service used when attaching.
type Videos interface {
	GetOrCreate(ctx context.Context, in videos.VideoInput) (*models.Video, bool, error)
}

// Service coordinates playlist operations.
type Service interface {
	Create(ctx context.Context, in PlaylistInput) (*models.Playlist, error)
	AttachVideo(ctx context.Context, in AttachInput) (*models.Playlist, *models.Video, error)
	RemoveAt(ctx context.Context, playlistID, userID uuid.UUID, index int) (*models.Playlist, error)
	Videos(ctx context.Context, playlistID uuid.UUID) ([]*models.Video, error)
	Get(ctx context.Context, playlistID uuid.UUID) (*models.Playlist, error)
	List(ctx context.Context) ([]*models.Playlist, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Playlist, error)
}

// PlaylistInput is a request to create a playlist.
type PlaylistInput struct {
	Title  string    `json:"title" validate:"required,max=200"`
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// AttachInput names the video to put at the end of a playlist. The video is
// catalogued on the fly when it is not known yet.
type AttachInput struct {
	PlaylistID uuid.UUID `json:"playlist_id" validate:"required"`
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	URL        string    `json:"url" validate:"required"`
	Title      string    `json:"title" validate:"required,max=200"`
}

type service struct {
	store  Store
	videos Videos
}

// New constructs a Service backed by the provided Store.
func New(store Store, videos Videos) Service {
	return &service{store: store, videos: videos}
}

// ValidatePlaylist runs the field checks for Create.
func ValidatePlaylist(in PlaylistInput) (PlaylistInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := apperr.InvalidFields("playlists.Create", validation.Struct(in)); err != nil {
		return PlaylistInput{}, err
	}
	return in, nil
}

func (s *service) Create(ctx context.Context, in PlaylistInput) (*models.Playlist, error) {
	const op = "playlists.Create"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in, err := ValidatePlaylist(in)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.UserExists(ctx, in.UserID)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	if !exists {
		return nil, apperr.Field(op, "user_id", "user does not exist")
	}

	created, err := s.store.CreatePlaylist(ctx, &models.Playlist{UserID: in.UserID, Title: in.Title})
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return created, nil
}

func (s *service) AttachVideo(ctx context.Context, in AttachInput) (*models.Playlist, *models.Video, error) {
	const op = "playlists.AttachVideo"
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	in.URL = strings.TrimSpace(in.URL)
	in.Title = strings.TrimSpace(in.Title)
	if err := apperr.InvalidFields(op, validation.Struct(in)); err != nil {
		return nil, nil, err
	}

	if _, err := s.owned(ctx, op, in.PlaylistID, in.UserID); err != nil {
		return nil, nil, err
	}

	video, created, err := s.videos.GetOrCreate(ctx, videos.VideoInput{URL: in.URL, Title: in.Title, UserID: in.UserID})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.store.UpdatePlaylistHostIDs(ctx, in.PlaylistID, models.Append, []string{video.HostID})
	if err != nil {
		if created {
			return nil, video, &apperr.Error{
				Op:   op,
				Kind: apperr.KindOf(apperr.FromStore(op, err)),
				Err:  fmt.Errorf("%w: %w", ErrPartialAttach, err),
			}
		}
		return nil, nil, apperr.FromStore(op, err)
	}
	return updated, video, nil
}

func (s *service) RemoveAt(ctx context.Context, playlistID, userID uuid.UUID, index int) (*models.Playlist, error) {
	const op = "playlists.RemoveAt"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playlist, err := s.owned(ctx, op, playlistID, userID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(playlist.HostIDs) {
		return nil, apperr.Field(op, "index", fmt.Sprintf("index out of range [0, %d)", len(playlist.HostIDs)))
	}

	remaining := make([]string, 0, len(playlist.HostIDs)-1)
	remaining = append(remaining, playlist.HostIDs[:index]...)
	remaining = append(remaining, playlist.HostIDs[index+1:]...)

	updated, err := s.store.SwapPlaylistHostIDs(ctx, playlistID, playlist.HostIDs, remaining)
	if errors.Is(err, store.ErrPlaylistChanged) {
		return nil, &apperr.Error{
			Op:     op,
			Kind:   apperr.Conflict,
			Fields: validation.Errors{{Field: validation.NonField, Message: "playlist changed, reload and retry"}},
			Err:    err,
		}
	}
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return updated, nil
}

// owned loads the playlist and checks userID may change it.
func (s *service) owned(ctx context.Context, op string, playlistID, userID uuid.UUID) (*models.Playlist, error) {
	playlist, err := s.store.PlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	if playlist.UserID != userID {
		return nil, apperr.E(op, apperr.Forbidden, errors.New("playlist belongs to another user"))
	}
	return playlist, nil
}

// Videos resolves the playlist's host ids in order. Ids with no catalogued
// video are skipped; repeated ids yield the video once per occurrence.
func (s *service) Videos(ctx context.Context, playlistID uuid.UUID) ([]*models.Video, error) {
	const op = "playlists.Videos"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playlist, err := s.store.PlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return s.resolve(ctx, op, playlist.HostIDs)
}

func (s *service) resolve(ctx context.Context, op string, hostIDs []string) ([]*models.Video, error) {
	unique := make([]string, 0, len(hostIDs))
	seen := make(map[string]struct{}, len(hostIDs))
	for _, id := range hostIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := s.store.VideosByHostIDs(ctx, unique)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}

	byID := make(map[string]*models.Video, len(found))
	for _, v := range found {
		if _, dup := byID[v.HostID]; dup {
			return nil, apperr.E(op, apperr.Integrity, fmt.Errorf("host id %q: %w", v.HostID, store.ErrMultipleFound))
		}
		byID[v.HostID] = v
	}

	resolved := make([]*models.Video, 0, len(hostIDs))
	for _, id := range hostIDs {
		if v, ok := byID[id]; ok {
			resolved = append(resolved, v)
		}
	}
	return resolved, nil
}

func (s *service) Get(ctx context.Context, playlistID uuid.UUID) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	playlist, err := s.store.PlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, apperr.FromStore("playlists.Get", err)
	}
	return playlist, nil
}

func (s *service) List(ctx context.Context) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	playlists, err := s.store.ListPlaylists(ctx)
	if err != nil {
		return nil, apperr.FromStore("playlists.List", err)
	}
	return playlists, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	playlists, err := s.store.PlaylistsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.FromStore("playlists.ListByUser", err)
	}
	return playlists, nil
}
