package videos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tubeshelf/internal/apperr"
	"tubeshelf/internal/extract"
	"tubeshelf/internal/models"
	"tubeshelf/internal/store"
	"tubeshelf/internal/validation"
)

// Store captures the persistence needs for video workflows.
type Store interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	VideoExists(ctx context.Context, hostService, hostID string) (bool, error)
	CreateVideo(ctx context.Context, v *models.Video) (*models.Video, error)
	InsertVideoIfAbsent(ctx context.Context, v *models.Video) (*models.Video, bool, error)
	VideoByHostID(ctx context.Context, hostID string) (*models.Video, error)
	UpdateVideo(ctx context.Context, v *models.Video) error
	DeleteVideo(ctx context.Context, hostID string) error
	ListVideos(ctx context.Context) ([]*models.Video, error)
}

// Cache is an optional look-aside cache for single-video reads.
type Cache interface {
	Get(ctx context.Context, hostID string) (*models.Video, bool, error)
	Set(ctx context.Context, v *models.Video) error
	Invalidate(ctx context.Context, hostID string) error
}

// Service coordinates video operations.
type Service interface {
	Add(ctx context.Context, in VideoInput) (*models.Video, error)
	GetOrCreate(ctx context.Context, in VideoInput) (*models.Video, bool, error)
	Edit(ctx context.Context, hostID string, in EditInput) (*models.Video, error)
	Delete(ctx context.Context, hostID string, userID uuid.UUID) error
	Get(ctx context.Context, hostID string) (*models.Video, error)
	List(ctx context.Context) ([]*models.Video, error)
}

// VideoInput is a request to catalogue a video on behalf of UserID.
type VideoInput struct {
	URL    string    `json:"url" validate:"required"`
	Title  string    `json:"title" validate:"required,max=200"`
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// EditInput carries the editable fields of a video.
type EditInput struct {
	URL    string    `json:"url" validate:"required"`
	Title  string    `json:"title" validate:"required,max=200"`
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

type service struct {
	store     Store
	extractor extract.Extractor
	cache     Cache
}

// Option customises the service.
type Option func(*service)

// WithCache puts c in front of single-video reads.
func WithCache(c Cache) Option {
	return func(s *service) { s.cache = c }
}

// New constructs a Service backed by the provided Store.
func New(store Store, extractor extract.Extractor, opts ...Option) Service {
	s := &service{store: store, extractor: extractor}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateVideo runs the field checks shared by Add and GetOrCreate and
// returns the video that would be stored.
func ValidateVideo(op string, in VideoInput, extractor extract.Extractor) (models.Video, error) {
	in.URL = strings.TrimSpace(in.URL)
	in.Title = strings.TrimSpace(in.Title)

	errs := validation.Struct(in)
	hostID := extractID(&errs, in.URL, extractor)
	if err := apperr.InvalidFields(op, errs); err != nil {
		return models.Video{}, err
	}

	return models.Video{
		HostID:      hostID,
		HostService: extractor.HostService(),
		Title:       in.Title,
		URL:         in.URL,
		UserID:      in.UserID,
	}, nil
}

// ValidateEdit runs the field checks for editing the video stored under hostID.
// A URL that points at another video is rejected; host ids are never renamed.
func ValidateEdit(hostID string, in EditInput, extractor extract.Extractor) (models.Video, error) {
	const op = "videos.Edit"
	in.URL = strings.TrimSpace(in.URL)
	in.Title = strings.TrimSpace(in.Title)

	errs := validation.Struct(in)
	newID := extractID(&errs, in.URL, extractor)
	if newID != "" && newID != hostID {
		errs.Add("url", "URL refers to a different video")
	}
	if err := apperr.InvalidFields(op, errs); err != nil {
		return models.Video{}, err
	}

	return models.Video{HostID: hostID, Title: in.Title, URL: in.URL, UserID: in.UserID}, nil
}

func extractID(errs *validation.Errors, rawURL string, extractor extract.Extractor) string {
	if errs.Has("url") {
		return ""
	}
	id, ok := extractor.ExtractID(rawURL)
	if !ok {
		errs.Add("url", "unrecognised video URL")
		return ""
	}
	return id
}

// prepare runs the field phase and checks the owner exists.
func (s *service) prepare(ctx context.Context, op string, in VideoInput) (models.Video, error) {
	if err := ctx.Err(); err != nil {
		return models.Video{}, err
	}

	video, err := ValidateVideo(op, in, s.extractor)
	if err != nil {
		return models.Video{}, err
	}

	exists, err := s.store.UserExists(ctx, video.UserID)
	if err != nil {
		return models.Video{}, apperr.FromStore(op, err)
	}
	if !exists {
		return models.Video{}, apperr.Field(op, "user_id", "user does not exist")
	}
	return video, nil
}

func videoExists(op string) error {
	return &apperr.Error{
		Op:     op,
		Kind:   apperr.Conflict,
		Fields: validation.Errors{{Field: "url", Message: "video already exists"}},
		Err:    store.ErrVideoExists,
	}
}

func (s *service) Add(ctx context.Context, in VideoInput) (*models.Video, error) {
	const op = "videos.Add"
	video, err := s.prepare(ctx, op, in)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.VideoExists(ctx, video.HostService, video.HostID)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	if exists {
		return nil, videoExists(op)
	}

	created, err := s.store.CreateVideo(ctx, &video)
	if errors.Is(err, store.ErrVideoExists) {
		return nil, videoExists(op)
	}
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return created, nil
}

func (s *service) GetOrCreate(ctx context.Context, in VideoInput) (*models.Video, bool, error) {
	const op = "videos.GetOrCreate"
	video, err := s.prepare(ctx, op, in)
	if err != nil {
		return nil, false, err
	}

	stored, created, err := s.store.InsertVideoIfAbsent(ctx, &video)
	if err != nil {
		return nil, false, apperr.FromStore(op, err)
	}
	return stored, created, nil
}

func (s *service) Edit(ctx context.Context, hostID string, in EditInput) (*models.Video, error) {
	const op = "videos.Edit"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	update, err := ValidateEdit(hostID, in, s.extractor)
	if err != nil {
		return nil, err
	}

	current, err := s.owned(ctx, op, hostID, update.UserID)
	if err != nil {
		return nil, err
	}

	current.Title = update.Title
	current.URL = update.URL
	if err := s.store.UpdateVideo(ctx, current); err != nil {
		return nil, apperr.FromStore(op, err)
	}
	s.invalidate(ctx, hostID)
	return current, nil
}

func (s *service) Delete(ctx context.Context, hostID string, userID uuid.UUID) error {
	const op = "videos.Delete"
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.owned(ctx, op, hostID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteVideo(ctx, hostID); err != nil {
		return apperr.FromStore(op, err)
	}
	s.invalidate(ctx, hostID)
	return nil
}

// owned loads the video and checks userID may change it.
func (s *service) owned(ctx context.Context, op, hostID string, userID uuid.UUID) (*models.Video, error) {
	video, err := s.store.VideoByHostID(ctx, hostID)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	if video.UserID != userID {
		return nil, apperr.E(op, apperr.Forbidden, errors.New("video belongs to another user"))
	}
	return video, nil
}

func (s *service) Get(ctx context.Context, hostID string) (*models.Video, error) {
	const op = "videos.Get"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, hostID)
		if err != nil {
			log.Warn().Err(err).Str("host_id", hostID).Msg("video cache read failed")
		}
		if ok {
			return cached, nil
		}
	}

	video, err := s.store.VideoByHostID(ctx, hostID)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, video); err != nil {
			log.Warn().Err(err).Str("host_id", hostID).Msg("video cache write failed")
		}
	}
	return video, nil
}

func (s *service) List(ctx context.Context) ([]*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return nil, apperr.FromStore("videos.List", err)
	}
	return videos, nil
}

func (s *service) invalidate(ctx context.Context, hostID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, hostID); err != nil {
		log.Warn().Err(err).Str("host_id", hostID).Msg("video cache invalidation failed")
	}
}
