package watch

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"tubeshelf/internal/apperr"
	"tubeshelf/internal/models"
	"tubeshelf/internal/store"
	"tubeshelf/internal/validation"
)

// Store captures the persistence needs for watch tracking.
type Store interface {
	CreateWatchEvent(ctx context.Context, e *models.WatchEvent) (*models.WatchEvent, error)
	LatestWatchEvent(ctx context.Context, hostID string, userID uuid.UUID) (*models.WatchEvent, error)
}

// Service records playback checkpoints and answers where to resume.
type Service interface {
	Record(ctx context.Context, in RecordInput) (*models.WatchEvent, error)
	ResumePosition(ctx context.Context, hostID string, userID uuid.UUID) (float64, error)
}

// RecordInput is one playback checkpoint as reported by the player.
type RecordInput struct {
	HostID    string    `json:"host_id" validate:"required"`
	UserID    uuid.UUID `json:"user_id"`
	Path      string    `json:"path"`
	StartTime float64   `json:"start_time" validate:"gte=0"`
	EndTime   float64   `json:"end_time" validate:"gte=0"`
	Duration  float64   `json:"duration" validate:"gte=0"`
	Complete  bool      `json:"complete"`
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

// ValidateRecord runs the field checks for a checkpoint and returns the event
// that would be written. The path defaults to the video's API location.
func ValidateRecord(in RecordInput) (models.WatchEvent, error) {
	in.HostID = strings.TrimSpace(in.HostID)
	if err := apperr.InvalidFields("watch.Record", validation.Struct(in)); err != nil {
		return models.WatchEvent{}, err
	}

	path := strings.TrimSpace(in.Path)
	if path == "" {
		path = models.Video{HostID: in.HostID}.Path()
	}
	return models.WatchEvent{
		HostID:    in.HostID,
		UserID:    in.UserID,
		Path:      path,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Duration:  in.Duration,
		Complete:  in.Complete,
	}, nil
}

func (s *service) Record(ctx context.Context, in RecordInput) (*models.WatchEvent, error) {
	const op = "watch.Record"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	event, err := ValidateRecord(in)
	if err != nil {
		return nil, err
	}
	if event.UserID == uuid.Nil {
		return nil, apperr.Field(op, "user_id", "field required")
	}

	created, err := s.store.CreateWatchEvent(ctx, &event)
	if err != nil {
		return nil, apperr.FromStore(op, err)
	}
	return created, nil
}

// ResumePosition returns the offset to resume hostID at for userID: the end
// of the latest checkpoint unless that checkpoint finished the video.
func (s *service) ResumePosition(ctx context.Context, hostID string, userID uuid.UUID) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	latest, err := s.store.LatestWatchEvent(ctx, hostID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.FromStore("watch.ResumePosition", err)
	}

	if latest.Complete || latest.EffectivelyComplete() {
		return 0, nil
	}
	return latest.EndTime, nil
}
