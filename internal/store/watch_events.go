package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"tubeshelf/internal/models"
)

func scanWatchEvent(rows *sql.Rows) (*models.WatchEvent, error) {
	var e models.WatchEvent
	if err := rows.Scan(&e.HostID, &e.EventID, &e.UserID, &e.Path, &e.StartTime, &e.EndTime,
		&e.Duration, &e.Complete, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan watch event: %w", err)
	}
	return &e, nil
}

// CreateWatchEvent appends a playback checkpoint. Event ids are UUIDv7 so
// newer events sort after older ones.
func (s *Store) CreateWatchEvent(ctx context.Context, e *models.WatchEvent) (*models.WatchEvent, error) {
	created := *e
	if created.EventID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate event id: %w", err)
		}
		created.EventID = id
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO watch_events (event_id, host_id, user_id, path, start_time, end_time, duration, complete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, created.EventID, created.HostID, created.UserID, created.Path, created.StartTime, created.EndTime,
		created.Duration, created.Complete).Scan(&created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert watch event: %w", err)
	}
	return &created, nil
}

// LatestWatchEvent returns the newest event for the (video, user) pair.
func (s *Store) LatestWatchEvent(ctx context.Context, hostID string, userID uuid.UUID) (*models.WatchEvent, error) {
	e, err := single(ctx, s.db, scanWatchEvent, `
		SELECT host_id, event_id, user_id, path, start_time, end_time, duration, complete, created_at
		FROM watch_events
		WHERE host_id = $1 AND user_id = $2
		ORDER BY event_id DESC
		LIMIT 1
	`, hostID, userID)
	if err != nil {
		return nil, fmt.Errorf("select latest watch event: %w", err)
	}
	return e, nil
}
