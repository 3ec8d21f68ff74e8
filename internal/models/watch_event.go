package models

import (
	"time"

	"github.com/google/uuid"
)

// CompletionThreshold is the fraction of the duration past which a watch
// counts as finished regardless of the stored flag.
const CompletionThreshold = 0.98

// WatchEvent records a playback checkpoint for a (video, user) pair.
type WatchEvent struct {
	HostID    string    `json:"host_id" db:"host_id"`
	EventID   uuid.UUID `json:"event_id" db:"event_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Path      string    `json:"path" db:"path"`
	StartTime float64   `json:"start_time" db:"start_time"`
	EndTime   float64   `json:"end_time" db:"end_time"`
	Duration  float64   `json:"duration" db:"duration"`
	Complete  bool      `json:"complete" db:"complete"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EffectivelyComplete reports whether the end offset reached the completion
// threshold of the duration.
func (e WatchEvent) EffectivelyComplete() bool {
	return e.EndTime >= CompletionThreshold*e.Duration
}
