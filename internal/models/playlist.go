package models

import (
	"time"

	"github.com/google/uuid"
)

// Playlist is a user-owned ordered list of video host identifiers.
// Entries are weak references: a host ID may have no matching Video.
type Playlist struct {
	DBID      uuid.UUID `json:"db_id" db:"db_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	HostIDs   []string  `json:"host_ids" db:"host_ids"`
}

// Path is the API location of the playlist.
func (p Playlist) Path() string {
	return "/api/playlists/" + p.DBID.String()
}

// UpdateMode selects how new host IDs are applied to a playlist.
type UpdateMode int

const (
	// Append concatenates the new IDs after the existing ones.
	Append UpdateMode = iota
	// Replace overwrites the whole list.
	Replace
)

// ApplyHostIDs returns the list that results from applying ids with mode.
func (p Playlist) ApplyHostIDs(mode UpdateMode, ids []string) []string {
	switch mode {
	case Replace:
		out := make([]string, len(ids))
		copy(out, ids)
		return out
	default:
		out := make([]string, 0, len(p.HostIDs)+len(ids))
		out = append(out, p.HostIDs...)
		return append(out, ids...)
	}
}
