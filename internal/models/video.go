package models

import "github.com/google/uuid"

// DefaultHostService is the provider assumed when a video carries no tag.
const DefaultHostService = "youtube"

// Video is a catalogued external video. HostID is unique within HostService.
type Video struct {
	HostID      string    `json:"host_id" db:"host_id"`
	DBID        uuid.UUID `json:"db_id" db:"db_id"`
	HostService string    `json:"host_service" db:"host_service"`
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"url" db:"url"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
}

// Path is the API location of the video.
func (v Video) Path() string {
	return "/api/videos/" + v.HostID
}
