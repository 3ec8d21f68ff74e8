package extract

import (
	"net/url"
	"strings"

	"tubeshelf/internal/models"
)

// YouTube extracts identifiers from youtube.com and youtu.be links.
//
// Playlist links (/playlist?list=<id>) return the playlist identifier through
// the same call, so the result is not always a video ID.
type YouTube struct{}

// HostService implements Extractor.
func (YouTube) HostService() string {
	return models.DefaultHostService
}

// ExtractID implements Extractor.
func (YouTube) ExtractID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	switch strings.ToLower(u.Hostname()) {
	case "youtu.be":
		return firstSegment(u.Path)
	case "youtube.com", "www.youtube.com", "m.youtube.com":
	default:
		return "", false
	}

	path := u.Path
	switch {
	case path == "/watch":
		return nonEmpty(u.Query().Get("v"))
	case strings.HasPrefix(path, "/watch/"):
		return firstSegment(strings.TrimPrefix(path, "/watch"))
	case strings.HasPrefix(path, "/embed/"):
		return firstSegment(strings.TrimPrefix(path, "/embed"))
	case strings.HasPrefix(path, "/v/"):
		return firstSegment(strings.TrimPrefix(path, "/v"))
	case path == "/playlist" || path == "/playlist/":
		return nonEmpty(u.Query().Get("list"))
	}
	return "", false
}

func firstSegment(path string) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return nonEmpty(trimmed)
}

func nonEmpty(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	return id, true
}
