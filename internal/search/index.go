// Package search keeps a full-text index of videos and playlists. Records are
// projections of catalogue entities; the index never owns data.
package search

import (
	"context"
	"fmt"

	"tubeshelf/internal/models"
)

// Object types stored in the index.
const (
	TypeVideo    = "video"
	TypePlaylist = "playlist"
)

// Record is one searchable entry.
type Record struct {
	ObjectID   string `json:"objectID"`
	ObjectType string `json:"objectType"`
	Title      string `json:"title"`
	Path       string `json:"path"`
}

// Results is a page of matches plus the total number of matches.
type Results struct {
	Hits  []Record `json:"hits"`
	Total int      `json:"total"`
}

// Index is a searchable store of records. SaveObjects upserts by ObjectID and
// reports how many records were written.
type Index interface {
	SaveObjects(ctx context.Context, records []Record) (int, error)
	Search(ctx context.Context, query string, limit int) (Results, error)
}

// VideoRecord projects a video.
func VideoRecord(v *models.Video) Record {
	return Record{ObjectID: v.HostID, ObjectType: TypeVideo, Title: v.Title, Path: v.Path()}
}

// PlaylistRecord projects a playlist.
func PlaylistRecord(p *models.Playlist) Record {
	return Record{ObjectID: p.DBID.String(), ObjectType: TypePlaylist, Title: p.Title, Path: p.Path()}
}

// Source lists everything that belongs in the index.
type Source interface {
	ListVideos(ctx context.Context) ([]*models.Video, error)
	ListPlaylists(ctx context.Context) ([]*models.Playlist, error)
}

// Syncer rebuilds the index from the catalogue.
type Syncer struct {
	source Source
	index  Index
}

// NewSyncer wires a Syncer.
func NewSyncer(source Source, index Index) *Syncer {
	return &Syncer{source: source, index: index}
}

// Sync projects every playlist and video and bulk upserts them.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	playlists, err := s.source.ListPlaylists(ctx)
	if err != nil {
		return 0, fmt.Errorf("list playlists: %w", err)
	}
	videos, err := s.source.ListVideos(ctx)
	if err != nil {
		return 0, fmt.Errorf("list videos: %w", err)
	}

	records := make([]Record, 0, len(playlists)+len(videos))
	for _, p := range playlists {
		records = append(records, PlaylistRecord(p))
	}
	for _, v := range videos {
		records = append(records, VideoRecord(v))
	}
	if len(records) == 0 {
		return 0, nil
	}

	n, err := s.index.SaveObjects(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("save objects: %w", err)
	}
	return n, nil
}
