package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tubeshelf/internal/models"
)

const videoColumns = `host_id, db_id, host_service, title, url, user_id`

func scanVideo(rows *sql.Rows) (*models.Video, error) {
	var v models.Video
	if err := rows.Scan(&v.HostID, &v.DBID, &v.HostService, &v.Title, &v.URL, &v.UserID); err != nil {
		return nil, fmt.Errorf("scan video: %w", err)
	}
	return &v, nil
}

func prepareVideo(v *models.Video) models.Video {
	created := *v
	if created.DBID == uuid.Nil {
		created.DBID = uuid.New()
	}
	if created.HostService == "" {
		created.HostService = models.DefaultHostService
	}
	return created
}

// CreateVideo inserts a video, failing with ErrVideoExists when the
// (host service, host id) pair is taken.
func (s *Store) CreateVideo(ctx context.Context, v *models.Video) (*models.Video, error) {
	created := prepareVideo(v)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (host_id, db_id, host_service, title, url, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, created.HostID, created.DBID, created.HostService, created.Title, created.URL, created.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrVideoExists
		}
		return nil, fmt.Errorf("insert video: %w", err)
	}
	return &created, nil
}

// InsertVideoIfAbsent inserts v unless its (host service, host id) pair is
// taken, in which case the stored video is returned and created is false.
func (s *Store) InsertVideoIfAbsent(ctx context.Context, v *models.Video) (*models.Video, bool, error) {
	candidate := prepareVideo(v)

	var dbID uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO videos (host_id, db_id, host_service, title, url, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (host_service, host_id) DO NOTHING
		RETURNING db_id
	`, candidate.HostID, candidate.DBID, candidate.HostService, candidate.Title, candidate.URL, candidate.UserID).Scan(&dbID)
	switch {
	case err == nil:
		return &candidate, true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, fmt.Errorf("insert video: %w", err)
	}

	existing, err := single(ctx, s.db, scanVideo, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE host_service = $1 AND host_id = $2
		LIMIT 2
	`, candidate.HostService, candidate.HostID)
	if err != nil {
		return nil, false, fmt.Errorf("select existing video: %w", err)
	}
	return existing, false, nil
}

// VideoByHostID looks up a video by its host identifier.
func (s *Store) VideoByHostID(ctx context.Context, hostID string) (*models.Video, error) {
	v, err := single(ctx, s.db, scanVideo, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE host_id = $1
		LIMIT 2
	`, hostID)
	if err != nil {
		return nil, fmt.Errorf("select video: %w", err)
	}
	return v, nil
}

// VideoExists reports whether the (host service, host id) pair is catalogued.
func (s *Store) VideoExists(ctx context.Context, hostService, hostID string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM videos WHERE host_service = $1 AND host_id = $2)
	`, hostService, hostID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check video: %w", err)
	}
	return exists, nil
}

// VideosByHostIDs fetches every video whose host id is in ids with one query.
// Order is unspecified; unknown ids are absent from the result.
func (s *Store) VideosByHostIDs(ctx context.Context, ids []string) ([]*models.Video, error) {
	if len(ids) == 0 {
		return []*models.Video{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE host_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select videos: %w", err)
	}

	videos, err := collect(rows, scanVideo)
	if err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// UpdateVideo rewrites the title and url of the video identified by v.HostID.
func (s *Store) UpdateVideo(ctx context.Context, v *models.Video) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE videos
		SET title = $1, url = $2
		WHERE host_id = $3
	`, v.Title, v.URL, v.HostID)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return expectAffected(res, "update video")
}

// DeleteVideo removes the video with hostID. Playlists keep their entries.
func (s *Store) DeleteVideo(ctx context.Context, hostID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM videos
		WHERE host_id = $1
	`, hostID)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	return expectAffected(res, "delete video")
}

// ListVideos returns the whole catalogue ordered by title.
func (s *Store) ListVideos(ctx context.Context) ([]*models.Video, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		ORDER BY title ASC, host_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	videos, err := collect(rows, scanVideo)
	if err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
