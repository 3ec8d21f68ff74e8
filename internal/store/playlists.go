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

const playlistColumns = `db_id, user_id, title, updated_at, host_ids`

func scanPlaylist(rows *sql.Rows) (*models.Playlist, error) {
	var p models.Playlist
	if err := rows.Scan(&p.DBID, &p.UserID, &p.Title, &p.UpdatedAt, pq.Array(&p.HostIDs)); err != nil {
		return nil, fmt.Errorf("scan playlist: %w", err)
	}
	if p.HostIDs == nil {
		p.HostIDs = []string{}
	}
	return &p, nil
}

// CreatePlaylist persists a new playlist.
func (s *Store) CreatePlaylist(ctx context.Context, p *models.Playlist) (*models.Playlist, error) {
	created := *p
	if created.DBID == uuid.Nil {
		created.DBID = uuid.New()
	}
	if created.HostIDs == nil {
		created.HostIDs = []string{}
	}
	created.UpdatedAt = s.now()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (db_id, user_id, title, updated_at, host_ids)
		VALUES ($1, $2, $3, $4, $5)
	`, created.DBID, created.UserID, created.Title, created.UpdatedAt, pq.Array(created.HostIDs)); err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	return &created, nil
}

// PlaylistByID looks up a playlist.
func (s *Store) PlaylistByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	p, err := single(ctx, s.db, scanPlaylist, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE db_id = $1
		LIMIT 2
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select playlist: %w", err)
	}
	return p, nil
}

// UpdatePlaylistHostIDs applies ids to the playlist's list with mode and
// refreshes updated_at. Appends run in a single statement so concurrent
// attaches do not lose entries.
func (s *Store) UpdatePlaylistHostIDs(ctx context.Context, id uuid.UUID, mode models.UpdateMode, ids []string) (*models.Playlist, error) {
	if ids == nil {
		ids = []string{}
	}

	query := `
		UPDATE playlists
		SET host_ids = host_ids || $1::text[], updated_at = $2
		WHERE db_id = $3
		RETURNING ` + playlistColumns
	if mode == models.Replace {
		query = `
		UPDATE playlists
		SET host_ids = $1::text[], updated_at = $2
		WHERE db_id = $3
		RETURNING ` + playlistColumns
	}

	p, err := single(ctx, s.db, scanPlaylist, query, pq.Array(ids), s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("update playlist host ids: %w", err)
	}
	return p, nil
}

// SwapPlaylistHostIDs replaces the list with ids only while it still equals
// expected. A playlist that changed or vanished since it was read yields
// ErrPlaylistChanged.
func (s *Store) SwapPlaylistHostIDs(ctx context.Context, id uuid.UUID, expected, ids []string) (*models.Playlist, error) {
	if expected == nil {
		expected = []string{}
	}
	if ids == nil {
		ids = []string{}
	}

	p, err := single(ctx, s.db, scanPlaylist, `
		UPDATE playlists
		SET host_ids = $1::text[], updated_at = $2
		WHERE db_id = $3 AND host_ids = $4::text[]
		RETURNING `+playlistColumns,
		pq.Array(ids), s.now(), id, pq.Array(expected))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("swap playlist host ids: %w", ErrPlaylistChanged)
	}
	if err != nil {
		return nil, fmt.Errorf("swap playlist host ids: %w", err)
	}
	return p, nil
}

// ListPlaylists returns every playlist, most recently updated first.
func (s *Store) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		ORDER BY updated_at DESC, db_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	playlists, err := collect(rows, scanPlaylist)
	if err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// PlaylistsByUser returns the playlists owned by userID.
func (s *Store) PlaylistsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE user_id = $1
		ORDER BY updated_at DESC, db_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user playlists: %w", err)
	}

	playlists, err := collect(rows, scanPlaylist)
	if err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}
