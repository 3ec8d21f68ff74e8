package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound signals a lookup matched no rows.
	ErrNotFound = errors.New("not found")
	// ErrMultipleFound signals a lookup that should match one row matched several.
	ErrMultipleFound = errors.New("multiple records found")
	// ErrUserExists signals the email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrVideoExists signals the (host service, host id) pair is already catalogued.
	ErrVideoExists = errors.New("video already exists")
	// ErrPlaylistChanged signals a guarded write found the playlist no longer as it was read.
	ErrPlaylistChanged = errors.New("playlist changed since it was read")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// single runs a query expected to match at most one row. Callers add LIMIT 2
// so a second row can be told apart from a clean hit.
func single[T any](ctx context.Context, db *sql.DB, scan func(*sql.Rows) (T, error), query string, args ...any) (T, error) {
	var zero T

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, ErrNotFound
	}

	item, err := scan(rows)
	if err != nil {
		return zero, err
	}

	if rows.Next() {
		return zero, ErrMultipleFound
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}
	return item, nil
}

func collect[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
