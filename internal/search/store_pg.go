package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PGIndex implements Index on a Postgres table for deployments without a
// hosted search service.
type PGIndex struct {
	db *sql.DB
}

// NewPGIndex creates an Index backed by the supplied database handle.
func NewPGIndex(db *sql.DB) *PGIndex {
	return &PGIndex{db: db}
}

// SaveObjects upserts records by object id in one transaction.
func (s *PGIndex) SaveObjects(ctx context.Context, records []Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	for _, r := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO search_documents (object_id, object_type, title, path)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (object_id) DO UPDATE
			SET object_type = EXCLUDED.object_type, title = EXCLUDED.title, path = EXCLUDED.path
		`, r.ObjectID, r.ObjectType, r.Title, r.Path); err != nil {
			return 0, fmt.Errorf("upsert search document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return len(records), nil
}

// Search matches titles case-insensitively.
func (s *PGIndex) Search(ctx context.Context, query string, limit int) (Results, error) {
	limit = clampLimit(limit)
	like := "%" + escapeLike(query) + "%"

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM search_documents
		WHERE title ILIKE $1 ESCAPE '\'
	`, like).Scan(&total); err != nil {
		return Results{}, fmt.Errorf("count search documents: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT object_id, object_type, title, path
		FROM search_documents
		WHERE title ILIKE $1 ESCAPE '\'
		ORDER BY title ASC, object_id ASC
		LIMIT $2
	`, like, limit)
	if err != nil {
		return Results{}, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	hits := make([]Record, 0)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ObjectID, &r.ObjectType, &r.Title, &r.Path); err != nil {
			return Results{}, fmt.Errorf("scan search document: %w", err)
		}
		hits = append(hits, r)
	}
	if err := rows.Err(); err != nil {
		return Results{}, fmt.Errorf("iterate search documents: %w", err)
	}

	return Results{Hits: hits, Total: total}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes query match literally inside an ILIKE pattern.
func escapeLike(query string) string {
	return likeEscaper.Replace(query)
}
