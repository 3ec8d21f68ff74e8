package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"tubeshelf/internal/models"
)

const userColumns = `user_id, email, first_name, last_name, password_hash, created_at`

func scanUser(rows *sql.Rows) (*models.User, error) {
	var u models.User
	if err := rows.Scan(&u.UserID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new account. A user id is generated when u has none.
func (s *Store) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	created := *u
	if created.UserID == uuid.Nil {
		created.UserID = uuid.New()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (user_id, email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, created.UserID, created.Email, created.FirstName, created.LastName, created.PasswordHash).Scan(&created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

// UserByEmail looks up an account by its normalised email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := single(ctx, s.db, scanUser, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
		LIMIT 2
	`, email)
	if err != nil {
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return u, nil
}

// UserByID looks up an account by user id.
func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := single(ctx, s.db, scanUser, `
		SELECT `+userColumns+`
		FROM users
		WHERE user_id = $1
		LIMIT 2
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// EmailExists reports whether an account already uses email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// UserExists reports whether an account with id exists.
func (s *Store) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)
	`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}
