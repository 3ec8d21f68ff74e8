package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubeshelf/internal/models"
	"tubeshelf/internal/store"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserLookup finds accounts by normalised email.
type UserLookup interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator checks credentials and issues session tokens.
type Authenticator struct {
	users  UserLookup
	hasher PasswordHasher
	tokens *TokenCodec
	dummy  string
}

// NewAuthenticator wires an Authenticator. It hashes a throwaway password up
// front so unknown emails cost as much to reject as wrong passwords.
func NewAuthenticator(users UserLookup, hasher PasswordHasher, tokens *TokenCodec) (*Authenticator, error) {
	dummy, err := hasher.Hash("tubeshelf-unknown-account")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Authenticator{users: users, hasher: hasher, tokens: tokens, dummy: dummy}, nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate returns the account matching email and password.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = a.hasher.Verify(a.dummy, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !a.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken mints a session token for user.
func (a *Authenticator) IssueToken(user *models.User) (string, error) {
	return a.tokens.Mint(user.UserID.String())
}
