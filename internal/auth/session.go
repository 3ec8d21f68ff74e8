package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session_id"
	// SessionEndedCookie tells the client its session was just cleared.
	SessionEndedCookie = "session_ended"
)

// Identity is who the current request acts as.
type Identity struct {
	UserID        uuid.UUID
	Authenticated bool
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the request identity, anonymous when none was attached.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// TokenVerifier checks a raw session token.
type TokenVerifier interface {
	Verify(raw string) (*Claims, error)
}

// Sessions resolves the session cookie into an Identity on every request.
// It never rejects a request; failures leave the caller anonymous.
func Sessions(verifier TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := resolve(r, verifier, logger)
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func resolve(r *http.Request, verifier TokenVerifier, logger zerolog.Logger) Identity {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return Identity{}
	}

	claims, err := verifier.Verify(cookie.Value)
	switch {
	case errors.Is(err, ErrMissingUserID):
		logger.Warn().Str("path", r.URL.Path).Str("remote_addr", r.RemoteAddr).
			Msg("signed session token without user_id")
		return Identity{}
	case err != nil:
		logger.Debug().Err(err).Msg("session token rejected")
		return Identity{}
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		logger.Debug().Err(err).Msg("session token user_id is not a uuid")
		return Identity{}
	}
	return Identity{UserID: userID, Authenticated: true}
}

// SetSessionCookie hands the client a session token.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// EndSession deletes the session cookie and flags the session as ended.
// The token itself stays valid until it expires.
func EndSession(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     SessionEndedCookie,
		Value:    "1",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
