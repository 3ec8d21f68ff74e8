package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestSessionsMiddleware(t *testing.T) {
	codec, err := NewTokenCodec(testSecret, "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	userID := uuid.New()
	valid, _ := codec.Mint(userID.String())
	notUUID, _ := codec.Mint("42")
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name     string
		cookie   string
		wantAuth bool
		wantWarn bool
	}{
		{name: "no cookie"},
		{name: "valid token", cookie: valid, wantAuth: true},
		{name: "garbage", cookie: "garbage"},
		{name: "non uuid user", cookie: notUUID},
		{name: "missing user id", cookie: noUser, wantWarn: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := zerolog.New(&logs).Level(zerolog.InfoLevel)

			var got Identity
			handler := Sessions(codec, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = IdentityFrom(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Fatalf("middleware must not fail the request, got %d", rec.Code)
			}
			if got.Authenticated != tc.wantAuth {
				t.Fatalf("expected authenticated=%v, got %+v", tc.wantAuth, got)
			}
			if tc.wantAuth && got.UserID != userID {
				t.Fatalf("expected user %s, got %s", userID, got.UserID)
			}
			if warned := strings.Contains(logs.String(), `"level":"warn"`); warned != tc.wantWarn {
				t.Fatalf("expected warn=%v, logs: %s", tc.wantWarn, logs.String())
			}
		})
	}
}

func TestCookieContract(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok", true)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookie || c.Value != "tok" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected session cookie %+v", c)
	}

	rec = httptest.NewRecorder()
	EndSession(rec, false)

	byName := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		byName[c.Name] = c
	}
	if c := byName[SessionCookie]; c == nil || c.MaxAge >= 0 || c.Value != "" {
		t.Fatalf("expected session cookie deletion, got %+v", c)
	}
	if c := byName[SessionEndedCookie]; c == nil || c.Value != "1" || !c.HttpOnly {
		t.Fatalf("expected session_ended=1, got %+v", c)
	}
}

func TestIdentityFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := IdentityFrom(req.Context()); id.Authenticated {
		t.Fatalf("expected anonymous identity, got %+v", id)
	}
}
