package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"tubeshelf/internal/app/users"
	"tubeshelf/internal/auth"
)

type signInResponse struct {
	Next string `json:"next"`
}

// signInForm describes how to sign in. Unauthorized requests are redirected here.
type signInForm struct {
	Method string   `json:"method"`
	Action string   `json:"action"`
	Fields []string `json:"fields"`
	Next   string   `json:"next"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w)
		return
	}

	user, err := s.users.Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleSignInForm(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	writeJSON(w, http.StatusOK, signInForm{
		Method: http.MethodPost,
		Action: signInPath + "?next=" + url.QueryEscape(next),
		Fields: []string{"email", "password"},
		Next:   next,
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req users.SignInInput
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w)
		return
	}

	token, err := s.users.SignIn(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	auth.SetSessionCookie(w, token, s.cookieSecure)
	writeJSON(w, http.StatusOK, signInResponse{Next: safeNext(r.URL.Query().Get("next"))})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/api/users/me"
	}
	return next
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	auth.EndSession(w, s.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	user, err := s.users.Get(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
