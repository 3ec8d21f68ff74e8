package httpapi

import (
	"net/http"
	"net/url"

	"tubeshelf/internal/apperr"
	"tubeshelf/internal/auth"
	"tubeshelf/internal/logging"
	"tubeshelf/internal/validation"
)

// signInPath is where unauthenticated callers are sent.
const signInPath = "/api/auth/sign-in"

type errorResponse struct {
	Error  string            `json:"error"`
	Fields validation.Errors `json:"fields,omitempty"`
}

func badJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
}

// fail maps a categorised error onto the response. Integrity and internal
// failures are logged and answered with a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.Invalid:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: apperr.FieldsOf(err)})
	case apperr.NotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case apperr.Conflict:
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflict", Fields: apperr.FieldsOf(err)})
	case apperr.Forbidden:
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case apperr.Unauthorized:
		auth.EndSession(w, s.cookieSecure)
		target := signInPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusFound)
	default:
		logging.WithContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("kind", apperr.KindOf(err).String()).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
