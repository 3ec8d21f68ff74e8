package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"tubeshelf/internal/app/watch"
	"tubeshelf/internal/auth"
)

type watchEventResponse struct {
	Stored bool `json:"stored"`
	Event  any  `json:"event"`
}

// handleWatchEvent stores checkpoints for signed-in callers. Anonymous
// checkpoints are validated and echoed back without being stored.
func (s *Server) handleWatchEvent(w http.ResponseWriter, r *http.Request) {
	var req watch.RecordInput
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w)
		return
	}

	id := auth.IdentityFrom(r.Context())
	if !id.Authenticated {
		req.UserID = uuid.Nil
		event, err := watch.ValidateRecord(req)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, watchEventResponse{Stored: false, Event: event})
		return
	}

	req.UserID = id.UserID
	event, err := s.watch.Record(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, watchEventResponse{Stored: true, Event: event})
}
