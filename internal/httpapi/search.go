package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"tubeshelf/internal/apperr"
)

type syncResponse struct {
	Indexed int `json:"indexed"`
}

func (s *Server) handleSearchSync(w http.ResponseWriter, r *http.Request, _ uuid.UUID) {
	n, err := s.syncer.Sync(r.Context())
	if err != nil {
		s.fail(w, r, apperr.E("search.Sync", apperr.Internal, err))
		return
	}
	writeJSON(w, http.StatusOK, syncResponse{Indexed: n})
}
