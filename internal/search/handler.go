package search

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Result page sizes.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// clampLimit keeps a requested page size within [1, MaxLimit].
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler responds to search requests backed by an Index.
type Handler struct {
	index Index
}

// NewHandler builds a handler using the provided index.
func NewHandler(index Index) http.Handler {
	return &Handler{index: index}
}

// Response models the payload returned by the search handler.
type Response struct {
	Query    string    `json:"query"`
	Total    int       `json:"total"`
	Sections []Section `json:"sections"`
}

// Section groups results of one object type.
type Section struct {
	Name  string   `json:"name"`
	Items []Record `json:"items"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, Response{Sections: []Section{}})
		return
	}

	limit := DefaultLimit
	if rawLimit := strings.TrimSpace(r.URL.Query().Get("limit")); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil {
			limit = clampLimit(parsed)
		}
	}

	results, err := h.index.Search(r.Context(), query, limit)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("search failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	}

	resp := buildResponse(results)
	resp.Query = query
	writeJSON(w, http.StatusOK, resp)
}

func buildResponse(results Results) Response {
	sections := make([]Section, 0, 2)
	for _, name := range []string{TypeVideo, TypePlaylist} {
		items := make([]Record, 0)
		for _, hit := range results.Hits {
			if hit.ObjectType == name {
				items = append(items, hit)
			}
		}
		if len(items) > 0 {
			sections = append(sections, Section{Name: name + "s", Items: items})
		}
	}
	return Response{Total: results.Total, Sections: sections}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
