package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tubeshelf/internal/app/playlists"
	"tubeshelf/internal/app/users"
	"tubeshelf/internal/app/videos"
	"tubeshelf/internal/app/watch"
	"tubeshelf/internal/apperr"
	"tubeshelf/internal/auth"
	"tubeshelf/internal/http/middleware"
	"tubeshelf/internal/models"
	"tubeshelf/internal/search"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, in users.RegisterInput) (*models.User, error)
	SignIn(ctx context.Context, in users.SignInInput) (string, error)
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// VideoService exposes the catalogue workflows.
type VideoService interface {
	Add(ctx context.Context, in videos.VideoInput) (*models.Video, error)
	Edit(ctx context.Context, hostID string, in videos.EditInput) (*models.Video, error)
	Delete(ctx context.Context, hostID string, userID uuid.UUID) error
	Get(ctx context.Context, hostID string) (*models.Video, error)
	List(ctx context.Context) ([]*models.Video, error)
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	Create(ctx context.Context, in playlists.PlaylistInput) (*models.Playlist, error)
	AttachVideo(ctx context.Context, in playlists.AttachInput) (*models.Playlist, *models.Video, error)
	RemoveAt(ctx context.Context, playlistID, userID uuid.UUID, index int) (*models.Playlist, error)
	Videos(ctx context.Context, playlistID uuid.UUID) ([]*models.Video, error)
	Get(ctx context.Context, playlistID uuid.UUID) (*models.Playlist, error)
	List(ctx context.Context) ([]*models.Playlist, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Playlist, error)
}

// WatchService records playback progress.
type WatchService interface {
	Record(ctx context.Context, in watch.RecordInput) (*models.WatchEvent, error)
	ResumePosition(ctx context.Context, hostID string, userID uuid.UUID) (float64, error)
}

// SearchSyncer rebuilds the search index.
type SearchSyncer interface {
	Sync(ctx context.Context) (int, error)
}

// Deps lists everything the Server needs. Metrics and MetricsHandler are optional.
type Deps struct {
	Users     UserService
	Videos    VideoService
	Playlists PlaylistService
	Watch     WatchService
	Search    search.Index
	Syncer    SearchSyncer
	Tokens    auth.TokenVerifier

	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger

	CookieSecure      bool
	CORSAllowedOrigin string
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	videos    VideoService
	playlists PlaylistService
	watch     WatchService
	search    search.Index
	syncer    SearchSyncer
	tokens    auth.TokenVerifier

	metrics        *middleware.Metrics
	metricsHandler http.Handler
	logger         zerolog.Logger

	cookieSecure bool
	corsOrigin   string
}

// New configures a Server from deps.
func New(deps Deps) *Server {
	return &Server{
		users:          deps.Users,
		videos:         deps.Videos,
		playlists:      deps.Playlists,
		watch:          deps.Watch,
		search:         deps.Search,
		syncer:         deps.Syncer,
		tokens:         deps.Tokens,
		metrics:        deps.Metrics,
		metricsHandler: deps.MetricsHandler,
		logger:         deps.Logger,
		cookieSecure:   deps.CookieSecure,
		corsOrigin:     deps.CORSAllowedOrigin,
	}
}

// Routes exposes the HTTP handlers wrapped in the middleware chain:
// recovery, request logging, metrics, CORS, then session resolution.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	if s.metricsHandler != nil {
		router.Handle("/metrics", s.metricsHandler).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users/sign-up", s.handleSignUp).Methods(http.MethodPost)
	api.Handle("/users/me", s.requireUser(s.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/auth/sign-in", s.handleSignInForm).Methods(http.MethodGet)
	api.HandleFunc("/auth/sign-in", s.handleSignIn).Methods(http.MethodPost)
	api.HandleFunc("/auth/sign-out", s.handleSignOut).Methods(http.MethodPost)

	api.HandleFunc("/videos", s.handleListVideos).Methods(http.MethodGet)
	api.Handle("/videos", s.requireUser(s.handleAddVideo)).Methods(http.MethodPost)
	api.HandleFunc("/videos/{hostID}", s.handleGetVideo).Methods(http.MethodGet)
	api.Handle("/videos/{hostID}", s.requireUser(s.handleEditVideo)).Methods(http.MethodPut)
	api.Handle("/videos/{hostID}", s.requireUser(s.handleDeleteVideo)).Methods(http.MethodDelete)
	api.Handle("/videos/{hostID}/resume", s.requireUser(s.handleResume)).Methods(http.MethodGet)

	api.HandleFunc("/watch/events", s.handleWatchEvent).Methods(http.MethodPost)

	api.HandleFunc("/playlists", s.handleListPlaylists).Methods(http.MethodGet)
	api.Handle("/playlists", s.requireUser(s.handleCreatePlaylist)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id}", s.handleGetPlaylist).Methods(http.MethodGet)
	api.Handle("/playlists/{id}/videos", s.requireUser(s.handleAttachVideo)).Methods(http.MethodPost)
	api.Handle("/playlists/{id}/videos/{index}", s.requireUser(s.handleRemoveVideo)).Methods(http.MethodDelete)

	api.Handle("/search", search.NewHandler(s.search)).Methods(http.MethodGet)
	api.Handle("/search/sync", s.requireUser(s.handleSearchSync)).Methods(http.MethodPost)

	var handler http.Handler = router
	handler = auth.Sessions(s.tokens, s.logger)(handler)
	handler = middleware.CORS(s.corsOrigin)(handler)
	if s.metrics != nil {
		handler = s.metrics.Instrument()(handler)
	}
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}

// userHandler is a handler that runs only for signed-in callers.
type userHandler func(w http.ResponseWriter, r *http.Request, userID uuid.UUID)

// requireUser sends anonymous callers to sign in.
func (s *Server) requireUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := auth.IdentityFrom(r.Context())
		if !id.Authenticated {
			s.fail(w, r, apperr.E(r.URL.Path, apperr.Unauthorized, auth.ErrInvalidToken))
			return
		}
		next(w, r, id.UserID)
	})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
