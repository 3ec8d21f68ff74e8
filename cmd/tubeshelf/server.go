package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"tubeshelf/internal/app/playlists"
	"tubeshelf/internal/app/users"
	"tubeshelf/internal/app/videos"
	"tubeshelf/internal/app/watch"
	"tubeshelf/internal/auth"
	"tubeshelf/internal/cache"
	"tubeshelf/internal/extract"
	"tubeshelf/internal/http/middleware"
	"tubeshelf/internal/httpapi"
	"tubeshelf/internal/search"
	"tubeshelf/internal/store"
)

// services are the application services shared by the HTTP layer and the demo seed.
type services struct {
	users     users.Service
	videos    videos.Service
	playlists playlists.Service
	watch     watch.Service
	syncer    *search.Syncer
	index     search.Index
	tokens    *auth.TokenCodec
	cache     *cache.Videos
}

func newServices(ctx context.Context, cfg Config, db *sql.DB, metrics *middleware.Metrics, logger zerolog.Logger) (*services, error) {
	dataStore := store.New(db)

	tokens, err := auth.NewTokenCodec(cfg.SecretKey, cfg.Algorithm, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	hasher := auth.BcryptHasher{}
	authn, err := auth.NewAuthenticator(dataStore, hasher, tokens)
	if err != nil {
		return nil, fmt.Errorf("authenticator: %w", err)
	}

	videoCache := cache.NewVideos(
		cache.Connect(ctx, cfg.RedisURL, logger),
		cache.WithCounters(metrics.CacheHits, metrics.CacheMisses),
	)

	videoSvc := videos.New(dataStore, extract.YouTube{}, videos.WithCache(videoCache))

	index, err := newSearchIndex(cfg, db, logger)
	if err != nil {
		return nil, err
	}

	return &services{
		users:     users.New(dataStore, hasher, authn),
		videos:    videoSvc,
		playlists: playlists.New(dataStore, videoSvc),
		watch:     watch.New(dataStore),
		syncer:    search.NewSyncer(dataStore, index),
		index:     index,
		tokens:    tokens,
		cache:     videoCache,
	}, nil
}

// newSearchIndex uses Algolia when configured and the Postgres index otherwise.
func newSearchIndex(cfg Config, db *sql.DB, logger zerolog.Logger) (search.Index, error) {
	if !cfg.Algolia.Enabled() {
		logger.Info().Msg("algolia not configured, using postgres search index")
		return search.NewPGIndex(db), nil
	}

	index, err := search.NewAlgoliaIndex(cfg.Algolia.AppID, cfg.Algolia.APIKey, cfg.Algolia.IndexName)
	if err != nil {
		return nil, fmt.Errorf("algolia index: %w", err)
	}
	logger.Info().Str("index", cfg.Algolia.IndexName).Msg("algolia search index initialized")
	return index, nil
}

func newHTTPHandler(cfg Config, svc *services, reg *prometheus.Registry, metrics *middleware.Metrics, logger zerolog.Logger) http.Handler {
	return httpapi.New(httpapi.Deps{
		Users:             svc.users,
		Videos:            svc.videos,
		Playlists:         svc.playlists,
		Watch:             svc.watch,
		Search:            svc.index,
		Syncer:            svc.syncer,
		Tokens:            svc.tokens,
		Metrics:           metrics,
		MetricsHandler:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:            logger,
		CookieSecure:      cfg.CookieSecure,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
	}).Routes()
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
