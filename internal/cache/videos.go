// Package cache is a Redis cache-aside layer for video lookups. A Videos
// value with no client is valid and caches nothing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tubeshelf/internal/models"
)

// VideoTTL bounds how stale a cached video can be.
const VideoTTL = 5 * time.Minute

// Connect parses redisURL and pings the server. An empty URL, a bad URL or a
// failed ping all return a nil client so callers fall back to no caching.
func Connect(ctx context.Context, redisURL string, logger zerolog.Logger) *redis.Client {
	if redisURL == "" {
		logger.Info().Msg("redis: no URL configured, caching disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis: invalid URL, caching disabled")
		return nil
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		_ = rdb.Close()
		return nil
	}

	logger.Info().Str("addr", opts.Addr).Msg("redis: connected, caching enabled")
	return rdb
}

// Videos caches models.Video values keyed by host id.
type Videos struct {
	rdb    *redis.Client
	ttl    time.Duration
	hits   prometheus.Counter
	misses prometheus.Counter
}

// Option customises Videos.
type Option func(*Videos)

// WithCounters records hits and misses.
func WithCounters(hits, misses prometheus.Counter) Option {
	return func(v *Videos) {
		v.hits = hits
		v.misses = misses
	}
}

// WithTTL overrides VideoTTL.
func WithTTL(ttl time.Duration) Option {
	return func(v *Videos) { v.ttl = ttl }
}

// NewVideos wraps rdb, which may be nil.
func NewVideos(rdb *redis.Client, opts ...Option) *Videos {
	v := &Videos{rdb: rdb, ttl: VideoTTL}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Enabled reports whether a Redis client is attached.
func (c *Videos) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get returns the cached video for hostID. ok is false on a miss or when
// caching is disabled.
func (c *Videos) Get(ctx context.Context, hostID string) (video *models.Video, ok bool, err error) {
	if !c.Enabled() {
		return nil, false, nil
	}

	data, err := c.rdb.Get(ctx, videoKey(hostID)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.count(c.misses)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get video: %w", err)
	}

	video, err = decodeVideo(data)
	if err != nil {
		return nil, false, err
	}
	c.count(c.hits)
	return video, true, nil
}

// Set stores v under its host id.
func (c *Videos) Set(ctx context.Context, v *models.Video) error {
	if !c.Enabled() || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode video: %w", err)
	}
	if err := c.rdb.Set(ctx, videoKey(v.HostID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set video: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for hostID.
func (c *Videos) Invalidate(ctx context.Context, hostID string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.rdb.Del(ctx, videoKey(hostID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate video: %w", err)
	}
	return nil
}

// Close shuts down the Redis connection.
func (c *Videos) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

func (c *Videos) count(counter prometheus.Counter) {
	if counter != nil {
		counter.Inc()
	}
}

func decodeVideo(data []byte) (*models.Video, error) {
	var v models.Video
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode cached video: %w", err)
	}
	return &v, nil
}

func videoKey(hostID string) string {
	return "video:" + hostID
}
