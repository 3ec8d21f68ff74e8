package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the HTTP layer and the video cache.
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tubeshelf_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds, by endpoint, method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method", "status"},
		),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tubeshelf_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tubeshelf_video_cache_hits_total",
			Help: "Video lookups answered from Redis.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tubeshelf_video_cache_misses_total",
			Help: "Video lookups that fell through to Postgres.",
		}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsInFlight, m.CacheHits, m.CacheMisses)
	return m
}

// Instrument records duration and in-flight count for every request except /metrics.
func (m *Metrics) Instrument() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			rw := record(w)
			next.ServeHTTP(rw, r)

			m.RequestDuration.
				WithLabelValues(endpoint(r.URL.Path), r.Method, strconv.Itoa(rw.statusCode)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// endpoint collapses ids in the path to keep label cardinality bounded.
func endpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 3 || parts[0] != "api" {
		return path
	}

	switch parts[1] {
	case "videos":
		parts[2] = ":hostID"
	case "playlists":
		parts[2] = ":id"
		if len(parts) == 5 {
			parts[4] = ":index"
		}
	default:
		return path
	}
	return "/" + strings.Join(parts, "/")
}
