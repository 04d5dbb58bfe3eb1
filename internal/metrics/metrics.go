// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homebase_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "homebase_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	UpstreamFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homebase_upstream_fetches_total",
		Help: "Outbound fetches by kind (feed, article, metadata, search, image, widget) and outcome",
	}, []string{"kind", "outcome"})

	FeedRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "homebase_feed_refreshes_total",
		Help: "Podcast feed refreshes by outcome",
	}, []string{"outcome"})

	EpisodesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "homebase_episodes_added_total",
		Help: "New podcast episodes stored by subscribe or refresh",
	})

	ActivePlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "homebase_active_players",
		Help: "Per-user playback controllers currently held in memory",
	})
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeUpstream = "upstream_error"
	OutcomeNetwork  = "network_error"
	OutcomeFailed   = "failed"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
