// Package observability exposes the service's Prometheus metrics.
package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var modeLabel atomic.Value

func init() {
	modeLabel.Store("resolve")
}

func SetMode(m string) {
	if m == "" {
		m = "resolve"
	}
	modeLabel.Store(m)
}

func getMode() string {
	if v := modeLabel.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "resolve"
}

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status", "mode"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"method", "route", "status", "mode"},
	)

	parseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iiif_parse_total",
			Help: "IIIF request path parse attempts by outcome.",
		},
		[]string{"outcome"},
	)

	canonicalRewritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iiif_canonical_rewrites_total",
			Help: "Requests rewritten to canonical form, by request kind.",
		},
		[]string{"kind"},
	)

	storeOpSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tile_store_op_duration_seconds",
			Help:    "Duration of tile store operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op", "ok"},
	)

	tileCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tile_cache_results_total",
			Help: "Tile byte-cache results by outcome.",
		},
		[]string{"outcome"},
	)

	invalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tile_invalidations_total",
			Help: "Invalidation events processed, by outcome.",
		},
		[]string{"outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	m := getMode()
	httpRequestsTotal.WithLabelValues(method, route, st, m).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st, m).Observe(durationSeconds)
}

func IncParseOK()       { parseTotal.WithLabelValues("ok").Inc() }
func IncParseRejected() { parseTotal.WithLabelValues("rejected").Inc() }

// kind is "info" or "image"
func IncCanonicalRewrite(kind string) {
	canonicalRewritesTotal.WithLabelValues(kind).Inc()
}

func ObserveStoreOp(op string, err error, durationSeconds float64) {
	ok := "true"
	if err != nil {
		ok = "false"
	}
	storeOpSeconds.WithLabelValues(op, ok).Observe(durationSeconds)
}

func IncTileCacheHit()  { tileCacheResults.WithLabelValues("hit").Inc() }
func IncTileCacheMiss() { tileCacheResults.WithLabelValues("miss").Inc() }

// outcome is "applied", "skipped" or "error"
func IncInvalidation(outcome string) {
	invalidationsTotal.WithLabelValues(outcome).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
