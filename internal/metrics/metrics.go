// Package metrics declares the Prometheus collectors served on /metrics.
package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_cache_requests_total",
			Help: "Resource cache lookups by resource and result (hit, miss)",
		},
		[]string{"resource", "result"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_cache_invalidations_total",
			Help: "Resource cache invalidations by resource",
		},
		[]string{"resource"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_uploads_total",
			Help: "Uploaded image files by outcome (stored, rejected)",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordCacheLookup(resource string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequests.WithLabelValues(resource, result).Inc()
}

func RecordCacheInvalidation(resource string) {
	CacheInvalidations.WithLabelValues(resource).Inc()
}

func RecordUpload(stored bool) {
	outcome := "rejected"
	if stored {
		outcome = "stored"
	}
	UploadsTotal.WithLabelValues(outcome).Inc()
}

// RegisterDBStats exports connection pool statistics. Registering the same
// pool twice is reported as an error by the registry.
func RegisterDBStats(db *sql.DB, name string) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, name))
}
