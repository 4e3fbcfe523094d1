// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Discovery metrics
	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_selections_total",
			Help: "Total number of links selected, by policy branch",
		},
		[]string{"mode"}, // "explore", "exploit"
	)

	NoContentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_no_content_total",
			Help: "Total number of select calls that found no eligible candidate",
		},
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_candidate_pool_size",
			Help:    "Number of candidates scored per select call",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 40, 50},
		},
	)

	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_feedback_total",
			Help: "Total number of recorded feedback events, by action",
		},
		[]string{"action"},
	)

	// Store metrics
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of link store / event ledger failures",
		},
		[]string{"operation"},
	)

	// Metadata fetcher metrics
	MetadataFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_fetches_total",
			Help: "Total number of metadata fetches, by outcome",
		},
		[]string{"outcome"}, // "ok", "fallback", "breaker_open"
	)

	// Monitor metrics
	UnreachableLinks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_unreachable_links",
			Help: "Number of approved links that failed the last health check",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records one served API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
