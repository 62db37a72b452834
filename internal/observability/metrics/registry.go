// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Feed metrics track the status feed pipeline
var (
	// FeedFetchTotal counts feed evaluations by result (success, fetch_error, parse_error)
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghstatus_feed_fetch_total",
			Help: "Total number of status feed evaluations by result",
		},
		[]string{"result"},
	)

	// FeedFetchDuration measures the time to fetch and parse the feed
	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ghstatus_feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse the status feed",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	// IncidentsRetained is the number of incidents inside the rolling window
	IncidentsRetained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ghstatus_incidents_retained",
			Help: "Number of incidents inside the rolling window at the last evaluation",
		},
	)

	// EntriesSkippedTotal counts malformed feed entries that were skipped
	EntriesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghstatus_entries_skipped_total",
			Help: "Total number of malformed feed entries skipped",
		},
		[]string{"field"},
	)

	// CurrentStatus is 1 while the upstream reports issues, 0 otherwise
	CurrentStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ghstatus_current_status",
			Help: "Current upstream status (1 = issues, 0 = operational)",
		},
	)
)

// Notification metrics track webhook delivery from the worker
var (
	// NotificationsTotal counts status change notifications by channel and result
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghstatus_notifications_total",
			Help: "Total number of status change notifications by channel and result",
		},
		[]string{"channel", "result"},
	)

	// NotificationDuration measures webhook delivery time including retries
	NotificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ghstatus_notification_duration_seconds",
			Help:    "Time taken to deliver a notification, retries included",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8),
		},
		[]string{"channel"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ghstatus_circuit_breaker_state",
			Help: "Circuit breaker state (0 = closed, 1 = half-open, 2 = open)",
		},
		[]string{"name"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
