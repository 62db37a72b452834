package worker

import (
	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Check outcomes used as the status label.
const (
	CheckSuccess = "success"
	CheckFailure = "failure"
)

// Metrics are the worker's Prometheus metrics. The embedded ConfigMetrics
// exports worker_config_*.
type Metrics struct {
	*config.ConfigMetrics

	// ChecksTotal counts scheduled checks by status (success, failure).
	ChecksTotal *prometheus.CounterVec

	// CheckDurationSeconds observes the wall time of one check.
	CheckDurationSeconds prometheus.Histogram

	// StatusChangesTotal counts detected transitions by the new status.
	StatusChangesTotal *prometheus.CounterVec

	// LastSuccessTimestamp is the Unix time of the last successful check.
	LastSuccessTimestamp prometheus.Gauge

	// ObservedStatus is 1 for the status seen by the last successful check.
	ObservedStatus *prometheus.GaugeVec
}

// NewMetrics registers the worker metrics with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the worker metrics with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "worker"),

		ChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_status_checks_total",
			Help: "Total number of scheduled status checks by status (success/failure)",
		}, []string{"status"}),

		CheckDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_status_check_duration_seconds",
			Help:    "Duration of a scheduled status check in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		StatusChangesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_status_changes_total",
			Help: "Total number of detected status transitions by new status",
		}, []string{"to"}),

		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_status_check_last_success_timestamp",
			Help: "Unix timestamp of the last successful status check",
		}),

		ObservedStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_observed_status",
			Help: "1 for the status reported by the last successful check, 0 otherwise",
		}, []string{"status"}),
	}
}

// RecordCheck counts a finished check and observes its duration.
func (m *Metrics) RecordCheck(status string, seconds float64) {
	m.ChecksTotal.WithLabelValues(status).Inc()
	m.CheckDurationSeconds.Observe(seconds)
}

// RecordSuccess stamps the last success time and the observed status.
func (m *Metrics) RecordSuccess(status entity.Status) {
	m.LastSuccessTimestamp.SetToCurrentTime()
	for _, s := range []entity.Status{entity.StatusOperational, entity.StatusIssues} {
		v := 0.0
		if s == status {
			v = 1
		}
		m.ObservedStatus.WithLabelValues(string(s)).Set(v)
	}
}

// RecordStatusChange counts a transition to status.
func (m *Metrics) RecordStatusChange(to entity.Status) {
	m.StatusChangesTotal.WithLabelValues(string(to)).Inc()
}
