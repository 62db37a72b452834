package metrics

import (
	"time"

	"ghstatus-dashboard/internal/domain/entity"
)

// Notification result labels.
const (
	NotifySuccess = "success"
	NotifyFailure = "failure"
	NotifyDropped = "circuit_open"
)

// Fetch result labels.
const (
	ResultSuccess    = "success"
	ResultFetchError = "fetch_error"
	ResultParseError = "parse_error"
)

// RecordFeedFetch records one feed evaluation and how long it took.
// Result should be one of ResultSuccess, ResultFetchError or ResultParseError.
func RecordFeedFetch(result string, duration time.Duration) {
	FeedFetchTotal.WithLabelValues(result).Inc()
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordEntrySkipped records a malformed entry, labelled by the offending field.
func RecordEntrySkipped(field string) {
	if field == "" {
		field = "unknown"
	}
	EntriesSkippedTotal.WithLabelValues(field).Inc()
}

// UpdateIncidentsRetained sets the number of incidents in the rolling window.
func UpdateIncidentsRetained(count int) {
	IncidentsRetained.Set(float64(count))
}

// UpdateCurrentStatus mirrors the derived status into a gauge.
func UpdateCurrentStatus(status entity.Status) {
	if status == entity.StatusIssues {
		CurrentStatus.Set(1)
		return
	}
	CurrentStatus.Set(0)
}

// RecordNotification records one delivery attempt sequence for a channel.
func RecordNotification(channel, result string, duration time.Duration) {
	NotificationsTotal.WithLabelValues(channel, result).Inc()
	NotificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// UpdateCircuitBreakerState maps a gobreaker state name onto the state gauge.
func UpdateCircuitBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(v)
}
