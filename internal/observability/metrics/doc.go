// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the dashboard's metrics:
//   - HTTP request metrics (duration, count, size)
//   - Feed metrics (fetch results, retained incidents, skipped entries)
//   - Status metrics (current upstream status)
//   - Notification and circuit breaker metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	start := time.Now()
//	raw, err := fetcher.FetchRaw(ctx, url)
//	if err != nil {
//		metrics.RecordFeedFetch(metrics.ResultFetchError, time.Since(start))
//	}
package metrics
