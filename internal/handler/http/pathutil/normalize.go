// Package pathutil maps request paths onto a closed set of metric labels.
package pathutil

import "strings"

// Route labels for the dashboard server.
const (
	RouteIndex     = "/"
	RouteDashboard = "/api/dashboard"
	RouteHealth    = "/health"
	RouteLive      = "/health/live"
	RouteMetrics   = "/metrics"

	// RouteOther collects every path the server does not serve.
	RouteOther = "other"
)

var knownRoutes = map[string]struct{}{
	RouteIndex:     {},
	RouteDashboard: {},
	RouteHealth:    {},
	RouteLive:      {},
	RouteMetrics:   {},
}

// NormalizePath returns path when it is a served route (ignoring a query
// string and a trailing slash) and RouteOther otherwise, so scanners hitting
// random URLs cannot grow the label set.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		path = RouteIndex
	}
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return RouteOther
}

// ExpectedCardinality is the upper bound on distinct labels NormalizePath returns.
func ExpectedCardinality() int {
	return len(knownRoutes) + 1
}
