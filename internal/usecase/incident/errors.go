// Package incident implements the incident-extraction and aggregation pipeline:
// it parses the upstream status feed, keeps the incidents inside the rolling
// window, counts them per display date, derives the current status and builds
// the chart series the presentation layer renders.
package incident

import "errors"

// Sentinel errors for the pipeline.
var (
	// ErrFetchFailure is the single outward error kind: the feed could not be
	// turned into incidents. It always wraps one of the more specific causes below.
	ErrFetchFailure = errors.New("feed unavailable")

	// ErrFeedFetchFailed indicates a transport failure or a non-2xx response.
	ErrFeedFetchFailed = errors.New("failed to fetch feed")

	// ErrInvalidFeedFormat indicates that the response body is not a readable Atom document.
	ErrInvalidFeedFormat = errors.New("invalid feed format")
)
