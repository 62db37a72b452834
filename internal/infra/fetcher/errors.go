// Package fetcher downloads the upstream status feed over HTTP.
package fetcher

import "errors"

// Fetch failure causes. FetchRaw wraps every one of them together with
// incident.ErrFeedFetchFailed.
var (
	// ErrInvalidURL indicates the feed URL is malformed or not http/https.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates the feed host resolves to a private address while
	// DenyPrivateIPs is set.
	ErrPrivateIP = errors.New("private IP address not allowed")

	// ErrTooManyRedirects indicates the redirect chain exceeded MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response exceeded MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request ran past Timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrUnexpectedStatus indicates a non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)
