package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ghstatus-dashboard/internal/observability/tracing"
	"ghstatus-dashboard/internal/resilience/circuitbreaker"
	"ghstatus-dashboard/internal/usecase/incident"

	"go.opentelemetry.io/otel/attribute"
)

// HTTPFetcher downloads the feed with a single GET per call. It never
// caches and never retries; a circuit breaker short-circuits calls while the
// upstream keeps failing.
//
// HTTPFetcher is safe for concurrent use.
type HTTPFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewHTTPFetcher creates a fetcher from config. Zero fields take their
// DefaultConfig values.
func NewHTTPFetcher(config Config) *HTTPFetcher {
	def := DefaultConfig()
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = def.MaxBodySize
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}

	f := &HTTPFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		config:         config,
	}

	// The per-request context carries the timeout so it can be reported as ErrTimeout.
	f.client = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return f
}

// URL returns the configured feed URL.
func (f *HTTPFetcher) URL() string {
	return f.config.URL
}

// CircuitBreaker exposes the feed breaker for health reporting.
func (f *HTTPFetcher) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return f.circuitBreaker
}

// FetchRaw GETs urlStr and returns the body as text. Every error wraps
// incident.ErrFeedFetchFailed plus the specific cause from this package
// where one applies.
func (f *HTTPFetcher) FetchRaw(ctx context.Context, urlStr string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "fetcher.fetch_raw", attribute.String("http.url", urlStr))
	defer span.End()

	if err := validateURL(ctx, urlStr, f.config.DenyPrivateIPs); err != nil {
		err = fmt.Errorf("%w: %w", incident.ErrFeedFetchFailed, err)
		tracing.RecordError(span, err)
		return "", err
	}

	var status int
	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		body, code, err := f.doFetch(ctx, urlStr)
		status = code
		return body, err
	})
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", incident.ErrFeedFetchFailed, err)
		tracing.RecordError(span, err)
		return "", err
	}

	body := result.(string)
	span.SetAttributes(attribute.Int("http.response_size", len(body)))
	return body, nil
}

func (f *HTTPFetcher) doFetch(ctx context.Context, urlStr string) (string, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", 0, fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		return "", 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", resp.StatusCode, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", resp.StatusCode, fmt.Errorf("%w: reading body exceeded %v", ErrTimeout, f.config.Timeout)
		}
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(data)) > f.config.MaxBodySize {
		return "", resp.StatusCode, fmt.Errorf("%w: response exceeds %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	return string(data), resp.StatusCode, nil
}
