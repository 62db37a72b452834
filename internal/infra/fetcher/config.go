package fetcher

import (
	"fmt"
	"time"

	"ghstatus-dashboard/internal/pkg/config"
)

// DefaultFeedURL is GitHub's public incident history feed.
const DefaultFeedURL = "https://www.githubstatus.com/history.atom"

// DefaultUserAgent identifies the dashboard to the feed host.
const DefaultUserAgent = "ghstatus-dashboard/1.0 (+https://www.githubstatus.com)"

// Config controls how the status feed is downloaded.
type Config struct {
	// URL is the Atom feed to read.
	// Default: DefaultFeedURL
	URL string

	// Timeout bounds a single request, body read included.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is the largest accepted response, enforced while reading
	// rather than trusted from Content-Length.
	// Default: 5MB
	MaxBodySize int64

	// MaxRedirects is the number of redirects followed before giving up.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs rejects hosts resolving to loopback, private or
	// link-local addresses. Useful when the URL comes from a user.
	// Default: false
	DenyPrivateIPs bool

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		URL:          DefaultFeedURL,
		Timeout:      10 * time.Second,
		MaxBodySize:  5 * 1024 * 1024,
		MaxRedirects: 5,
		UserAgent:    DefaultUserAgent,
	}
}

// Validate checks the configuration for values the fetcher cannot work with.
func (c *Config) Validate() error {
	if err := config.ValidateHTTPURL(c.URL); err != nil {
		return fmt.Errorf("feed url: %w", err)
	}
	if err := config.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

// LoadConfig reads the fetcher settings through l, falling back to defaults
// for anything missing or invalid.
//
// Keys:
//   - FEED_URL: absolute http(s) URL
//   - FEED_TIMEOUT: duration, 1s to 2m
//   - FEED_MAX_BYTES: integer, 1KB to 100MB
//   - FEED_MAX_REDIRECTS: integer, 0 to 10
//   - FEED_DENY_PRIVATE_IPS: boolean
func LoadConfig(l *config.ComponentLoader) Config {
	cfg := DefaultConfig()
	src := l.Source()

	cfg.URL = config.Field(l, "feed_url",
		config.LoadString(src, "FEED_URL", cfg.URL, config.ValidateHTTPURL))
	cfg.Timeout = config.Field(l, "feed_timeout",
		config.LoadDuration(src, "FEED_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
			return config.ValidateDuration(d, time.Second, 2*time.Minute)
		}))
	cfg.MaxBodySize = config.Field(l, "feed_max_bytes",
		config.LoadInt64(src, "FEED_MAX_BYTES", cfg.MaxBodySize, func(v int64) error {
			if v < 1024 || v > 100*1024*1024 {
				return fmt.Errorf("value %d outside 1024..104857600", v)
			}
			return nil
		}))
	cfg.MaxRedirects = config.Field(l, "feed_max_redirects",
		config.LoadInt(src, "FEED_MAX_REDIRECTS", cfg.MaxRedirects, func(v int) error {
			return config.ValidateIntRange(v, 0, 10)
		}))
	cfg.DenyPrivateIPs = config.Field(l, "feed_deny_private_ips",
		config.LoadBool(src, "FEED_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs))

	return cfg
}
