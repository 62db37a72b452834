package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out webhook posts with a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows requestsPerSecond on average with bursts of burst.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Limit is the configured average rate.
func (r *RateLimiter) Limit() float64 {
	return float64(r.limiter.Limit())
}

// Burst is the configured bucket size.
func (r *RateLimiter) Burst() int {
	return r.limiter.Burst()
}
