package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

type contextKey string

const notificationIDKey contextKey = "notification_id"

func notificationID(ctx context.Context) string {
	id, _ := ctx.Value(notificationIDKey).(string)
	return id
}

// RateLimitError is a 429 from the webhook. RetryAfter is what the server asked for.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// RetryDelay lets the retry loop wait as long as the server asked.
func (e *RateLimitError) RetryDelay() time.Duration {
	return e.RetryAfter
}

// ClientError is a non-429 4xx. Retrying will not help.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError is a 5xx.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// isRetryableError decides whether a failed delivery gets another attempt.
// Unclassified errors are transport failures and are retried.
func isRetryableError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}
	return true
}

// truncate cuts text to maxLength bytes including suffix, never splitting a rune.
func truncate(text string, maxLength int, suffix string) string {
	if len(text) <= maxLength {
		return text
	}
	cut := maxLength - len(suffix)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + suffix
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
