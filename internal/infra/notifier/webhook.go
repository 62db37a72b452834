package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ghstatus-dashboard/internal/observability/metrics"
	"ghstatus-dashboard/internal/resilience/circuitbreaker"
	"ghstatus-dashboard/internal/resilience/retry"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// StatusPageURL is linked from every message.
const StatusPageURL = "https://www.githubstatus.com"

const maxResponseBody = 64 << 10

// ChannelConfig configures one webhook channel.
type ChannelConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
	// RequestsPerSecond and Burst shape the token bucket in front of the webhook.
	RequestsPerSecond float64
	Burst             int
	// Retry defaults to retry.WebhookConfig when MaxAttempts is zero.
	Retry retry.Config
}

func (c ChannelConfig) withDefaults() ChannelConfig {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 1
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry = retry.WebhookConfig()
	}
	return c
}

// retryAfterFunc extracts the server requested wait from a 429 response.
type retryAfterFunc func(resp *http.Response, body []byte) time.Duration

// webhook is the delivery pipeline shared by the chat channels:
// rate limit, then retry around a circuit breaker around one POST.
type webhook struct {
	channel    string
	url        string
	client     *http.Client
	limiter    *RateLimiter
	breaker    *circuitbreaker.CircuitBreaker
	retry      retry.Config
	retryAfter retryAfterFunc
	logger     *slog.Logger
}

func newWebhook(channel string, cfg ChannelConfig, retryAfter retryAfterFunc, logger *slog.Logger) *webhook {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &webhook{
		channel:    channel,
		url:        cfg.WebhookURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		breaker:    circuitbreaker.New(circuitbreaker.WebhookConfig(channel)),
		retry:      cfg.Retry,
		retryAfter: retryAfter,
		logger:     logger,
	}
}

func (w *webhook) deliver(ctx context.Context, payload any) error {
	id := uuid.New().String()
	ctx = context.WithValue(ctx, notificationIDKey, id)
	logger := w.logger.With(
		slog.String("channel", w.channel),
		slog.String("notification_id", id))
	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordNotification(w.channel, metrics.NotifyFailure, time.Since(start))
		return fmt.Errorf("marshal %s payload: %w", w.channel, err)
	}

	if err := w.limiter.Wait(ctx); err != nil {
		metrics.RecordNotification(w.channel, metrics.NotifyFailure, time.Since(start))
		return fmt.Errorf("%s rate limiter: %w", w.channel, err)
	}

	cfg := w.retry
	cfg.Retryable = isRetryableError
	cfg.Logger = logger

	attempts := 0
	err = retry.WithBackoff(ctx, cfg, func() error {
		attempts++
		return w.breaker.Run(func() error { return w.post(ctx, body) })
	})

	switch {
	case err == nil:
		metrics.RecordNotification(w.channel, metrics.NotifySuccess, time.Since(start))
		logger.Info("notification delivered", slog.Int("attempts", attempts))
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordNotification(w.channel, metrics.NotifyDropped, time.Since(start))
		logger.Warn("circuit open, notification dropped", slog.String("breaker", w.breaker.Name()))
	default:
		metrics.RecordNotification(w.channel, metrics.NotifyFailure, time.Since(start))
		logger.Error("notification failed",
			slog.Int("attempts", attempts),
			slog.Any("error", err))
	}
	return fmt.Errorf("%s notification: %w", w.channel, err)
}

// post sends body once and classifies the response.
func (w *webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", stripURL(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", stripURL(err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return w.classify(resp, respBody)
}

func (w *webhook) classify(resp *http.Response, body []byte) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    w.channel + " rate limit exceeded",
			RetryAfter: w.retryAfter(resp, body),
		}
	case code >= 400 && code < 500:
		return &ClientError{
			StatusCode: code,
			Message:    fmt.Sprintf("%s webhook client error %d: %s", w.channel, code, truncate(string(body), 200, "...")),
		}
	case code >= 500:
		return &ServerError{
			StatusCode: code,
			Message:    fmt.Sprintf("%s webhook server error %d: %s", w.channel, code, truncate(string(body), 200, "...")),
		}
	}
	return fmt.Errorf("%s webhook unexpected status %d", w.channel, code)
}

// stripURL drops the request URL from transport errors: webhook URLs carry
// their credentials in the path.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

// retryAfterHeader reads a Retry-After header in seconds, falling back to def.
func retryAfterHeader(resp *http.Response, def time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
