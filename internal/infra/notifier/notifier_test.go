package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/observability/metrics"
	"ghstatus-dashboard/internal/resilience/retry"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var detectedAt = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func degradedChange() entity.StatusChange {
	return entity.StatusChange{
		Previous:   entity.StatusOperational,
		Current:    entity.StatusIssues,
		DetectedAt: detectedAt,
		Incidents:  4,
		Latest: &entity.Incident{
			Title:     "Incident with Actions & <Pages>",
			Date:      "Mar 05, 2024",
			TimeRange: "11:05 - 11:30",
		},
	}
}

func recoveredChange() entity.StatusChange {
	return entity.StatusChange{
		Previous:   entity.StatusIssues,
		Current:    entity.StatusOperational,
		DetectedAt: detectedAt,
		Incidents:  4,
	}
}

func fastConfig(url string) ChannelConfig {
	return ChannelConfig{
		Enabled:           true,
		WebhookURL:        url,
		Timeout:           2 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             100,
		Retry: retry.Config{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			MaxDelay:     20 * time.Millisecond,
			Multiplier:   1,
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// recorder is a webhook endpoint answering with the queued statuses in order,
// then 200 for anything after.
type recorder struct {
	mu       sync.Mutex
	bodies   [][]byte
	statuses []int
	headers  []http.Header
	respBody string
	calls    atomic.Int32
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := int(rec.calls.Add(1))
	body, _ := io.ReadAll(r.Body)

	rec.mu.Lock()
	rec.bodies = append(rec.bodies, body)
	status := http.StatusOK
	if n <= len(rec.statuses) {
		status = rec.statuses[n-1]
	}
	var hdr http.Header
	if n <= len(rec.headers) {
		hdr = rec.headers[n-1]
	}
	rec.mu.Unlock()

	for k, v := range hdr {
		w.Header()[k] = v
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(rec.respBody))
}

func TestNotifiers_Deliver(t *testing.T) {
	builders := map[string]func(ChannelConfig) Notifier{
		"slack":   func(c ChannelConfig) Notifier { return NewSlackNotifier(c, quietLogger()) },
		"discord": func(c ChannelConfig) Notifier { return NewDiscordNotifier(c, quietLogger()) },
	}

	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   bool
		errCheck  func(t *testing.T, err error)
	}{
		{name: "success first try", statuses: []int{http.StatusOK}, wantCalls: 1},
		{name: "discord style 204", statuses: []int{http.StatusNoContent}, wantCalls: 1},
		{name: "5xx then success", statuses: []int{http.StatusBadGateway, http.StatusOK}, wantCalls: 2},
		{
			name:      "5xx exhausts attempts",
			statuses:  []int{http.StatusInternalServerError, http.StatusServiceUnavailable},
			wantCalls: 2,
			wantErr:   true,
			errCheck: func(t *testing.T, err error) {
				var se *ServerError
				assert.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
			},
		},
		{
			name:      "4xx is not retried",
			statuses:  []int{http.StatusNotFound},
			wantCalls: 1,
			wantErr:   true,
			errCheck: func(t *testing.T, err error) {
				var ce *ClientError
				assert.ErrorAs(t, err, &ce)
				assert.Equal(t, http.StatusNotFound, ce.StatusCode)
			},
		},
	}

	for channel, build := range builders {
		for _, tt := range tests {
			t.Run(channel+"/"+tt.name, func(t *testing.T) {
				rec := &recorder{statuses: tt.statuses}
				srv := httptest.NewServer(rec)
				defer srv.Close()

				n := build(fastConfig(srv.URL))
				assert.Equal(t, channel, n.Channel())

				err := n.NotifyStatusChange(context.Background(), degradedChange())

				assert.Equal(t, tt.wantCalls, rec.calls.Load())
				if tt.wantErr {
					require.Error(t, err)
					assert.Contains(t, err.Error(), channel+" notification")
					if tt.errCheck != nil {
						tt.errCheck(t, err)
					}
					return
				}
				require.NoError(t, err)
			})
		}
	}
}

func TestSlackNotifier_Payload(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	require.NoError(t, NewSlackNotifier(fastConfig(srv.URL), quietLogger()).
		NotifyStatusChange(context.Background(), degradedChange()))

	var payload SlackWebhookPayload
	require.NoError(t, json.Unmarshal(rec.bodies[0], &payload))

	assert.Equal(t, "GitHub is experiencing issues ⚠️", payload.Text)
	require.Len(t, payload.Blocks, 2)
	assert.Equal(t, "section", payload.Blocks[0].Type)
	section := payload.Blocks[0].Text.Text
	assert.Contains(t, section, "*GitHub is experiencing issues ⚠️*")
	assert.Contains(t, section, "Incident with Actions &amp; &lt;Pages&gt; (11:05 - 11:30, Mar 05, 2024)")
	assert.Contains(t, section, "<https://www.githubstatus.com|View GitHub Status>")
	assert.Equal(t, "context", payload.Blocks[1].Type)
	assert.Equal(t, "Previous: OPERATIONAL • Incidents in the last month: 4 • 2024-03-05T12:00:00Z",
		payload.Blocks[1].Elements[0].Text)
}

func TestDiscordNotifier_Payload(t *testing.T) {
	tests := []struct {
		name      string
		change    entity.StatusChange
		wantTitle string
		wantColor int
		wantDesc  string
	}{
		{
			name:      "degraded",
			change:    degradedChange(),
			wantTitle: "GitHub is experiencing issues ⚠️",
			wantColor: colorIssues,
			wantDesc:  "Latest incident: **Incident with Actions & <Pages>**\n11:05 - 11:30, Mar 05, 2024",
		},
		{
			name:      "recovered",
			change:    recoveredChange(),
			wantTitle: "GitHub recovered: All Systems Operational",
			wantColor: colorOperational,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := buildDiscordPayload(tt.change)

			require.Len(t, payload.Embeds, 1)
			e := payload.Embeds[0]
			assert.Equal(t, tt.wantTitle, e.Title)
			assert.Equal(t, tt.wantColor, e.Color)
			assert.Equal(t, tt.wantDesc, e.Description)
			assert.Equal(t, StatusPageURL, e.URL)
			assert.Equal(t, "2024-03-05T12:00:00Z", e.Timestamp)
		})
	}
}

func TestRetryAfterExtraction(t *testing.T) {
	tests := []struct {
		name   string
		fn     retryAfterFunc
		header string
		body   string
		want   time.Duration
	}{
		{name: "slack header", fn: slackRetryAfter, header: "3", want: 3 * time.Second},
		{name: "slack default", fn: slackRetryAfter, want: 5 * time.Second},
		{name: "slack bad header", fn: slackRetryAfter, header: "soon", want: 5 * time.Second},
		{name: "discord body wins", fn: discordRetryAfter, header: "9", body: `{"message":"You are being rate limited.","retry_after":0.25}`, want: 250 * time.Millisecond},
		{name: "discord header fallback", fn: discordRetryAfter, header: "2", body: `{}`, want: 2 * time.Second},
		{name: "discord default", fn: discordRetryAfter, body: "not json", want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, tt.fn(resp, []byte(tt.body)))
		})
	}
}

func TestNotifier_RateLimitedThenDelivered(t *testing.T) {
	rec := &recorder{
		statuses: []int{http.StatusTooManyRequests, http.StatusNoContent},
		respBody: `{"retry_after":0.01}`,
	}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	err := NewDiscordNotifier(fastConfig(srv.URL), quietLogger()).
		NotifyStatusChange(context.Background(), degradedChange())

	require.NoError(t, err)
	assert.Equal(t, int32(2), rec.calls.Load())
}

func TestNotifier_ErrorHidesWebhookURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/services/T000/B000/secret-token"
	srv.Close()

	cfg := fastConfig(url)
	cfg.Retry.MaxAttempts = 1
	err := NewSlackNotifier(cfg, quietLogger()).NotifyStatusChange(context.Background(), degradedChange())

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestNotifier_CircuitOpensAndDrops(t *testing.T) {
	rec := &recorder{statuses: []int{500, 500, 500, 500, 500}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	cfg := fastConfig(srv.URL)
	cfg.Retry.MaxAttempts = 1
	n := NewDiscordNotifier(cfg, quietLogger())

	dropped := metrics.NotificationsTotal.WithLabelValues("discord", metrics.NotifyDropped)
	before := testutil.ToFloat64(dropped)

	for i := 0; i < 3; i++ {
		require.Error(t, n.NotifyStatusChange(context.Background(), degradedChange()))
	}
	err := n.NotifyStatusChange(context.Background(), degradedChange())

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), rec.calls.Load(), "open breaker must not reach the webhook")
	assert.Equal(t, before+1, testutil.ToFloat64(dropped))
}

func TestNotifier_ContextCanceled(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSlackNotifier(fastConfig(srv.URL), quietLogger()).NotifyStatusChange(ctx, degradedChange())

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, rec.calls.Load())
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "server", err: &ServerError{StatusCode: 502}, want: true},
		{name: "rate limit", err: &RateLimitError{RetryAfter: time.Second}, want: true},
		{name: "client", err: &ClientError{StatusCode: 400}, want: false},
		{name: "breaker open", err: gobreaker.ErrOpenState, want: false},
		{name: "half-open saturation", err: gobreaker.ErrTooManyRequests, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "transport", err: errors.New("connection reset by peer"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestRateLimitError_RetryDelay(t *testing.T) {
	var d retry.Delayer = &RateLimitError{RetryAfter: 7 * time.Second}
	assert.Equal(t, 7*time.Second, d.RetryDelay())
	assert.Equal(t, "rate limit exceeded (retry after 7s)", (&RateLimitError{RetryAfter: 7 * time.Second}).Error())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "abc", max: 10, want: "abc"},
		{name: "cut", in: "abcdefghij", max: 6, want: "abc..."},
		{name: "does not split runes", in: "ab⚠️cd", max: 6, want: "ab..."},
		{name: "suffix longer than max", in: "abcdef", max: 2, want: "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.max, "..."))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, 1)
	assert.Equal(t, 2.0, rl.Limit())
	assert.Equal(t, 1, rl.Burst())
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx), "second token is 500ms away, past the deadline")
}

func TestNoOpNotifier(t *testing.T) {
	n := NewNoOpNotifier()
	assert.Equal(t, "noop", n.Channel())
	assert.NoError(t, n.NotifyStatusChange(context.Background(), degradedChange()))
}

func TestMrkdwnEscaper(t *testing.T) {
	assert.Equal(t, "a &amp; b &lt;c&gt;", mrkdwnEscaper.Replace("a & b <c>"))
	assert.False(t, strings.Contains(mrkdwnEscaper.Replace("<x>"), "<"))
}

func TestNotifier_CircuitBreakerNames(t *testing.T) {
	cfg := ChannelConfig{Enabled: true, WebhookURL: "https://example.invalid/hook"}

	slack := NewSlackNotifier(cfg, nil)
	discord := NewDiscordNotifier(cfg, nil)

	assert.Equal(t, "webhook-slack", slack.CircuitBreaker().Name())
	assert.Equal(t, "webhook-discord", discord.CircuitBreaker().Name())
	assert.False(t, slack.CircuitBreaker().IsOpen())
}
