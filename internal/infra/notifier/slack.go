package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/resilience/circuitbreaker"
)

// SlackWebhookPayload is an Incoming Webhook message using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is a Block Kit block ("section" or "context").
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject is a mrkdwn or plain_text object.
type SlackTextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150
	slackTruncation      = "..."
)

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// SlackNotifier posts status changes to a Slack Incoming Webhook.
type SlackNotifier struct {
	hook *webhook
}

// NewSlackNotifier creates a notifier. Slack allows about one message per
// second per webhook, which is the default rate.
func NewSlackNotifier(cfg ChannelConfig, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{hook: newWebhook("slack", cfg, slackRetryAfter, logger)}
}

func (s *SlackNotifier) Channel() string { return "slack" }

// CircuitBreaker exposes the channel's breaker for health reporting.
func (s *SlackNotifier) CircuitBreaker() *circuitbreaker.CircuitBreaker { return s.hook.breaker }

// NotifyStatusChange posts change to Slack.
func (s *SlackNotifier) NotifyStatusChange(ctx context.Context, change entity.StatusChange) error {
	return s.hook.deliver(ctx, buildSlackPayload(change))
}

func buildSlackPayload(change entity.StatusChange) SlackWebhookPayload {
	summary := change.Summary()

	section := fmt.Sprintf("*%s*", mrkdwnEscaper.Replace(summary))
	if change.Latest != nil {
		section += fmt.Sprintf("\nLatest incident: %s (%s, %s)",
			mrkdwnEscaper.Replace(change.Latest.Title),
			change.Latest.TimeRange,
			change.Latest.Date)
	}
	section += fmt.Sprintf("\n<%s|View GitHub Status>", StatusPageURL)

	footer := fmt.Sprintf("Previous: %s • Incidents in the last month: %d • %s",
		change.Previous, change.Incidents, change.DetectedAt.UTC().Format(time.RFC3339))

	return SlackWebhookPayload{
		Text: truncate(summary, maxFallbackLength, slackTruncation),
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(section, maxSectionTextLength, slackTruncation)},
			},
			{
				Type:     "context",
				Elements: []SlackTextObject{{Type: "mrkdwn", Text: truncate(footer, maxContextTextLength, slackTruncation)}},
			},
		},
	}
}

// slackRetryAfter honours the Retry-After header, defaulting to five seconds.
func slackRetryAfter(resp *http.Response, _ []byte) time.Duration {
	return retryAfterHeader(resp, 5*time.Second)
}
