package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/resilience/circuitbreaker"
)

// DiscordWebhookPayload is a webhook execute body with embeds.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed is a single rich embed.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	URL         string             `json:"url"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter is the embed footer.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// DiscordErrorResponse is the JSON body of a Discord error, including 429s.
type DiscordErrorResponse struct {
	Message    string  `json:"message"`
	Code       int     `json:"code"`
	RetryAfter float64 `json:"retry_after"`
}

const (
	maxEmbedTitleLength       = 256
	maxEmbedDescriptionLength = 4096
	maxEmbedFooterLength      = 2048

	colorIssues      = 0xE74C3C
	colorOperational = 0x2ECC71
)

// DiscordNotifier posts status changes to a Discord webhook.
type DiscordNotifier struct {
	hook *webhook
}

// NewDiscordNotifier creates a notifier.
func NewDiscordNotifier(cfg ChannelConfig, logger *slog.Logger) *DiscordNotifier {
	return &DiscordNotifier{hook: newWebhook("discord", cfg, discordRetryAfter, logger)}
}

func (d *DiscordNotifier) Channel() string { return "discord" }

// CircuitBreaker exposes the channel's breaker for health reporting.
func (d *DiscordNotifier) CircuitBreaker() *circuitbreaker.CircuitBreaker { return d.hook.breaker }

// NotifyStatusChange posts change to Discord.
func (d *DiscordNotifier) NotifyStatusChange(ctx context.Context, change entity.StatusChange) error {
	return d.hook.deliver(ctx, buildDiscordPayload(change))
}

func buildDiscordPayload(change entity.StatusChange) DiscordWebhookPayload {
	embed := DiscordEmbed{
		Title: truncate(change.Summary(), maxEmbedTitleLength, "..."),
		URL:   StatusPageURL,
		Color: colorOperational,
		Footer: DiscordEmbedFooter{
			Text: truncate(fmt.Sprintf("Previous: %s • Incidents in the last month: %d", change.Previous, change.Incidents),
				maxEmbedFooterLength, "..."),
		},
		Timestamp: change.DetectedAt.UTC().Format(time.RFC3339),
	}
	if change.Degraded() {
		embed.Color = colorIssues
	}
	if change.Latest != nil {
		embed.Description = truncate(
			fmt.Sprintf("Latest incident: **%s**\n%s, %s", change.Latest.Title, change.Latest.TimeRange, change.Latest.Date),
			maxEmbedDescriptionLength, "...")
	}
	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// discordRetryAfter prefers retry_after (seconds, fractional) from the JSON
// body, then the Retry-After header, then five seconds.
func discordRetryAfter(resp *http.Response, body []byte) time.Duration {
	var derr DiscordErrorResponse
	if err := json.Unmarshal(body, &derr); err == nil && derr.RetryAfter > 0 {
		return time.Duration(derr.RetryAfter * float64(time.Second))
	}
	return retryAfterHeader(resp, 5*time.Second)
}
