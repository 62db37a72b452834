package notifier

import (
	"errors"
	"log/slog"
	"time"

	"ghstatus-dashboard/internal/pkg/config"
)

// Config holds every channel.
type Config struct {
	Slack   ChannelConfig
	Discord ChannelConfig
}

// LoadConfig reads SLACK_* and DISCORD_* settings. A channel that is enabled
// without a usable webhook URL is switched off with a warning instead of
// failing the worker.
func LoadConfig(l *config.ComponentLoader) Config {
	return Config{
		Slack:   loadChannel(l, "slack", "SLACK"),
		Discord: loadChannel(l, "discord", "DISCORD"),
	}
}

func loadChannel(l *config.ComponentLoader, name, prefix string) ChannelConfig {
	src := l.Source()
	cfg := ChannelConfig{Timeout: 10 * time.Second}

	cfg.Enabled = config.Field(l, name+"_enabled",
		config.LoadBool(src, prefix+"_ENABLED", false))
	cfg.WebhookURL = config.Field(l, name+"_webhook_url",
		config.LoadString(src, prefix+"_WEBHOOK_URL", "", config.ValidateHTTPURL))
	cfg.Timeout = config.Field(l, name+"_timeout",
		config.LoadDuration(src, prefix+"_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
			return config.ValidateDuration(d, time.Second, time.Minute)
		}))

	if cfg.Enabled && cfg.WebhookURL == "" {
		cfg.Enabled = config.Field(l, name+"_enabled", config.Result[bool]{
			Value:           false,
			Warnings:        []string{prefix + "_ENABLED is true but " + prefix + "_WEBHOOK_URL is empty or invalid, disabling " + name},
			FallbackApplied: true,
		})
	}
	return cfg
}

// ErrNoChannels is returned by New when every channel is disabled.
var ErrNoChannels = errors.New("no notification channel enabled")

// New builds a notifier per enabled channel. With none enabled it returns
// a single NoOpNotifier and ErrNoChannels so the caller can log it.
func New(cfg Config, logger *slog.Logger) ([]Notifier, error) {
	var out []Notifier
	if cfg.Slack.Enabled {
		out = append(out, NewSlackNotifier(cfg.Slack, logger))
	}
	if cfg.Discord.Enabled {
		out = append(out, NewDiscordNotifier(cfg.Discord, logger))
	}
	if len(out) == 0 {
		return []Notifier{NewNoOpNotifier()}, ErrNoChannels
	}
	return out, nil
}
