// Package notifier delivers status-change messages to chat webhooks.
// Every channel is rate limited, retried on transient failures and guarded
// by its own circuit breaker, so one broken webhook cannot stall another.
package notifier

import (
	"context"

	"ghstatus-dashboard/internal/domain/entity"
)

// Notifier sends a status change to one channel.
type Notifier interface {
	// Channel names the destination ("slack", "discord") for logs and metrics.
	Channel() string
	NotifyStatusChange(ctx context.Context, change entity.StatusChange) error
}
