package notifier

import (
	"context"

	"ghstatus-dashboard/internal/domain/entity"
)

// NoOpNotifier discards every change. The worker uses it when no channel is enabled.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

func (n *NoOpNotifier) Channel() string { return "noop" }

func (n *NoOpNotifier) NotifyStatusChange(context.Context, entity.StatusChange) error {
	return nil
}
