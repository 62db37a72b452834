package worker

import (
	"context"
	"log/slog"
	"time"

	"ghstatus-dashboard/internal/usecase/watch"
)

// Checker runs one status check.
type Checker interface {
	Check(ctx context.Context) (watch.Result, error)
}

// Job adapts a Checker to cron: every run gets its own timeout, and the
// outcome is logged and recorded in metrics and the health server.
type Job struct {
	Checker Checker
	Metrics *Metrics
	Health  *HealthServer
	Timeout time.Duration
	Logger  *slog.Logger

	// Parent is the context runs derive from; Background when nil.
	Parent context.Context
}

// Run implements cron.Job.
func (j *Job) Run() {
	parent := j.Parent
	if parent == nil {
		parent = context.Background()
	}
	_ = j.RunContext(parent)
}

// RunContext performs one check and returns its error.
func (j *Job) RunContext(ctx context.Context) error {
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := j.Checker.Check(ctx)
	elapsed := time.Since(start)

	if err != nil {
		j.record(CheckFailure, elapsed)
		logger.Error("status check failed",
			slog.Duration("duration", elapsed),
			slog.Any("error", err))
		return err
	}

	j.record(CheckSuccess, elapsed)
	if j.Metrics != nil {
		j.Metrics.RecordSuccess(res.Status)
		if res.Changed {
			j.Metrics.RecordStatusChange(res.Status)
		}
	}
	if j.Health != nil {
		j.Health.MarkSuccess(time.Now())
	}

	logger.Info("status check completed",
		slog.String("status", string(res.Status)),
		slog.Bool("baseline", res.Baseline),
		slog.Bool("changed", res.Changed),
		slog.Int("delivered", res.Delivered),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", elapsed))
	return nil
}

func (j *Job) record(status string, elapsed time.Duration) {
	if j.Metrics != nil {
		j.Metrics.RecordCheck(status, elapsed.Seconds())
	}
}
