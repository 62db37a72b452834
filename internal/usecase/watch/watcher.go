// Package watch re-evaluates the status feed on demand and announces
// transitions of the derived status to the notification channels.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/observability/tracing"
	"ghstatus-dashboard/internal/usecase/incident"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// ErrCheckFailed wraps a feed load failure. The previous status is kept.
var ErrCheckFailed = errors.New("status check failed")

// Loader evaluates the dashboard once.
type Loader interface {
	Load(ctx context.Context) incident.Dashboard
}

// Notifier delivers a status change to one channel.
type Notifier interface {
	Channel() string
	NotifyStatusChange(ctx context.Context, change entity.StatusChange) error
}

// Result summarises one check.
type Result struct {
	Status    entity.Status
	Baseline  bool
	Changed   bool
	Change    *entity.StatusChange
	Delivered int
	Failed    int
}

// Watcher remembers the last observed status between checks.
type Watcher struct {
	loader        Loader
	notifiers     []Notifier
	maxConcurrent int
	logger        *slog.Logger

	mu       sync.Mutex
	last     entity.Status
	baseline bool
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger (slog.Default otherwise).
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithMaxConcurrent bounds parallel deliveries (default: one per notifier).
func WithMaxConcurrent(n int) Option {
	return func(w *Watcher) { w.maxConcurrent = n }
}

// New creates a Watcher that has not seen any status yet.
func New(loader Loader, notifiers []Notifier, opts ...Option) *Watcher {
	w := &Watcher{loader: loader, notifiers: notifiers, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// LastStatus returns the last observed status and whether one exists.
func (w *Watcher) LastStatus() (entity.Status, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.baseline
}

// Check loads the dashboard and, when the status differs from the previous
// successful check, notifies every channel concurrently. The first
// successful check only records the baseline. A load failure returns
// ErrCheckFailed and leaves the remembered status untouched, so an outage
// of the feed is never announced as a recovery. Delivery failures are
// logged and counted in Result but never fail the check.
func (w *Watcher) Check(ctx context.Context) (Result, error) {
	ctx, span := tracing.StartSpan(ctx, "watch.check")
	defer span.End()

	d := w.loader.Load(ctx)
	if d.Err != nil {
		err := fmt.Errorf("%w: %w", ErrCheckFailed, d.Err)
		tracing.RecordError(span, err)
		return Result{}, err
	}

	current := d.Status()
	res := Result{Status: current}
	span.SetAttributes(attribute.String("status", string(current)))

	w.mu.Lock()
	previous, hadBaseline := w.last, w.baseline
	w.last, w.baseline = current, true
	w.mu.Unlock()

	if !hadBaseline {
		res.Baseline = true
		w.logger.Info("status baseline recorded", slog.String("status", string(current)))
		return res, nil
	}
	if previous == current {
		return res, nil
	}

	change := entity.StatusChange{
		Previous:   previous,
		Current:    current,
		DetectedAt: d.EvaluatedAt,
		Latest:     latestIncident(d.Incidents),
		Incidents:  len(d.Incidents),
	}
	res.Changed = true
	res.Change = &change
	span.SetAttributes(attribute.String("previous_status", string(previous)))

	w.logger.Info("status changed",
		slog.String("from", string(previous)),
		slog.String("to", string(current)),
		slog.Int("channels", len(w.notifiers)))

	res.Delivered, res.Failed = w.fanOut(ctx, change)
	return res, nil
}

func (w *Watcher) fanOut(ctx context.Context, change entity.StatusChange) (delivered, failed int) {
	var ok, bad atomic.Int32
	var g errgroup.Group
	if w.maxConcurrent > 0 {
		g.SetLimit(w.maxConcurrent)
	}

	for _, n := range w.notifiers {
		g.Go(func() error {
			start := time.Now()
			if err := n.NotifyStatusChange(ctx, change); err != nil {
				bad.Add(1)
				w.logger.Error("status change notification failed",
					slog.String("channel", n.Channel()),
					slog.Duration("elapsed", time.Since(start)),
					slog.Any("error", err))
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(ok.Load()), int(bad.Load())
}

func latestIncident(incidents []entity.Incident) *entity.Incident {
	if len(incidents) == 0 {
		return nil
	}
	latest := incidents[0]
	for _, inc := range incidents[1:] {
		if inc.Updated.After(latest.Updated) {
			latest = inc
		}
	}
	return &latest
}
