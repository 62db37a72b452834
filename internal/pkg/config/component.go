package config

import "log/slog"

// ComponentLoader loads the fields of one component's configuration and
// takes care of the fallback bookkeeping: a warning per fallback and the
// component's validation/fallback metrics.
//
//	l := config.NewComponentLoader(src, logger, metrics)
//	cfg.Timeout = config.Field(l, "Timeout", config.LoadDuration(src, "FEED_TIMEOUT", cfg.Timeout, nil))
//	l.Finish()
type ComponentLoader struct {
	src      *Source
	logger   *slog.Logger
	metrics  *ConfigMetrics
	fallback bool
}

// NewComponentLoader creates a loader. metrics may be nil.
func NewComponentLoader(src *Source, logger *slog.Logger, metrics *ConfigMetrics) *ComponentLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComponentLoader{src: src, logger: logger, metrics: metrics}
}

// Source returns the underlying Source.
func (l *ComponentLoader) Source() *Source {
	return l.src
}

// Field records r against the named field and returns its value.
func Field[T any](l *ComponentLoader, field string, r Result[T]) T {
	if r.FallbackApplied {
		l.fallback = true
		if l.metrics != nil {
			l.metrics.RecordValidationError(field)
			l.metrics.RecordFallback(field)
		}
		for _, warning := range r.Warnings {
			l.logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}
	return r.Value
}

// FallbackApplied reports whether any field fell back to its default.
func (l *ComponentLoader) FallbackApplied() bool {
	return l.fallback
}

// Finish publishes the fallback gauge and load timestamp.
func (l *ComponentLoader) Finish() {
	if l.metrics == nil {
		return
	}
	l.metrics.SetFallbackActive(l.fallback)
	l.metrics.RecordLoadTimestamp()
}
