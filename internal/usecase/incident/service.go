package incident

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/observability/metrics"
	"ghstatus-dashboard/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FeedFetcher retrieves the raw feed document from a URL.
type FeedFetcher interface {
	FetchRaw(ctx context.Context, url string) (string, error)
}

// Dashboard is everything the presentation layer needs for one render.
// On failure Err is set and the rest is the empty state: no incidents,
// OPERATIONAL, empty series.
type Dashboard struct {
	Incidents      []entity.Incident
	Aggregation    entity.AggregationResult
	Chart          entity.ChartSeries
	EvaluatedAt    time.Time
	WindowStart    time.Time
	SkippedEntries int
	Err            error
}

// Status is a shortcut for the derived current status.
func (d Dashboard) Status() entity.Status {
	if d.Aggregation.CurrentStatus == "" {
		return entity.StatusOperational
	}
	return d.Aggregation.CurrentStatus
}

// Build runs the pure part of the pipeline on already parsed incidents.
func Build(incidents []entity.Incident, evaluatedAt time.Time) Dashboard {
	if incidents == nil {
		incidents = []entity.Incident{}
	}
	agg := Aggregate(incidents, evaluatedAt)
	return Dashboard{
		Incidents:   incidents,
		Aggregation: agg,
		Chart:       BuildChartSeries(incidents, agg.CountByDate),
		EvaluatedAt: evaluatedAt,
	}
}

// Service loads the feed and turns it into a Dashboard.
type Service struct {
	Fetcher  FeedFetcher
	FeedURL  string
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewService creates a Service reading feedURL through fetcher and
// formatting dates in loc (UTC when nil).
func NewService(fetcher FeedFetcher, feedURL string, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Fetcher:  fetcher,
		FeedURL:  feedURL,
		Location: loc,
		Now:      time.Now,
	}
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Load fetches the feed once and evaluates it at the current time.
// It never returns an error: failures are logged, counted, attached to
// Dashboard.Err (wrapping ErrFetchFailure) and rendered as the empty state.
func (s *Service) Load(ctx context.Context) Dashboard {
	ctx, span := tracing.StartSpan(ctx, "incident.load", attribute.String("feed.url", s.FeedURL))
	defer span.End()

	logger := s.logger()
	evaluatedAt := s.now()
	start := time.Now()

	raw, err := s.Fetcher.FetchRaw(ctx, s.FeedURL)
	if err != nil {
		metrics.RecordFeedFetch(metrics.ResultFetchError, time.Since(start))
		logger.Error("status feed fetch failed",
			slog.String("url", s.FeedURL),
			slog.Any("error", err))
		return s.fail(span, evaluatedAt, fmt.Errorf("%w: %w", ErrFetchFailure, wrapFetchErr(err)))
	}

	result, err := ParseFeed(raw, evaluatedAt, s.Location)
	if err != nil {
		metrics.RecordFeedFetch(metrics.ResultParseError, time.Since(start))
		logger.Error("status feed parse failed",
			slog.String("url", s.FeedURL),
			slog.Int("bytes", len(raw)),
			slog.Any("error", err))
		return s.fail(span, evaluatedAt, fmt.Errorf("%w: %w", ErrFetchFailure, err))
	}
	metrics.RecordFeedFetch(metrics.ResultSuccess, time.Since(start))

	for _, sk := range result.Skipped {
		field := ""
		var ve *entity.ValidationError
		if errors.As(sk.Err, &ve) {
			field = ve.Field
		}
		metrics.RecordEntrySkipped(field)
		logger.Warn("skipping malformed feed entry",
			slog.Int("index", sk.Index),
			slog.Any("error", sk.Err))
	}

	dash := Build(result.Incidents, evaluatedAt)
	dash.WindowStart = result.WindowStart
	dash.SkippedEntries = len(result.Skipped)

	metrics.UpdateIncidentsRetained(len(dash.Incidents))
	metrics.UpdateCurrentStatus(dash.Status())
	span.SetAttributes(
		attribute.Int("feed.entries", result.Entries),
		attribute.Int("incidents.retained", len(dash.Incidents)),
		attribute.String("status", string(dash.Status())),
	)

	logger.Debug("status feed evaluated",
		slog.Int("entries", result.Entries),
		slog.Int("retained", len(dash.Incidents)),
		slog.Int("skipped", len(result.Skipped)),
		slog.String("status", string(dash.Status())),
		slog.Time("window_start", result.WindowStart))

	return dash
}

func (s *Service) fail(span trace.Span, evaluatedAt time.Time, err error) Dashboard {
	tracing.RecordError(span, err)
	dash := Build(nil, evaluatedAt)
	dash.WindowStart = WindowStart(evaluatedAt, s.Location)
	dash.Err = err
	return dash
}

// wrapFetchErr makes sure transport failures match ErrFeedFetchFailed.
func wrapFetchErr(err error) error {
	if errors.Is(err, ErrFeedFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrFeedFetchFailed, err)
}
