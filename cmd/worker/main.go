// Command worker checks the GitHub status feed on a cron schedule and posts
// to Slack and Discord whenever the derived status changes.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"ghstatus-dashboard/internal/infra/fetcher"
	"ghstatus-dashboard/internal/infra/notifier"
	"ghstatus-dashboard/internal/infra/worker"
	"ghstatus-dashboard/internal/observability/logging"
	"ghstatus-dashboard/internal/pkg/config"
	"ghstatus-dashboard/internal/resilience/circuitbreaker"
	"ghstatus-dashboard/internal/usecase/incident"
	"ghstatus-dashboard/internal/usecase/watch"

	hhttp "ghstatus-dashboard/internal/handler/http"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := config.SourceFromEnv()
	if err != nil {
		logger.Warn("config file unreadable, using environment only", slog.Any("error", err))
		src = config.EnvSource()
	}

	workerMetrics := worker.NewMetrics()
	workerLoader := config.NewComponentLoader(src, logger, workerMetrics.ConfigMetrics)
	workerCfg := worker.LoadConfig(workerLoader)
	workerLoader.Finish()
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerCfg.CronSchedule),
		slog.String("timezone", workerCfg.Timezone),
		slog.Int("notify_max_concurrent", workerCfg.NotifyMaxConcurrent),
		slog.Duration("check_timeout", workerCfg.CheckTimeout),
		slog.Int("health_port", workerCfg.HealthPort))

	feedLoader := config.NewComponentLoader(src, logger, config.NewConfigMetrics("fetcher"))
	feedCfg := fetcher.LoadConfig(feedLoader)
	feedLoader.Finish()

	notifyLoader := config.NewComponentLoader(src, logger, config.NewConfigMetrics("notifier"))
	notifyCfg := notifier.LoadConfig(notifyLoader)
	notifyLoader.Finish()

	notifiers, err := notifier.New(notifyCfg, logger)
	if errors.Is(err, notifier.ErrNoChannels) {
		logger.Warn("no notification channel enabled, status changes will only be logged")
	}
	breakers := []hhttp.Breaker{}
	watchers := make([]watch.Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		watchers = append(watchers, n)
		if b, ok := n.(interface{ CircuitBreaker() *circuitbreaker.CircuitBreaker }); ok {
			breakers = append(breakers, b.CircuitBreaker())
		}
		logger.Info("notification channel initialized", slog.String("channel", n.Channel()))
	}

	feed := fetcher.NewHTTPFetcher(feedCfg)
	breakers = append(breakers, feed.CircuitBreaker())
	svc := incident.NewService(feed, feed.URL(), workerCfg.Location())
	svc.Logger = logger

	watcher := watch.New(svc, watchers,
		watch.WithLogger(logger),
		watch.WithMaxConcurrent(workerCfg.NotifyMaxConcurrent))

	startMetricsServer(ctx, logger, src, breakers)

	healthServer := worker.NewHealthServer(workerCfg.HealthAddr(), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := &worker.Job{
		Checker: watcher,
		Metrics: workerMetrics,
		Health:  healthServer,
		Timeout: workerCfg.CheckTimeout,
		Logger:  logger,
		Parent:  ctx,
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	c := cron.New(
		cron.WithLocation(workerCfg.Location()),
		cron.WithParser(config.CronParser),
		cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	)
	if _, err := c.AddJob(workerCfg.CronSchedule, job); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}

	// Record the baseline before the first tick.
	job.Run()

	c.Start()
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", workerCfg.CronSchedule),
		slog.String("timezone", workerCfg.Timezone))

	<-ctx.Done()
	logger.Info("worker shutting down")
	healthServer.SetReady(false)
	<-c.Stop().Done()
	logger.Info("worker stopped")
}
