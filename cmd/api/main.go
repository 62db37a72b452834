// Command api serves the GitHub status dashboard: the HTML page, its JSON
// feed, health probes and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ghstatus-dashboard/internal/infra/fetcher"
	"ghstatus-dashboard/internal/observability/logging"
	"ghstatus-dashboard/internal/pkg/config"
	"ghstatus-dashboard/internal/usecase/incident"

	hhttp "ghstatus-dashboard/internal/handler/http"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	src, err := config.SourceFromEnv()
	if err != nil {
		logger.Warn("config file unreadable, using environment only", slog.Any("error", err))
		src = config.EnvSource()
	}

	apiLoader := config.NewComponentLoader(src, logger, config.NewConfigMetrics("api"))
	cfg := loadAPIConfig(apiLoader)
	apiLoader.Finish()

	feedLoader := config.NewComponentLoader(src, logger, config.NewConfigMetrics("fetcher"))
	feedCfg := fetcher.LoadConfig(feedLoader)
	feedLoader.Finish()

	feed := fetcher.NewHTTPFetcher(feedCfg)
	svc := incident.NewService(feed, feed.URL(), cfg.location())
	svc.Logger = logger

	logger.Info("configuration loaded",
		slog.Int("port", cfg.Port),
		slog.String("feed_url", feed.URL()),
		slog.String("display_timezone", cfg.DisplayTimezone),
		slog.Duration("request_timeout", cfg.RequestTimeout))

	handler := newHandler(cfg, svc, []hhttp.Breaker{feed.CircuitBreaker()}, logger)
	runServer(logger, handler, cfg)
}

func runServer(logger *slog.Logger, handler http.Handler, cfg apiConfig) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
