package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ghstatus-dashboard/internal/pkg/config"

	hhttp "ghstatus-dashboard/internal/handler/http"
)

const defaultMetricsPort = 9090

// metricsPort reads METRICS_PORT, 9090 when unset or invalid.
func metricsPort(src *config.Source) int {
	return config.LoadInt(src, "METRICS_PORT", defaultMetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1, 65535)
	}).Value
}

// metricsMux serves /metrics and /health/channels, the latter reporting the
// feed and webhook circuit breakers.
func metricsMux(breakers []hhttp.Breaker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /health/channels", &hhttp.HealthHandler{Breakers: breakers})
	return mux
}

// startMetricsServer serves metricsMux in the background until ctx is done.
func startMetricsServer(ctx context.Context, logger *slog.Logger, src *config.Source, breakers []hhttp.Breaker) *http.Server {
	port := metricsPort(src)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           metricsMux(breakers),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
			return
		}
		logger.Info("metrics server stopped")
	}()

	return server
}
