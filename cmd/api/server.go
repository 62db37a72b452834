package main

import (
	"log/slog"
	"net/http"

	"ghstatus-dashboard/internal/handler/http/dashboard"
	"ghstatus-dashboard/internal/handler/http/middleware"
	"ghstatus-dashboard/internal/handler/http/pathutil"
	"ghstatus-dashboard/internal/handler/http/requestid"
	"ghstatus-dashboard/internal/observability/tracing"
	"ghstatus-dashboard/pkg/security/csp"

	hhttp "ghstatus-dashboard/internal/handler/http"
)

// newHandler wires routes and the middleware chain. The first middleware
// listed is the outermost.
func newHandler(cfg apiConfig, svc dashboard.Loader, breakers []hhttp.Breaker, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	dashboard.Register(mux, svc, logger)
	mux.Handle("GET "+pathutil.RouteHealth, &hhttp.HealthHandler{Version: cfg.Version, Breakers: breakers})
	mux.Handle("GET "+pathutil.RouteLive, hhttp.LiveHandler())
	mux.Handle("GET "+pathutil.RouteMetrics, hhttp.MetricsHandler())

	mws := []hhttp.Middleware{
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		hhttp.MetricsMiddleware,
	}
	if cfg.CSPEnabled {
		policy := middleware.NewCSP(middleware.CSPConfig{
			Enabled:       true,
			DefaultPolicy: csp.DashboardPolicy(),
			PathPolicies: map[string]*csp.Builder{
				"/api/":               csp.StrictPolicy(),
				pathutil.RouteHealth:  csp.StrictPolicy(),
				pathutil.RouteMetrics: csp.StrictPolicy(),
			},
			ReportOnly: cfg.CSPReportOnly,
		}, logger)
		mws = append(mws, policy.Handler)
		logger.Info("CSP enabled", slog.Bool("report_only", cfg.CSPReportOnly))
	} else {
		logger.Warn("CSP is disabled")
	}
	mws = append(mws, hhttp.Timeout(cfg.RequestTimeout))

	return hhttp.Chain(mux, mws...)
}
