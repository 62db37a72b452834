// Package logging provides structured logging helpers on top of log/slog.
//
// Loggers write JSON to stdout by default; LOG_FORMAT=text switches to the
// text handler for local runs and LOG_LEVEL selects the minimum level.
// Request-scoped loggers carry the request id set by the HTTP middleware.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, slog.Default()).Info("rendering dashboard")
//	}
package logging
