package dashboard

import (
	"log/slog"
	"net/http"
)

// Register mounts the page and the JSON endpoint on mux.
func Register(mux *http.ServeMux, svc Loader, logger *slog.Logger) {
	mux.Handle("GET /{$}", PageHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /api/dashboard", APIHandler{Svc: svc})
}
