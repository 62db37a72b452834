package dashboard

import (
	"context"
	"net/http"

	"ghstatus-dashboard/internal/handler/http/respond"
	"ghstatus-dashboard/internal/usecase/incident"
)

// Loader produces a fresh dashboard per call.
type Loader interface {
	Load(ctx context.Context) incident.Dashboard
}

// APIHandler serves GET /api/dashboard. A failed feed load is still a 200
// with the empty state and an error string: the empty dashboard is a valid answer.
type APIHandler struct {
	Svc Loader
}

func (h APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d := h.Svc.Load(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	respond.JSON(w, http.StatusOK, NewDTO(d))
}
