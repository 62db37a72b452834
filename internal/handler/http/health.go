// Package http holds the cross-cutting HTTP plumbing of the dashboard
// server: middleware, health endpoints and the metrics endpoint.
package http

import (
	"net/http"
	"time"

	"ghstatus-dashboard/internal/handler/http/respond"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckStatus `json:"checks,omitempty"`
}

// CheckStatus reports one dependency.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// Breaker is the read side of a circuit breaker guarding a dependency.
type Breaker interface {
	Name() string
	IsOpen() bool
}

// HealthHandler reports liveness plus the state of the upstream breakers.
// An open breaker degrades the report but still answers 200: the page keeps
// serving its empty state while the feed is down.
type HealthHandler struct {
	Version  string
	Breakers []Breaker
	Now      func() time.Time
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	resp := HealthResponse{
		Status:    statusHealthy,
		Timestamp: now().UTC().Format(time.RFC3339),
		Version:   h.Version,
	}
	if len(h.Breakers) > 0 {
		resp.Checks = make(map[string]CheckStatus, len(h.Breakers))
	}
	for _, b := range h.Breakers {
		if b.IsOpen() {
			resp.Status = statusDegraded
			resp.Checks[b.Name()] = CheckStatus{Status: statusDegraded, Message: "circuit open"}
			continue
		}
		resp.Checks[b.Name()] = CheckStatus{Status: statusHealthy}
	}

	respond.JSON(w, http.StatusOK, resp)
}

// LiveHandler answers 200 as long as the process serves HTTP.
func LiveHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
}
