package http

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds the request context by d. Handlers in this service always
// answer (a failed feed load renders the empty state), so a deadline is
// enough to cut a slow upstream short without a racing writer.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
