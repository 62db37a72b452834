// Package middleware holds response-hardening middleware for the dashboard server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"ghstatus-dashboard/pkg/security/csp"
)

type nonceKey struct{}

// NonceFromContext returns the script nonce issued for this response, or "".
func NonceFromContext(ctx context.Context) string {
	n, _ := ctx.Value(nonceKey{}).(string)
	return n
}

// CSPConfig selects a policy per path prefix.
type CSPConfig struct {
	Enabled bool
	// DefaultPolicy applies when no PathPolicies prefix matches.
	DefaultPolicy *csp.Builder
	// PathPolicies maps a path prefix to its policy; the longest prefix wins.
	PathPolicies map[string]*csp.Builder
	ReportOnly   bool
}

// CSP sets a Content-Security-Policy header per request. When the chosen
// policy restricts scripts, a fresh nonce is added to it and stored in the
// request context for templates to stamp on inline scripts.
type CSP struct {
	config CSPConfig
	logger *slog.Logger
}

// NewCSP creates the middleware. A nil logger means slog.Default().
func NewCSP(config CSPConfig, logger *slog.Logger) *CSP {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSP{config: config, logger: logger}
}

// Handler wraps next.
func (m *CSP) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		base := m.selectPolicy(r.URL.Path)
		if base == nil {
			next.ServeHTTP(w, r)
			return
		}

		policy := base.Clone()
		if m.config.ReportOnly {
			policy.ReportOnly(true)
		}
		if policy.Has("script-src") {
			nonce, err := csp.NewNonce()
			if err != nil {
				m.logger.Error("csp nonce unavailable, serving without nonce", slog.Any("error", err))
			} else {
				policy.AddScriptNonce(nonce)
				r = r.WithContext(context.WithValue(r.Context(), nonceKey{}, nonce))
			}
		}

		if value := policy.Build(); value != "" {
			w.Header().Set(policy.HeaderName(), value)
		}
		next.ServeHTTP(w, r)
	})
}

func (m *CSP) selectPolicy(path string) *csp.Builder {
	longest := ""
	var matched *csp.Builder
	for prefix, policy := range m.config.PathPolicies {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(longest) {
			longest = prefix
			matched = policy
		}
	}
	if matched != nil {
		return matched
	}
	return m.config.DefaultPolicy
}
