// Package respond writes JSON responses and keeps internal error details
// (upstream URLs, webhook tokens) out of what clients see.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v with status code. Encoding failures can only be logged
// because the header is already out.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// Error writes err's message verbatim.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, ErrorBody{Error: err.Error()})
}

var clientSafeFragments = []string{
	"required",
	"invalid",
	"not found",
	"not allowed",
	"must be",
}

// SafeError writes err's message only when it is a client error that reads
// like a validation message. Everything else is logged (sanitized) and
// replaced by a generic text.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < 500 && isClientSafe(err.Error()) {
		Error(w, code, err)
		return
	}
	slog.Default().Error("request failed",
		slog.Int("code", code),
		slog.String("status", http.StatusText(code)),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, ErrorBody{Error: strings.ToLower(http.StatusText(code))})
}

func isClientSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, f := range clientSafeFragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
