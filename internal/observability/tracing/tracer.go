package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for every span of the dashboard.
const TracerName = "ghstatus-dashboard"

// GetTracer returns the tracer from the current global provider.
// It is resolved on every call so a provider installed after startup
// (or swapped in tests) is honoured.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
