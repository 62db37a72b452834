// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global otel tracer provider; without an SDK
// provider installed they are no-ops, but trace ids still propagate from
// incoming W3C headers.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "incident.load")
//	defer span.End()
package tracing
