// Package observe instruments health evaluation with OpenTelemetry and zap.
//
// An Observer owns the tracer and meter providers and a structured logger.
// CheckInstrument plugs into health.RunnerConfig to emit one span, one set
// of metrics and one log line per check execution, and RequestMiddleware
// wraps the HTTP handler with request IDs, request spans and access logs.
//
// With the prometheus exporter, MetricsHandler serves the collected
// metrics together with Go runtime and process collectors.
package observe
