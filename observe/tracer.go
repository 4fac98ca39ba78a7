package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/healthd/health"
)

// CheckMeta describes a health check for telemetry purposes.
type CheckMeta struct {
	Name     string        // Registered check name (required)
	Kind     string        // Probe kind, e.g. postgres or http (optional)
	Critical bool          // Whether a failure makes the aggregate Unhealthy
	Timeout  time.Duration // Per-execution timeout
}

// SpanName returns the deterministic span name for this check.
// Format: health.check.<name>
func (m CheckMeta) SpanName() string {
	return "health.check." + m.Name
}

// Kinded is implemented by probes that report their kind.
type Kinded interface {
	Kind() string
}

// MetaFromCheck builds CheckMeta from a registered check.
func MetaFromCheck(c health.Check) CheckMeta {
	meta := CheckMeta{
		Name:     c.Name,
		Critical: c.Critical,
		Timeout:  c.Timeout,
	}
	if k, ok := c.Probe.(Kinded); ok {
		meta.Kind = k.Kind()
	}
	return meta
}

// Tracer wraps OpenTelemetry tracing with check-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one check execution.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the outcome and any error.
	EndSpan(span trace.Span, status string, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with check metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("check.name", meta.Name),
		attribute.Bool("check.critical", meta.Critical),
		attribute.Int64("check.timeout_ms", meta.Timeout.Milliseconds()),
	}
	if meta.Kind != "" {
		attrs = append(attrs, attribute.String("check.kind", meta.Kind))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, status string, err error) {
	span.SetAttributes(attribute.String("check.status", status))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
