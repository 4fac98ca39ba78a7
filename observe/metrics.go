package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records health evaluation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one check execution and its outcome.
	RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, status string)

	// RecordEvaluation records one served health report and its verdict.
	RecordEvaluation(ctx context.Context, status string, duration time.Duration)
}

type metricsImpl struct {
	checkTotal    metric.Int64Counter
	checkFailures metric.Int64Counter
	checkDuration metric.Float64Histogram
	evalTotal     metric.Int64Counter
	evalDuration  metric.Float64Histogram
}

// NewMetrics creates the health instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	checkTotal, err := meter.Int64Counter(
		"health.check.total",
		metric.WithDescription("Total number of check executions"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkFailures, err := meter.Int64Counter(
		"health.check.failures",
		metric.WithDescription("Check executions that were unhealthy or timed out"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkDuration, err := meter.Float64Histogram(
		"health.check.duration_ms",
		metric.WithDescription("Check execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evalTotal, err := meter.Int64Counter(
		"health.evaluation.total",
		metric.WithDescription("Total number of served health reports by verdict"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, err
	}

	evalDuration, err := meter.Float64Histogram(
		"health.evaluation.duration_ms",
		metric.WithDescription("Health report latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		checkTotal:    checkTotal,
		checkFailures: checkFailures,
		checkDuration: checkDuration,
		evalTotal:     evalTotal,
		evalDuration:  evalDuration,
	}, nil
}

func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, duration time.Duration, status string) {
	opt := metric.WithAttributes(
		attribute.String("check.name", meta.Name),
		attribute.String("check.status", status),
		attribute.Bool("check.critical", meta.Critical),
	)

	m.checkTotal.Add(ctx, 1, opt)
	if status != "Healthy" {
		m.checkFailures.Add(ctx, 1, opt)
	}
	m.checkDuration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordEvaluation(ctx context.Context, status string, duration time.Duration) {
	opt := metric.WithAttributes(attribute.String("health.status", status))

	m.evalTotal.Add(ctx, 1, opt)
	m.evalDuration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordCheck(context.Context, CheckMeta, time.Duration, string) {}

func (noopMetrics) RecordEvaluation(context.Context, string, time.Duration) {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}
