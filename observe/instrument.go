package observe

import (
	"context"

	"github.com/jonwraymond/healthd/health"
)

// CheckInstrument traces, measures and logs every check execution.
// It implements health.Instrument.
type CheckInstrument struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewCheckInstrument creates an instrument from its parts. Nil parts are
// replaced by no-ops.
func NewCheckInstrument(tracer Tracer, metrics Metrics, logger Logger) *CheckInstrument {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &CheckInstrument{tracer: tracer, metrics: metrics, logger: logger}
}

// InstrumentFromObserver creates a CheckInstrument from an Observer.
func InstrumentFromObserver(obs Observer) (*CheckInstrument, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewCheckInstrument(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// StartCheck implements health.Instrument.
func (i *CheckInstrument) StartCheck(ctx context.Context, c health.Check) (context.Context, func(health.CheckResult)) {
	meta := MetaFromCheck(c)
	ctx, span := i.tracer.StartSpan(ctx, meta)

	return ctx, func(res health.CheckResult) {
		status := res.Status.String()

		i.tracer.EndSpan(span, status, res.Err)
		i.metrics.RecordCheck(ctx, meta, res.Latency, status)

		logger := i.logger.WithCheck(meta)
		fields := []Field{
			{Key: "status", Value: status},
			{Key: "duration_ms", Value: res.LatencyMillis()},
		}

		if !res.Status.Failed() {
			logger.Debug(ctx, "check passed", fields...)
			return
		}
		if res.Detail != "" {
			fields = append(fields, Field{Key: "detail", Value: res.Detail})
		}
		logger.Warn(ctx, "check failed", fields...)
	}
}

var _ health.Instrument = (*CheckInstrument)(nil)
