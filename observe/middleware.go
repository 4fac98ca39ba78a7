package observe

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/healthd/health"
)

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestMiddleware wraps an HTTP handler with request IDs, a server span,
// an access log entry and, for aggregate health reports, evaluation metrics.
//
// Contract:
//   - Concurrency: Wrap returns a handler safe for concurrent use.
//   - Ownership: request and response bodies pass through unchanged.
type RequestMiddleware struct {
	tracer  trace.Tracer
	metrics Metrics
	logger  Logger
}

// NewRequestMiddleware creates the middleware. Nil parts are replaced by no-ops.
func NewRequestMiddleware(tracer trace.Tracer, metrics Metrics, logger Logger) *RequestMiddleware {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("noop")
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &RequestMiddleware{tracer: tracer, metrics: metrics, logger: logger}
}

// RequestMiddlewareFromObserver creates a RequestMiddleware from an Observer.
func RequestMiddlewareFromObserver(obs Observer) (*RequestMiddleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewRequestMiddleware(obs.Tracer(), metrics, obs.Logger()), nil
}

// Wrap returns next wrapped with observability.
func (m *RequestMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := WithRequestID(r.Context(), id)
		ctx, span := m.tracer.Start(ctx, "http.request",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
		span.End()

		fields := []Field{
			{Key: "method", Value: r.Method},
			{Key: "path", Value: r.URL.Path},
			{Key: "status", Value: rec.status},
			{Key: "bytes", Value: rec.bytes},
			{Key: "duration_ms", Value: duration.Milliseconds()},
			{Key: "remote_addr", Value: r.RemoteAddr},
		}

		if verdict := rec.Header().Get(health.StatusHeader); verdict != "" {
			if check := rec.Header().Get(health.CheckHeader); check != "" {
				fields = append(fields, Field{Key: "check", Value: check})
			} else {
				m.metrics.RecordEvaluation(ctx, verdict, duration)
			}
			fields = append(fields, Field{Key: "health", Value: verdict})
		}

		if rec.status >= http.StatusInternalServerError && rec.status != http.StatusServiceUnavailable {
			m.logger.Error(ctx, "request failed", fields...)
			return
		}
		m.logger.Info(ctx, "request served", fields...)
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// statusRecorder captures the status code and body size.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
