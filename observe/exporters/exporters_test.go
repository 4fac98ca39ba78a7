package exporters

import (
	"bytes"
	"context"
	"strings"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestTracingExporter_Names(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")

	tests := []struct {
		name    string
		wantErr string
	}{
		{"stdout", ""},
		{"none", ""},
		{"", ""},
		{"otlp", "endpoint"},
		{"jaeger", "endpoint"},
		{"invalid", "unknown exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewTracingExporter(context.Background(), tt.name, WithWriter(&bytes.Buffer{}))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewTracingExporter(%q) = %v", tt.name, err)
				}
				if exp == nil {
					t.Fatal("expected non-nil exporter")
				}
				return
			}
			if err == nil || !strings.Contains(strings.ToLower(err.Error()), tt.wantErr) {
				t.Errorf("NewTracingExporter(%q) error = %v, want %q", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestTracingExporter_OtlpWithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")

	exp, err := NewTracingExporter(context.Background(), "otlp")
	if err != nil {
		t.Fatalf("failed to create OTLP exporter with endpoint: %v", err)
	}
	if exp == nil {
		t.Fatal("expected non-nil exporter")
	}
}

func TestMetricsReader_Names(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	tests := []struct {
		name    string
		wantErr string
	}{
		{"stdout", ""},
		{"none", ""},
		{"otlp", "endpoint"},
		{"badvalue", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewMetricsReader(context.Background(), tt.name, WithWriter(&bytes.Buffer{}))
			if tt.wantErr == "" {
				if err != nil || reader == nil {
					t.Fatalf("NewMetricsReader(%q) = %v, %v", tt.name, reader, err)
				}
				return
			}
			if err == nil || !strings.Contains(strings.ToLower(err.Error()), tt.wantErr) {
				t.Errorf("NewMetricsReader(%q) error = %v, want %q", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestMetricsReader_PrometheusRegisterer(t *testing.T) {
	reg := promclient.NewRegistry()

	reader, err := NewMetricsReader(context.Background(), "prometheus", WithRegisterer(reg))
	if err != nil {
		t.Fatalf("failed to create Prometheus reader: %v", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	counter, err := mp.Meter("test").Int64Counter("health.check.total")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	counter.Add(context.Background(), 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "health_check_total") {
			found = true
		}
	}
	if !found {
		t.Error("metric was not exported to the supplied registry")
	}
}
