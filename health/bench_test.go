package health

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func BenchmarkRunner_Run(b *testing.B) {
	r := NewRunner()
	c := Check{Name: "db", Timeout: time.Second, Critical: true, Probe: okProbe()}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Run(ctx, c)
	}
}

func BenchmarkRunner_RunAll(b *testing.B) {
	for _, n := range []int{1, 8, 64} {
		b.Run(fmt.Sprintf("checks=%d", n), func(b *testing.B) {
			reg := NewRegistry()
			for i := 0; i < n; i++ {
				reg.MustRegister(fmt.Sprintf("c%d", i), time.Second, okProbe())
			}
			r := NewRunner()
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = r.RunAll(ctx, reg)
			}
		})
	}
}

func BenchmarkAggregate(b *testing.B) {
	results := make([]CheckResult, 32)
	for i := range results {
		results[i] = CheckResult{Name: fmt.Sprintf("c%d", i), Status: CheckHealthy, Critical: i%2 == 0}
	}
	results[31].Status = CheckUnhealthy

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(results)
	}
}

func BenchmarkRegistry_Register(b *testing.B) {
	for i := 0; i < b.N; i++ {
		reg := NewRegistry()
		for j := 0; j < 10; j++ {
			_ = reg.Register(fmt.Sprintf("c%d", j), time.Second, okProbe())
		}
	}
}

func BenchmarkMemoryProbe_Check(b *testing.B) {
	p := NewMemoryProbe(MemoryProbeConfig{Threshold: 1})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Check(ctx)
	}
}

func BenchmarkLivenessHandler_ServeHTTP(b *testing.B) {
	h := LivenessHandler()
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}

func BenchmarkHandler_ServeHTTP(b *testing.B) {
	reg := NewRegistry()
	for i := 0; i < 4; i++ {
		reg.MustRegister(fmt.Sprintf("c%d", i), time.Second, okProbe())
	}
	h := NewHandler(reg, NewRunner())

	for _, target := range []string{"/healthz", "/healthz?format=json"} {
		b.Run(target, func(b *testing.B) {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				h.ServeHTTP(httptest.NewRecorder(), req)
			}
		})
	}
}

func BenchmarkStatus_String(b *testing.B) {
	statuses := []Status{StatusHealthy, StatusDegraded, StatusUnhealthy}
	for i := 0; i < b.N; i++ {
		_ = statuses[i%len(statuses)].String()
	}
}
