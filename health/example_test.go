package health_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jonwraymond/healthd/health"
)

func ExampleRegistry_Register() {
	reg := health.NewRegistry()

	_ = reg.Register("db", 2*time.Second, health.ProbeFunc(func(ctx context.Context) error {
		return nil
	}))
	err := reg.Register("db", time.Second, health.ProbeFunc(func(ctx context.Context) error {
		return nil
	}))

	fmt.Println("Checks:", reg.Names())
	fmt.Println("Duplicate:", errors.Is(err, health.ErrDuplicateName))
	// Output:
	// Checks: [db]
	// Duplicate: true
}

func ExampleRunner_Evaluate() {
	reg := health.NewRegistry()
	reg.MustRegister("db", time.Second, health.ProbeFunc(func(ctx context.Context) error {
		return nil
	}))
	reg.MustRegister("search", time.Second, health.ProbeFunc(func(ctx context.Context) error {
		return errors.New("cluster red")
	}), health.NonCritical())

	agg := health.NewRunner().Evaluate(context.Background(), reg)

	fmt.Println("Overall:", agg.Overall)
	for _, r := range agg.Results {
		if r.Detail != "" {
			fmt.Printf("%s: %s (%s)\n", r.Name, r.Status, r.Detail)
			continue
		}
		fmt.Printf("%s: %s\n", r.Name, r.Status)
	}
	// Output:
	// Overall: Degraded
	// db: Healthy
	// search: Unhealthy (cluster red)
}

func ExampleAggregate() {
	agg := health.Aggregate([]health.CheckResult{
		{Name: "db", Status: health.CheckHealthy, Critical: true},
		{Name: "cache", Status: health.CheckTimedOut, Critical: true},
	})

	fmt.Println("Overall:", agg.Overall)
	fmt.Println("HTTP:", health.HTTPStatus(agg.Overall))
	// Output:
	// Overall: Unhealthy
	// HTTP: 503
}

func ExampleNewHandler() {
	reg := health.NewRegistry()
	h := health.NewHandler(reg, health.NewRunner())

	mux := http.NewServeMux()
	if err := health.Mount(mux, health.Routes(h, health.RouteConfig{})); err != nil {
		panic(err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	fmt.Println("Status:", rec.Code)
	fmt.Print(rec.Body.String())
	// Output:
	// Status: 200
	// no checks
}

func ExampleFormatLine() {
	line := health.FormatLine(health.CheckResult{
		Name:    "queue",
		Status:  health.CheckUnhealthy,
		Detail:  "broker unreachable",
		Latency: 12 * time.Millisecond,
	})

	fmt.Println(line)
	// Output:
	// queue: Unhealthy (12ms) - broker unreachable
}
