// Package health aggregates readiness probes behind an HTTP endpoint.
//
// A Registry holds named checks, each with a Probe, a timeout and a
// criticality flag. A Runner executes every check concurrently, bounding
// each by its own timeout, and Aggregate reduces the results to a single
// verdict: Healthy, Degraded (only non-critical checks failed) or
// Unhealthy (a critical check failed or timed out).
//
// # Basic Usage
//
//	reg := health.NewRegistry()
//	reg.MustRegister("db", 2*time.Second, health.ProbeFunc(pool.Ping))
//	reg.MustRegister("cache", 50*time.Millisecond, redisProbe, health.NonCritical())
//
//	runner := health.NewRunner()
//	agg := runner.Evaluate(ctx, reg)
//	fmt.Println(agg.Overall) // Healthy, Degraded or Unhealthy
//
// # Timeouts
//
// A probe that outlives its timeout is reported as TimedOut and abandoned:
// the evaluation does not wait for it. Abandoned probes of one check hold
// a slot until they return, and at most RunnerConfig.MaxInFlight of them
// may be running at once, so a permanently stuck dependency cannot grow
// the number of goroutines without bound.
//
// # HTTP Endpoints
//
//	h := health.NewHandler(reg, runner, health.HandlerConfig{Path: "/healthz"})
//	mux := http.NewServeMux()
//	if err := health.Mount(mux, health.Routes(h, health.RouteConfig{})); err != nil {
//		return err
//	}
//
// GET /healthz answers 200 for Healthy and Degraded and 503 for Unhealthy,
// with one "<name>: <status> (<latency>ms)" line per check. Ask for JSON
// with ?format=json or an Accept: application/json header. GET
// /healthz/{name} evaluates one check and /livez reports liveness only.
package health
