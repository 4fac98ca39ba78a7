package health

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthd/resilience"
)

// Instrument observes individual check executions.
//
// Contract:
// - Concurrency: StartCheck is called concurrently for different checks.
// - Lifecycle: the returned function is called exactly once with the result.
type Instrument interface {
	StartCheck(ctx context.Context, c Check) (context.Context, func(CheckResult))
}

// RunnerConfig configures the check runner.
type RunnerConfig struct {
	// MaxInFlight bounds how many executions of the same check may be running
	// at once, counting probes that were abandoned at their timeout but have
	// not returned yet. Waiting for a slot counts against the check timeout.
	// Default: 16
	MaxInFlight int

	// Instrument, if set, observes every check execution.
	Instrument Instrument
}

// Runner executes checks concurrently, each bounded by its own timeout.
// A Runner holds no per-request state and may be shared by all requests.
type Runner struct {
	config RunnerConfig

	mu        sync.Mutex
	bulkheads map[string]*resilience.Bulkhead
}

// NewRunner creates a new check runner.
func NewRunner(config ...RunnerConfig) *Runner {
	cfg := RunnerConfig{MaxInFlight: 16}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.MaxInFlight <= 0 {
			cfg.MaxInFlight = 16
		}
	}

	return &Runner{
		config:    cfg,
		bulkheads: make(map[string]*resilience.Bulkhead),
	}
}

// RunAll runs every check in reg concurrently and returns the results in
// registration order. It returns once each check has either finished or
// reached its timeout; it never waits for an abandoned probe.
func (r *Runner) RunAll(ctx context.Context, reg *Registry) []CheckResult {
	checks := slices.Collect(reg.List())
	results := make([]CheckResult, len(checks))
	if len(checks) == 0 {
		return results
	}

	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			results[i] = r.Run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Evaluate runs every check in reg and aggregates the results.
func (r *Runner) Evaluate(ctx context.Context, reg *Registry) AggregateStatus {
	return Aggregate(r.RunAll(ctx, reg))
}

// Run executes a single check. Probe errors, panics and timeouts are
// reported in the result and never returned or propagated.
func (r *Runner) Run(ctx context.Context, c Check) (result CheckResult) {
	if r.config.Instrument != nil {
		var done func(CheckResult)
		ctx, done = r.config.Instrument.StartCheck(ctx, c)
		defer func() { done(result) }()
	}

	if c.Probe == nil {
		return CheckResult{
			Name:     c.Name,
			Status:   CheckUnhealthy,
			Detail:   "no probe configured",
			Critical: c.Critical,
			Err:      fmt.Errorf("%w: %w", ErrProbeFailure, ErrInvalidCheck),
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	bh := r.bulkhead(c)
	start := time.Now()

	err := resilience.ExecuteWithTimeout(ctx, c.Timeout, func(ctx context.Context) error {
		err := bh.Execute(ctx, c.Probe.Check)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// The probe gave up because our deadline passed.
			return resilience.ErrTimeout
		}
		return err
	})

	return classify(c, err, time.Since(start))
}

// InFlight returns how many probes of the named check are currently running.
func (r *Runner) InFlight(name string) int {
	r.mu.Lock()
	bh, ok := r.bulkheads[name]
	r.mu.Unlock()

	if !ok {
		return 0
	}
	return bh.Metrics().Active
}

func (r *Runner) bulkhead(c Check) *resilience.Bulkhead {
	r.mu.Lock()
	defer r.mu.Unlock()

	bh, ok := r.bulkheads[c.Name]
	if !ok {
		bh = resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: r.config.MaxInFlight,
			MaxWait:       c.Timeout,
		})
		r.bulkheads[c.Name] = bh
	}
	return bh
}

func classify(c Check, err error, latency time.Duration) CheckResult {
	result := CheckResult{
		Name:     c.Name,
		Latency:  latency,
		Critical: c.Critical,
	}

	switch {
	case err == nil:
		result.Status = CheckHealthy
	case errors.Is(err, resilience.ErrTimeout), errors.Is(err, resilience.ErrBulkheadFull):
		result.Status = CheckTimedOut
		result.Err = ErrProbeTimeout
	default:
		result.Status = CheckUnhealthy
		result.Detail = err.Error()
		result.Err = fmt.Errorf("%w: %w", ErrProbeFailure, err)
	}

	return result
}
