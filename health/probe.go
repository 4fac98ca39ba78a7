package health

import (
	"context"
	"time"
)

// DefaultTimeout is applied to checks registered with a zero timeout.
const DefaultTimeout = 5 * time.Second

// Probe inspects a dependency or internal condition.
//
// Contract:
// - Concurrency: Check may be called from several goroutines at once.
// - Context: implementations should return promptly once ctx is done. The runner
//   stops waiting at the check timeout whether or not the probe cooperates.
// - Errors: a nil error means healthy; the error text is reported as the detail.
type Probe interface {
	Check(ctx context.Context) error
}

// ProbeFunc is an adapter to allow ordinary functions to be used as Probes.
type ProbeFunc func(ctx context.Context) error

// Check calls f(ctx).
func (f ProbeFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// Check is a registered, named probe.
type Check struct {
	// Name is unique within a Registry.
	Name string

	// Timeout bounds a single execution of Probe.
	Timeout time.Duration

	// Critical controls whether a failure makes the aggregate Unhealthy
	// (true) or only Degraded (false).
	Critical bool

	// Probe performs the inspection.
	Probe Probe
}

// CheckOption configures a Check at registration time.
type CheckOption func(*Check)

// NonCritical marks the check as non-critical.
func NonCritical() CheckOption {
	return func(c *Check) {
		c.Critical = false
	}
}

// WithCritical sets the check criticality explicitly.
func WithCritical(critical bool) CheckOption {
	return func(c *Check) {
		c.Critical = critical
	}
}
