package health

import "time"

// CheckStatus is the outcome of a single check execution.
type CheckStatus int

const (
	// CheckHealthy means the probe returned without error.
	CheckHealthy CheckStatus = iota
	// CheckUnhealthy means the probe returned an error or panicked.
	CheckUnhealthy
	// CheckTimedOut means the probe did not finish within the check timeout.
	CheckTimedOut
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckHealthy:
		return "Healthy"
	case CheckUnhealthy:
		return "Unhealthy"
	case CheckTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Failed reports whether the status counts as a failure for aggregation.
func (s CheckStatus) Failed() bool {
	return s == CheckUnhealthy || s == CheckTimedOut
}

// Status represents the overall health verdict for a set of checks.
type Status int

const (
	// StatusHealthy indicates every check passed.
	StatusHealthy Status = iota
	// StatusDegraded indicates only non-critical checks failed.
	StatusDegraded
	// StatusUnhealthy indicates at least one critical check failed.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "Healthy"
	case StatusDegraded:
		return "Degraded"
	case StatusUnhealthy:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

// CheckResult contains the outcome of one check for one evaluation.
type CheckResult struct {
	// Name is the registered check name.
	Name string

	// Status is the check outcome.
	Status CheckStatus

	// Detail is the probe error message for unhealthy results. Empty otherwise.
	Detail string

	// Latency is how long the runner waited for the probe.
	Latency time.Duration

	// Critical mirrors the check's criticality at the time it ran.
	Critical bool

	// Err is the classified error, if any. It wraps ErrProbeFailure or ErrProbeTimeout.
	Err error
}

// LatencyMillis returns the latency rounded down to whole milliseconds.
func (r CheckResult) LatencyMillis() int64 {
	return r.Latency.Milliseconds()
}

// AggregateStatus is the reduced verdict for one evaluation of a registry.
type AggregateStatus struct {
	// Overall is derived from Results by Aggregate.
	Overall Status

	// Results is ordered by registration order.
	Results []CheckResult
}
