package health

import "slices"

// Aggregate reduces check results to an overall verdict.
//
// The verdict is Unhealthy if any critical check is Unhealthy or TimedOut,
// Degraded if only non-critical checks failed, and Healthy otherwise,
// including for an empty result set. Results are copied, so the returned
// value does not alias the input.
func Aggregate(results []CheckResult) AggregateStatus {
	overall := StatusHealthy

	for _, r := range results {
		if !r.Status.Failed() {
			continue
		}
		if r.Critical {
			overall = StatusUnhealthy
			break
		}
		overall = StatusDegraded
	}

	return AggregateStatus{
		Overall: overall,
		Results: slices.Clone(results),
	}
}
