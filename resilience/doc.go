// Package resilience provides the execution guards used when running probes.
//
// Two patterns are provided:
//
//   - Timeout: runs an operation in its own goroutine and stops waiting at a
//     deadline. The operation's context is cancelled, but an operation that
//     ignores its context is abandoned rather than awaited. Panics raised by
//     the operation are recovered and returned as *PanicError.
//
//   - Bulkhead: bounds how many operations may be running at once. Because
//     abandoned operations keep their slot until they really return, a
//     bulkhead placed inside a Timeout caps the number of stuck goroutines.
//
// # Usage
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
//	    MaxConcurrent: 4,
//	    MaxWait:       time.Second,
//	})
//
//	err := resilience.ExecuteWithTimeout(ctx, time.Second, func(ctx context.Context) error {
//	    return bh.Execute(ctx, pingDatabase)
//	})
//	if errors.Is(err, resilience.ErrTimeout) {
//	    // the operation was abandoned
//	}
package resilience
