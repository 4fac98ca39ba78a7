package resilience

import (
	"errors"
	"fmt"
)

// Sentinel errors for resilience operations.
var (
	// ErrBulkheadFull is returned when no bulkhead slot became available in time.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an operation is abandoned at its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrPanic is matched by errors.Is for every *PanicError.
	ErrPanic = errors.New("resilience: operation panicked")
)

// PanicError carries the value recovered from a panicking operation.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Is reports whether target is ErrPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrPanic
}
