package resilience

import (
	"context"
	"errors"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum time to wait for the operation.
	// Default: 5 seconds
	Timeout time.Duration
}

// Timeout waits for an operation up to a deadline and abandons it afterwards.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	return &Timeout{config: config}
}

// Execute runs op in a new goroutine with a context bounded by the timeout.
//
// It returns op's error if op finishes first, ErrTimeout if the deadline
// passes first, or the parent context's error if the parent is cancelled.
// In the last two cases op keeps running until it notices its context.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	// Buffered so an abandoned op can always deliver and exit.
	done := make(chan error, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- &PanicError{Value: p}
			}
		}()
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout runs op under a one-off Timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: timeout}).Execute(ctx, op)
}
