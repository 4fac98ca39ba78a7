package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{})

	if timeout.Config().Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", timeout.Config().Timeout)
	}
}

func TestTimeout_ExecuteSuccess(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	executed := false
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		executed = true
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !executed {
		t.Error("Operation was not executed")
	}
}

func TestTimeout_ExecuteError(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	testErr := errors.New("connection refused")
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		return testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
}

func TestTimeout_AbandonsBlockedOperation(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: 20 * time.Millisecond})

	block := make(chan struct{})
	defer close(block)

	start := time.Now()
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		<-block // ignores ctx on purpose
		return nil
	})
	elapsed := time.Since(start)

	if err != ErrTimeout {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Execute() blocked for %v after the deadline", elapsed)
	}
}

func TestTimeout_RecoversPanic(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		panic("nil map write")
	})

	if !errors.Is(err, ErrPanic) {
		t.Fatalf("Execute() error = %v, want ErrPanic", err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "nil map write" {
		t.Errorf("PanicError value = %v, want 'nil map write'", pe)
	}
}

func TestTimeout_ExecuteContextCancelled(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())

	err := timeout.Execute(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestTimeout_OperationSeesCancellation(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: 30 * time.Millisecond})

	ctxDoneCh := make(chan bool, 1)
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			ctxDoneCh <- true
			return ctx.Err()
		case <-time.After(time.Second):
			ctxDoneCh <- false
			return nil
		}
	})

	if err != ErrTimeout {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}

	select {
	case ctxDone := <-ctxDoneCh:
		if !ctxDone {
			t.Error("Context was not cancelled")
		}
	case <-time.After(200 * time.Millisecond):
		t.Error("Operation goroutine did not complete")
	}
}

func TestExecuteWithTimeout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		err := ExecuteWithTimeout(context.Background(), time.Second, func(ctx context.Context) error {
			return nil
		})
		if err != nil {
			t.Errorf("ExecuteWithTimeout() error = %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		err := ExecuteWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		})
		if err != ErrTimeout {
			t.Errorf("ExecuteWithTimeout() error = %v, want ErrTimeout", err)
		}
	})
}
