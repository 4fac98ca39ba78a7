//go:build unix

package main

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalContext_SecondSignalForces(t *testing.T) {
	forced := make(chan struct{})
	ctx, stop := signalContext(context.Background(), func() { close(forced) }, syscall.SIGUSR1)
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by the first signal")
	}

	select {
	case <-forced:
		t.Fatal("first signal forced exit")
	default:
	}

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	select {
	case <-forced:
	case <-time.After(5 * time.Second):
		t.Fatal("second signal did not force exit")
	}
}

func TestSignalContext_StopWithoutSignal(t *testing.T) {
	ctx, stop := signalContext(context.Background(), func() { t.Error("force called without a signal") }, syscall.SIGUSR2)

	stop()
	stop()
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}
