// Command healthd serves aggregated health checks over HTTP.
//
//	healthd serve --config healthd.yaml
//	healthd check --config healthd.yaml
//
// Exit codes: 0 on graceful shutdown or a passing check, 1 on a
// configuration or registration error, 2 when the address cannot be bound,
// 3 when check finds the service Unhealthy. A second interrupt during
// shutdown exits at once with 130.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	exitOK        = 0
	exitConfig    = 1
	exitBind      = 2
	exitUnhealthy = 3

	exitInterrupted = 130
)

// exitError carries a process exit code. A nil err exits silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signalContext(context.Background(), func() { os.Exit(exitInterrupted) }, os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// signalContext returns a context cancelled by the first of sigs. A second
// signal calls force. The returned stop function releases the signals.
func signalContext(parent context.Context, force func(), sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	go func() {
		defer signal.Stop(ch)
		select {
		case <-ch:
			cancel()
		case <-done:
			return
		}
		select {
		case <-ch:
			force()
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			close(done)
			cancel()
		})
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(stderr, "error:", exitErr.err)
		}
		return exitErr.code
	}
	fmt.Fprintln(stderr, "error:", err)
	return exitConfig
}

type rootOptions struct {
	configPath string
	envFiles   []string
	logs       io.Writer
}

func newRootCmd(logs io.Writer) *cobra.Command {
	opts := &rootOptions{logs: logs}

	root := &cobra.Command{
		Use:           "healthd",
		Short:         "Health and readiness probe aggregator",
		Long:          "healthd runs configured dependency checks concurrently and serves the aggregate verdict over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("HEALTHD_CONFIG"),
		"YAML config file (env HEALTHD_CONFIG)")
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil,
		".env files to load before the HEALTHD_* overlay (default ./.env)")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newCheckCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}
