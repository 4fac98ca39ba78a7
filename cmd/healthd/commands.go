package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthd/config"
	"github.com/jonwraymond/healthd/health"
	"github.com/jonwraymond/healthd/internal/app"
	"github.com/jonwraymond/healthd/observe"
)

// closeTimeout bounds releasing connections and flushing telemetry on exit.
const closeTimeout = 5 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the health endpoints until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := build(ctx, opts)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			if err := a.Serve(ctx); err != nil {
				if errors.Is(err, health.ErrBind) {
					return &exitError{code: exitBind, err: err}
				}
				return &exitError{code: exitConfig, err: err}
			}
			return nil
		},
	}
}

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every check once, print the report and exit 3 if Unhealthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			a, err := build(ctx, opts)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			status, err := a.CheckOnce(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if status == health.StatusUnhealthy {
				return &exitError{code: exitUnhealthy}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline for the run (0 = per-check timeouts only)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.Version)
			return err
		},
	}
}

// build loads configuration and wires the app. Every failure maps to exitConfig.
func build(ctx context.Context, opts *rootOptions) (*app.App, error) {
	cfg, err := config.Load(opts.configPath, opts.envFiles...)
	if err != nil {
		return nil, &exitError{code: exitConfig, err: err}
	}

	a, err := app.New(ctx, cfg, app.Options{LogWriter: opts.logs})
	if err != nil {
		return nil, &exitError{code: exitConfig, err: err}
	}
	return a, nil
}

func closeApp(ctx context.Context, a *app.App) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	if err := a.Close(closeCtx); err != nil {
		a.Logger().Error(closeCtx, "shutdown incomplete", observe.Field{Key: "error", Value: err})
	}
}
