// Package app wires configuration, probes, the check runner, telemetry and
// the HTTP server into the healthd daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthd/cache"
	"github.com/jonwraymond/healthd/config"
	"github.com/jonwraymond/healthd/health"
	"github.com/jonwraymond/healthd/observe"
	"github.com/jonwraymond/healthd/probes"
	"github.com/jonwraymond/healthd/secret"
)

// Version is reported as service.version. Set with -ldflags.
var Version = "dev"

// Options customizes New.
type Options struct {
	// LogWriter receives log entries. Default: os.Stderr
	LogWriter io.Writer

	// Resolver resolves secret references in check parameters.
	// Default: env and file providers, strict.
	Resolver *secret.Resolver
}

// App is a fully wired healthd instance.
type App struct {
	cfg      config.Config
	observer observe.Observer
	logger   observe.Logger
	resolver *secret.Resolver
	registry *health.Registry
	runner   *health.Runner
	handler  *health.Handler
	closers  []namedCloser
}

type namedCloser struct {
	name string
	io.Closer
}

// New builds the registry from cfg.Checks and wires everything around it.
// The registry is sealed on return. On error, anything already opened is
// closed.
func New(ctx context.Context, cfg config.Config, opts Options) (_ *App, err error) {
	obsCfg := cfg.ObserverConfig(Version)
	obsCfg.Logging.Writer = opts.LogWriter
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}

	a := &App{
		cfg:      cfg,
		observer: obs,
		logger:   obs.Logger(),
		resolver: opts.Resolver,
		registry: health.NewRegistry(),
	}
	if a.resolver == nil {
		a.resolver = secret.NewDefaultResolver()
	}
	a.closers = append(a.closers, namedCloser{name: "secret resolver", Closer: a.resolver})

	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	if err := a.registerChecks(ctx); err != nil {
		return nil, err
	}
	a.registry.Seal()

	instrument, err := observe.InstrumentFromObserver(obs)
	if err != nil {
		return nil, fmt.Errorf("instrument: %w", err)
	}
	a.runner = health.NewRunner(health.RunnerConfig{
		MaxInFlight: cfg.MaxInFlight,
		Instrument:  instrument,
	})

	store, err := a.buildCache(ctx)
	if err != nil {
		return nil, err
	}
	a.handler = health.NewHandler(a.registry, a.runner, health.HandlerConfig{
		Path:     cfg.Path,
		Cache:    store,
		CacheTTL: cfg.CacheTTL,
	})

	if err := health.ValidateRoutes(a.Routes()); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	return a, nil
}

func (a *App) registerChecks(ctx context.Context) error {
	for _, cc := range a.cfg.Checks {
		params, err := a.resolver.ResolveMap(ctx, cc.Params)
		if err != nil {
			return fmt.Errorf("check %q: %w", cc.Name, err)
		}

		probe, err := probes.Build(ctx, cc.Probe, params)
		if err != nil {
			return fmt.Errorf("check %q: %w", cc.Name, err)
		}
		if closer, ok := probe.(io.Closer); ok {
			a.closers = append(a.closers, namedCloser{name: "check " + cc.Name, Closer: closer})
		}

		if err := a.registry.Register(cc.Name, cc.Timeout(), probe, health.WithCritical(cc.IsCritical())); err != nil {
			return fmt.Errorf("register check: %w", err)
		}

		c, _ := a.registry.Lookup(cc.Name)
		a.logger.Debug(ctx, "check registered",
			observe.Field{Key: "check.name", Value: c.Name},
			observe.Field{Key: "check.kind", Value: cc.Probe},
			observe.Field{Key: "check.critical", Value: c.Critical},
			observe.Field{Key: "check.timeout_ms", Value: c.Timeout.Milliseconds()},
		)
	}
	return nil
}

func (a *App) buildCache(ctx context.Context) (cache.Cache, error) {
	if a.cfg.CacheTTL <= 0 {
		return nil, nil
	}
	policy := cache.TTLPolicy(a.cfg.CacheTTL)

	if a.cfg.CacheBackend != config.CacheRedis {
		return cache.NewMemoryCache(policy), nil
	}

	raw, err := a.resolver.ResolveValue(ctx, a.cfg.CacheRedisURL)
	if err != nil {
		return nil, fmt.Errorf("cache_redis_url: %w", err)
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: cache_redis_url could not be parsed", config.ErrInvalidConfig)
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, namedCloser{name: "redis cache", Closer: client})

	return cache.NewRedisCache(client, policy), nil
}

// Registry returns the sealed check registry.
func (a *App) Registry() *health.Registry { return a.registry }

// Logger returns the application logger.
func (a *App) Logger() observe.Logger { return a.logger }

// Routes returns the route table: health, single check, liveness, and
// /metrics when the prometheus exporter is enabled.
func (a *App) Routes() []health.Route {
	var extra []health.Route
	if h := a.observer.MetricsHandler(); h != nil {
		extra = append(extra, health.Route{Pattern: config.MetricsPath, Handler: h, Description: "prometheus metrics"})
	}
	return health.Routes(a.handler, health.RouteConfig{
		LivenessPath: a.cfg.LivenessPath,
		Extra:        extra,
	})
}

// Handler returns the mounted routes behind the request middleware.
func (a *App) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := health.Mount(mux, a.Routes()); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	mw, err := observe.RequestMiddlewareFromObserver(a.observer)
	if err != nil {
		return nil, fmt.Errorf("request middleware: %w", err)
	}
	return mw.Wrap(mux), nil
}

// NewServer returns an unstarted server for the app's handler.
func (a *App) NewServer() (*health.Server, error) {
	h, err := a.Handler()
	if err != nil {
		return nil, err
	}
	return health.NewServer(h, a.cfg.ServerConfig()), nil
}

// Serve binds, serves until ctx is cancelled, then drains. Bind failures
// wrap health.ErrBind.
func (a *App) Serve(ctx context.Context) error {
	srv, err := a.NewServer()
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	a.logger.Info(ctx, "serving health checks",
		observe.Field{Key: "addr", Value: srv.Addr().String()},
		observe.Field{Key: "path", Value: a.handler.Path()},
		observe.Field{Key: "checks", Value: a.registry.Names()},
	)

	if err := srv.Run(ctx); err != nil {
		return err
	}
	a.logger.Info(ctx, "server stopped")
	return nil
}

// CheckOnce evaluates every check once and writes the text report to w.
func (a *App) CheckOnce(ctx context.Context, w io.Writer) (health.Status, error) {
	agg := a.runner.Evaluate(ctx, a.registry)
	if _, err := io.WriteString(w, health.FormatText(agg.Results)); err != nil {
		return agg.Overall, err
	}
	return agg.Overall, nil
}

// Close releases probe connections in reverse order, then flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range slices.Backward(a.closers) {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil

	if err := a.observer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
