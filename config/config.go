// Package config loads the healthd daemon configuration.
//
// Values come from three layers, later layers winning:
//
//  1. built-in defaults (see Default)
//  2. a YAML file
//  3. HEALTHD_* environment variables, after loading an optional .env file
//
// Check parameters are not resolved here; secret references in them are
// resolved by the secret package when the checks are built.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthd/health"
	"github.com/jonwraymond/healthd/observe"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "HEALTHD_"

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// MetricsPath serves the Prometheus exposition when that exporter is enabled.
const MetricsPath = "/metrics"

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the daemon configuration.
type Config struct {
	Address      string `yaml:"address" env:"ADDRESS"`
	Port         int    `yaml:"port" env:"PORT"`
	Path         string `yaml:"path" env:"PATH"`
	LivenessPath string `yaml:"liveness_path" env:"LIVENESS_PATH"`

	// CacheTTL reuses a rendered report for this long. Zero disables caching.
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
	CacheBackend  string        `yaml:"cache_backend" env:"CACHE_BACKEND"`
	CacheRedisURL string        `yaml:"cache_redis_url" env:"CACHE_REDIS_URL"`

	MaxInFlight     int           `yaml:"max_in_flight" env:"MAX_IN_FLIGHT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	Observe ObserveConfig `yaml:"observe" envPrefix:"OBSERVE_"`

	Checks []CheckConfig `yaml:"checks" env:"-"`
}

// ObserveConfig configures tracing and metrics export.
type ObserveConfig struct {
	ServiceName string        `yaml:"service_name" env:"SERVICE_NAME"`
	Tracing     TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`
	Metrics     MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled   bool    `yaml:"enabled" env:"ENABLED"`
	Exporter  string  `yaml:"exporter" env:"EXPORTER"`
	SamplePct float64 `yaml:"sample_pct" env:"SAMPLE_PCT"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Exporter string `yaml:"exporter" env:"EXPORTER"`
}

// CheckConfig declares one check.
type CheckConfig struct {
	Name      string            `yaml:"name"`
	TimeoutMS int               `yaml:"timeout_ms"`
	Critical  *bool             `yaml:"critical"`
	Probe     string            `yaml:"probe"`
	Params    map[string]string `yaml:"params"`
}

// Timeout returns the check timeout, or zero for the runner default.
func (c CheckConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// IsCritical reports whether the check is critical. Unset means critical.
func (c CheckConfig) IsCritical() bool {
	return c.Critical == nil || *c.Critical
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Address:         "127.0.0.1",
		Port:            8080,
		Path:            health.DefaultPath,
		LivenessPath:    health.DefaultLivenessPath,
		CacheBackend:    CacheMemory,
		MaxInFlight:     16,
		ShutdownTimeout: 15 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
		Observe: ObserveConfig{
			ServiceName: "healthd",
			Tracing:     TracingConfig{Exporter: "otlp", SamplePct: 0.1},
			Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), loads the
// given .env files (./.env when none are given, missing files ignored),
// applies the HEALTHD_* overlay, then sanitizes and validates the result.
func Load(path string, dotenv ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(dotenv...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Sanitize applies defaults to zero values and clamps out-of-range values.
func (c *Config) Sanitize() {
	d := Default()

	c.Address = strings.TrimSpace(c.Address)
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" {
		c.Path = d.Path
	}
	c.LivenessPath = strings.TrimSpace(c.LivenessPath)
	if c.LivenessPath == "" {
		c.LivenessPath = d.LivenessPath
	}

	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	c.CacheBackend = strings.ToLower(strings.TrimSpace(c.CacheBackend))
	if c.CacheBackend == "" {
		c.CacheBackend = CacheMemory
	}

	switch {
	case c.MaxInFlight <= 0:
		c.MaxInFlight = d.MaxInFlight
	case c.MaxInFlight > 1024:
		c.MaxInFlight = 1024
	}

	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}

	if strings.TrimSpace(c.Observe.ServiceName) == "" {
		c.Observe.ServiceName = d.Observe.ServiceName
	}

	for i := range c.Checks {
		c.Checks[i].Name = strings.TrimSpace(c.Checks[i].Name)
		c.Checks[i].Probe = strings.ToLower(strings.TrimSpace(c.Checks[i].Probe))
	}
}

// Validate reports every problem found, joined, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if !strings.HasPrefix(c.Path, "/") {
		errs = append(errs, fmt.Errorf("path %q must start with /", c.Path))
	}
	if c.LivenessPath != "-" && !strings.HasPrefix(c.LivenessPath, "/") {
		errs = append(errs, fmt.Errorf("liveness_path %q must start with / or be -", c.LivenessPath))
	}
	errs = append(errs, c.validateRoutes()...)

	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.CacheTTL > 0 && c.CacheRedisURL == "" {
			errs = append(errs, errors.New("cache_redis_url is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache_backend %q: want %s or %s", c.CacheBackend, CacheMemory, CacheRedis))
	}

	obs := c.ObserverConfig("")
	if err := obs.Validate(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]int, len(c.Checks))
	for i, check := range c.Checks {
		switch {
		case check.Name == "":
			errs = append(errs, fmt.Errorf("checks[%d]: name is required", i))
		case seen[check.Name] > 0:
			errs = append(errs, fmt.Errorf("checks[%d]: %w: %q", i, health.ErrDuplicateName, check.Name))
		}
		seen[check.Name]++

		if check.Probe == "" {
			errs = append(errs, fmt.Errorf("checks[%d] %q: probe is required", i, check.Name))
		}
		if check.TimeoutMS < 0 {
			errs = append(errs, fmt.Errorf("checks[%d] %q: timeout_ms must not be negative", i, check.Name))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// validateRoutes rejects paths that would collide once normalized and mounted.
func (c *Config) validateRoutes() []error {
	var errs []error

	path := health.NormalizePath(c.Path)
	reserved := map[string]string{path: "path"}
	if c.PrometheusEnabled() {
		if path == MetricsPath {
			errs = append(errs, fmt.Errorf("path %q is reserved for metrics", c.Path))
		}
		reserved[MetricsPath] = "metrics"
	}

	if c.LivenessPath == "-" {
		return errs
	}
	live := health.NormalizePath(c.LivenessPath)
	if owner, ok := reserved[live]; ok {
		errs = append(errs, fmt.Errorf("liveness_path %q collides with the %s route %q", c.LivenessPath, owner, live))
	} else if path != "/" && strings.HasPrefix(live, path+"/") {
		errs = append(errs, fmt.Errorf("liveness_path %q shadows single checks under %q", c.LivenessPath, path))
	}
	return errs
}

// PrometheusEnabled reports whether the daemon serves MetricsPath.
func (c *Config) PrometheusEnabled() bool {
	return c.Observe.Metrics.Enabled && c.Observe.Metrics.Exporter == "prometheus"
}

// ListenAddr returns host:port.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// ServerConfig returns the HTTP server settings.
func (c *Config) ServerConfig() health.ServerConfig {
	return health.ServerConfig{
		Addr:              c.ListenAddr(),
		ReadHeaderTimeout: c.ReadTimeout,
		WriteTimeout:      c.WriteTimeout,
		IdleTimeout:       c.IdleTimeout,
		ShutdownTimeout:   c.ShutdownTimeout,
	}
}

// ObserverConfig returns the observer settings for the given build version.
func (c *Config) ObserverConfig(version string) observe.Config {
	return observe.Config{
		ServiceName: c.Observe.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Observe.Tracing.Enabled,
			Exporter:  c.Observe.Tracing.Exporter,
			SamplePct: c.Observe.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Observe.Metrics.Enabled,
			Exporter: c.Observe.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
			Format:  c.LogFormat,
		},
	}
}
