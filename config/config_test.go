package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/healthd/health"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

const sampleYAML = `
address: 0.0.0.0
port: 9090
path: /ready
cache_ttl: 2s
max_in_flight: 4
log_level: DEBUG
observe:
  service_name: edge
  tracing: {enabled: true, exporter: stdout, sample_pct: 0.5}
  metrics: {enabled: false}
checks:
  - name: db
    timeout_ms: 500
    probe: postgres
    params: {dsn: "secretref:env:DATABASE_URL"}
  - name: search
    critical: false
    probe: OpenSearch
    params: {addresses: "http://localhost:9200"}
`

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "healthd.yaml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr())
	assert.Equal(t, "/ready", cfg.Path)
	assert.Equal(t, health.DefaultLivenessPath, cfg.LivenessPath)
	assert.Equal(t, 2*time.Second, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.MaxInFlight)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout, "unset values keep defaults")

	require.Len(t, cfg.Checks, 2)
	db, search := cfg.Checks[0], cfg.Checks[1]
	assert.Equal(t, "db", db.Name)
	assert.Equal(t, 500*time.Millisecond, db.Timeout())
	assert.True(t, db.IsCritical(), "critical defaults to true")
	assert.Equal(t, "secretref:env:DATABASE_URL", db.Params["dsn"], "params are not resolved by config")
	assert.False(t, search.IsCritical())
	assert.Equal(t, "opensearch", search.Probe)
	assert.Zero(t, search.Timeout())

	obs := cfg.ObserverConfig("1.2.3")
	assert.Equal(t, "edge", obs.ServiceName)
	assert.Equal(t, "1.2.3", obs.Version)
	assert.True(t, obs.Tracing.Enabled)
	assert.InDelta(t, 0.5, obs.Tracing.SamplePct, 1e-9)
	assert.False(t, obs.Metrics.Enabled)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Equal(t, d.Path, cfg.Path)
	assert.Zero(t, cfg.CacheTTL, "caching is off by default")
	assert.Empty(t, cfg.Checks)
}

func TestLoad_EnvOverlay(t *testing.T) {
	path := writeFile(t, "healthd.yaml", sampleYAML)
	t.Setenv("HEALTHD_PORT", "7070")
	t.Setenv("HEALTHD_PATH", "/health")
	t.Setenv("HEALTHD_CACHE_TTL", "250ms")
	t.Setenv("HEALTHD_LOG_LEVEL", "warn")
	t.Setenv("HEALTHD_OBSERVE_METRICS_ENABLED", "true")
	t.Setenv("HEALTHD_OBSERVE_METRICS_EXPORTER", "prometheus")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Address, "file value kept when env is unset")
	assert.Equal(t, "/health", cfg.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.CacheTTL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Observe.Metrics.Enabled)
	assert.Equal(t, "prometheus", cfg.Observe.Metrics.Exporter)
	assert.Len(t, cfg.Checks, 2)
}

func TestLoad_DotEnv(t *testing.T) {
	unsetEnv(t, "HEALTHD_ADDRESS")
	dotenv := writeFile(t, ".env", "HEALTHD_ADDRESS=10.0.0.5\n")

	cfg, err := Load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Address)
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	t.Setenv("HEALTHD_ADDRESS", "192.168.1.1")
	dotenv := writeFile(t, ".env", "HEALTHD_ADDRESS=10.0.0.5\n")

	cfg, err := Load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.1", cfg.Address)
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		invalid bool
	}{
		{name: "unknown field", yaml: "prot: 80\n"},
		{name: "malformed", yaml: "checks: [\n"},
		{name: "bad env", env: map[string]string{"HEALTHD_PORT": "eighty"}},
		{name: "port out of range", yaml: "port: 70000\n", invalid: true},
		{name: "duplicate check", yaml: "checks: [{name: a, probe: static}, {name: a, probe: static}]\n", invalid: true},
		{name: "missing probe", yaml: "checks: [{name: a}]\n", invalid: true},
		{name: "unknown cache backend", yaml: "cache_backend: memcached\n", invalid: true},
		{name: "redis without url", yaml: "cache_ttl: 1s\ncache_backend: redis\n", invalid: true},
		{name: "bad log level", yaml: "log_level: loud\n", invalid: true},
		{name: "liveness on path", yaml: "path: /healthz/\nliveness_path: /healthz\n", invalid: true},
		{name: "liveness under path", yaml: "liveness_path: /healthz/live\n", invalid: true},
		{name: "path on metrics", yaml: "path: /metrics\n", invalid: true},
		{name: "liveness on metrics", yaml: "liveness_path: /metrics/\n", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "healthd.yaml", tt.yaml)
			}

			_, err := Load(path)
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Port, cfg.Port)
}

func TestValidate_DuplicateWrapsSentinel(t *testing.T) {
	cfg := Default()
	cfg.Checks = []CheckConfig{{Name: "db", Probe: "postgres"}, {Name: "db", Probe: "redis"}}

	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, health.ErrDuplicateName)
}

func TestValidate_Routes(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		liveness string
		metrics  bool
		wantErr  bool
	}{
		{name: "defaults", path: "/healthz", liveness: "/livez", metrics: true},
		{name: "trailing slash collides", path: "/ready/", liveness: "/ready", wantErr: true},
		{name: "liveness disabled", path: "/healthz", liveness: "-", metrics: true},
		{name: "metrics path free without prometheus", path: "/metrics", liveness: "/livez"},
		{name: "metrics path taken", path: "/metrics", liveness: "/livez", metrics: true, wantErr: true},
		{name: "root path", path: "/", liveness: "/livez", metrics: true},
		{name: "root path and liveness", path: "/", liveness: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Path = tt.path
			cfg.LivenessPath = tt.liveness
			cfg.Observe.Metrics.Enabled = tt.metrics

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSanitize(t *testing.T) {
	cfg := Config{
		Address:     "  ",
		CacheTTL:    -time.Second,
		MaxInFlight: 5000,
		LogLevel:    " INFO ",
		Checks:      []CheckConfig{{Name: " db ", Probe: " Postgres "}},
	}
	cfg.Sanitize()

	assert.Equal(t, "127.0.0.1", cfg.Address)
	assert.Equal(t, 8080, cfg.Port)
	assert.Zero(t, cfg.CacheTTL)
	assert.Equal(t, 1024, cfg.MaxInFlight)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "healthd", cfg.Observe.ServiceName)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, "db", cfg.Checks[0].Name)
	assert.Equal(t, "postgres", cfg.Checks[0].Probe)
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig(t *testing.T) {
	cfg := Default()
	sc := cfg.ServerConfig()

	assert.Equal(t, "127.0.0.1:8080", sc.Addr)
	assert.Equal(t, cfg.ReadTimeout, sc.ReadHeaderTimeout)
	assert.Equal(t, cfg.ShutdownTimeout, sc.ShutdownTimeout)
}

func TestCheckConfig_Critical(t *testing.T) {
	no, yes := false, true
	assert.True(t, CheckConfig{}.IsCritical())
	assert.True(t, CheckConfig{Critical: &yes}.IsCritical())
	assert.False(t, CheckConfig{Critical: &no}.IsCritical())
}
