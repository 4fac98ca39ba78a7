package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/healthd/cache"
)

// DefaultPath is the default path of the aggregate health endpoint.
const DefaultPath = "/healthz"

// StatusHeader carries the verdict on every health response.
const StatusHeader = "X-Health-Status"

// CheckHeader names the check on single-check responses. Its absence
// means StatusHeader holds the aggregate verdict.
const CheckHeader = "X-Health-Check"

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
	allowedMethods  = "GET, HEAD"
)

// HTTPStatus maps a verdict to the response status code.
// Healthy and Degraded are served as 200, everything else as 503.
func HTTPStatus(s Status) int {
	switch s {
	case StatusHealthy, StatusDegraded:
		return http.StatusOK
	default:
		return http.StatusServiceUnavailable
	}
}

// LivenessHandler returns an HTTP handler for liveness probes.
// It only reports that the process is serving and runs no checks.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r) {
			return
		}
		w.Header().Set("Content-Type", contentTypeText)
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte("OK"))
		}
	}
}

// HandlerConfig configures the health handler.
type HandlerConfig struct {
	// Path of the aggregate endpoint. Single checks are served below it.
	// Default: /healthz
	Path string

	// Cache stores rendered responses. Nil disables caching.
	Cache cache.Cache

	// CacheTTL is how long a rendered response is reused.
	// Default: 0 (every request evaluates the registry)
	CacheTTL time.Duration
}

// Handler serves the aggregate health report and single-check reports.
type Handler struct {
	registry *Registry
	runner   *Runner
	config   HandlerConfig
	memo     *cache.Memoizer
	keyer    cache.Keyer
}

// NewHandler creates a handler evaluating reg with runner.
func NewHandler(reg *Registry, runner *Runner, config ...HandlerConfig) *Handler {
	var cfg HandlerConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	cfg.Path = NormalizePath(cfg.Path)

	policy := cache.DefaultPolicy()
	if cfg.CacheTTL > 0 {
		policy = cache.TTLPolicy(cfg.CacheTTL)
	}

	return &Handler{
		registry: reg,
		runner:   runner,
		config:   cfg,
		memo:     cache.NewMemoizer(cfg.Cache, policy),
		keyer:    cache.NewHashKeyer(),
	}
}

// Path returns the aggregate endpoint path.
func (h *Handler) Path() string {
	return h.config.Path
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r) {
		return
	}

	format := negotiate(r)
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	switch {
	case path == h.config.Path:
		h.serve(w, r, format, "", h.renderAggregate)
	case strings.HasPrefix(path, h.config.Path+"/") || h.config.Path == "/":
		name := strings.TrimPrefix(strings.TrimPrefix(path, h.config.Path), "/")
		h.serve(w, r, format, name, func(ctx context.Context, format string) (response, error) {
			return h.renderCheck(ctx, format, name)
		})
	default:
		http.NotFound(w, r)
	}
}

// response is a rendered health response, cached as JSON.
type response struct {
	Code        int    `json:"code"`
	ContentType string `json:"content_type"`
	Status      string `json:"status"`
	Check       string `json:"check,omitempty"`
	Body        []byte `json:"body"`
}

type renderFunc func(ctx context.Context, format string) (response, error)

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, format, check string, render renderFunc) {
	ctx := r.Context()

	var resp response
	if h.memo.Enabled() {
		// A shared evaluation must not be cut short by one client leaving.
		evalCtx := context.WithoutCancel(ctx)
		key, err := h.keyer.Key(h.config.Path, map[string]string{"format": format, "check": check})
		if err == nil {
			raw, _, err := h.memo.Load(ctx, key, func(context.Context) ([]byte, error) {
				resp, err := render(evalCtx, format)
				if err != nil {
					return nil, err
				}
				return json.Marshal(resp)
			})
			if err == nil && json.Unmarshal(raw, &resp) == nil {
				write(w, r, resp)
				return
			}
		}
	}

	resp, err := render(ctx, format)
	if err != nil {
		resp = errorResponse(http.StatusInternalServerError, format, err)
	}
	write(w, r, resp)
}

func write(w http.ResponseWriter, r *http.Request, resp response) {
	header := w.Header()
	header.Set("Content-Type", resp.ContentType)
	header.Set("Cache-Control", "no-store")
	if resp.Status != "" {
		header.Set(StatusHeader, resp.Status)
	}
	if resp.Check != "" {
		header.Set(CheckHeader, resp.Check)
	}
	header.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Code)

	if r.Method != http.MethodHead {
		_, _ = w.Write(resp.Body)
	}
}

func (h *Handler) renderAggregate(ctx context.Context, format string) (response, error) {
	agg := h.runner.Evaluate(ctx, h.registry)

	resp := response{
		Code:   HTTPStatus(agg.Overall),
		Status: agg.Overall.String(),
	}

	if format == "json" {
		body, err := json.Marshal(NewReport(agg, time.Now()))
		if err != nil {
			return response{}, err
		}
		resp.ContentType = contentTypeJSON
		resp.Body = body
		return resp, nil
	}

	resp.ContentType = contentTypeText
	resp.Body = []byte(FormatText(agg.Results))
	return resp, nil
}

func (h *Handler) renderCheck(ctx context.Context, format, name string) (response, error) {
	c, ok := h.registry.Lookup(name)
	if !ok {
		return errorResponse(http.StatusNotFound, format, fmt.Errorf("%w: %q", ErrCheckNotFound, name)), nil
	}

	result := h.runner.Run(ctx, c)
	resp := response{
		Code:   http.StatusOK,
		Status: result.Status.String(),
		Check:  c.Name,
	}
	if result.Status.Failed() {
		resp.Code = http.StatusServiceUnavailable
	}

	if format == "json" {
		body, err := json.Marshal(newCheckReport(result))
		if err != nil {
			return response{}, err
		}
		resp.ContentType = contentTypeJSON
		resp.Body = body
		return resp, nil
	}

	resp.ContentType = contentTypeText
	resp.Body = []byte(FormatLine(result) + "\n")
	return resp, nil
}

func errorResponse(code int, format string, err error) response {
	if format == "json" {
		body, _ := json.Marshal(map[string]string{"error": err.Error()})
		return response{Code: code, ContentType: contentTypeJSON, Body: body}
	}
	return response{Code: code, ContentType: contentTypeText, Body: []byte(err.Error() + "\n")}
}

// FormatLine renders one result as "<name>: <status> (<latency>ms)",
// followed by " - <detail>" when the detail is non-empty. Whitespace runs
// in the detail, line breaks included, collapse to one space so every
// result stays on one line.
func FormatLine(r CheckResult) string {
	line := fmt.Sprintf("%s: %s (%dms)", r.Name, r.Status, r.LatencyMillis())
	if detail := strings.Join(strings.Fields(r.Detail), " "); detail != "" {
		line += " - " + detail
	}
	return line
}

// FormatText renders results one per line in order, or "no checks" when
// there are none.
func FormatText(results []CheckResult) string {
	if len(results) == 0 {
		return "no checks\n"
	}

	var b strings.Builder
	for _, r := range results {
		b.WriteString(FormatLine(r))
		b.WriteByte('\n')
	}
	return b.String()
}

// Report is the JSON rendering of an aggregate verdict.
type Report struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Checks    []CheckReport `json:"checks"`
}

// CheckReport is the JSON rendering of a single check result.
type CheckReport struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Critical  bool   `json:"critical"`
}

// NewReport builds the JSON report for agg.
func NewReport(agg AggregateStatus, at time.Time) Report {
	checks := make([]CheckReport, 0, len(agg.Results))
	for _, r := range agg.Results {
		checks = append(checks, newCheckReport(r))
	}

	return Report{
		Status:    agg.Overall.String(),
		Timestamp: at.UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}

func newCheckReport(r CheckResult) CheckReport {
	return CheckReport{
		Name:      r.Name,
		Status:    r.Status.String(),
		Detail:    r.Detail,
		LatencyMS: r.LatencyMillis(),
		Critical:  r.Critical,
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", allowedMethods)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

// negotiate picks "json" or "text". The format query parameter wins over
// the Accept header.
func negotiate(r *http.Request) string {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "json":
		return "json"
	case "text":
		return "text"
	}
	if strings.Contains(r.Header.Get("Accept"), contentTypeJSON) {
		return "json"
	}
	return "text"
}
