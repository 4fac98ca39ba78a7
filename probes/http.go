package probes

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// KindHTTP is the kind of HTTPProbe.
const KindHTTP = "http"

// maxDrain bounds how much of a response body is read before closing.
const maxDrain = 64 << 10

// HTTPProbeConfig configures an HTTP probe.
type HTTPProbeConfig struct {
	// URL is the endpoint to request. Required, http or https.
	URL string

	// Method defaults to GET.
	Method string

	// ExpectStatus, if set, is the only status accepted.
	// Default: 0 (any 2xx)
	ExpectStatus int

	// Client defaults to a client sharing http.DefaultTransport.
	Client *http.Client
}

// HTTPProbe fails unless an HTTP request returns the expected status.
type HTTPProbe struct {
	config HTTPProbeConfig
}

// NewHTTPProbe creates an HTTP probe.
func NewHTTPProbe(config HTTPProbeConfig) (*HTTPProbe, error) {
	u, err := url.Parse(config.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: url=%q", ErrInvalidParam, config.URL)
	}
	if config.Method == "" {
		config.Method = http.MethodGet
	}
	config.Method = strings.ToUpper(config.Method)
	if config.Client == nil {
		config.Client = &http.Client{}
	}
	return &HTTPProbe{config: config}, nil
}

func newHTTPFromParams(_ context.Context, params Params) (*HTTPProbe, error) {
	target, err := params.Required("url")
	if err != nil {
		return nil, err
	}
	expect, err := params.Int("expect_status", 0)
	if err != nil {
		return nil, err
	}
	insecure, err := params.Bool("insecure_skip_verify", false)
	if err != nil {
		return nil, err
	}

	cfg := HTTPProbeConfig{
		URL:          target,
		Method:       params.String("method", http.MethodGet),
		ExpectStatus: expect,
	}
	if insecure {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in per check
		cfg.Client = &http.Client{Transport: transport}
	}
	return NewHTTPProbe(cfg)
}

// Kind implements observe.Kinded.
func (p *HTTPProbe) Kind() string { return KindHTTP }

// Check implements health.Probe.
func (p *HTTPProbe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, p.config.Method, p.config.URL, nil)
	if err != nil {
		return err
	}

	resp, err := p.config.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	if p.config.ExpectStatus != 0 {
		if resp.StatusCode != p.config.ExpectStatus {
			return fmt.Errorf("unexpected status %d, want %d", resp.StatusCode, p.config.ExpectStatus)
		}
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
