package probes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownProbe is returned by Build for an unregistered kind.
	ErrUnknownProbe = errors.New("probes: unknown probe kind")

	// ErrMissingParam is returned when a required parameter is absent.
	ErrMissingParam = errors.New("probes: missing parameter")

	// ErrInvalidParam is returned when a parameter cannot be parsed.
	ErrInvalidParam = errors.New("probes: invalid parameter")
)

// Params are the resolved string parameters of one check.
type Params map[string]string

// String returns the trimmed value of key, or def when unset or blank.
func (p Params) String(key, def string) string {
	if v := strings.TrimSpace(p[key]); v != "" {
		return v
	}
	return def
}

// Required returns the value of key or ErrMissingParam.
func (p Params) Required(key string) (string, error) {
	v := p.String(key, "")
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}

// List splits a comma-separated value, dropping blanks.
func (p Params) List(key string) []string {
	var out []string
	for _, part := range strings.Split(p[key], ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Int parses key as an integer.
func (p Params) Int(key string, def int) (int, error) {
	v := p.String(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
	}
	return n, nil
}

// Float parses key as a float.
func (p Params) Float(key string, def float64) (float64, error) {
	v := p.String(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
	}
	return f, nil
}

// Bool parses key as a boolean.
func (p Params) Bool(key string, def bool) (bool, error) {
	v := p.String(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
	}
	return b, nil
}

// Duration parses key as a time.Duration.
func (p Params) Duration(key string, def time.Duration) (time.Duration, error) {
	v := p.String(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
	}
	return d, nil
}
