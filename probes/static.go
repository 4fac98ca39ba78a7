package probes

import (
	"context"
	"errors"
)

// KindStatic is the kind of StaticProbe.
const KindStatic = "static"

// StaticProbe always returns the same outcome. It stands in for checks that
// are not wired yet and is handy in smoke tests of the endpoint itself.
type StaticProbe struct {
	err error
}

// NewStaticProbe creates a probe that returns err on every check.
func NewStaticProbe(err error) *StaticProbe {
	return &StaticProbe{err: err}
}

func newStaticFromParams(_ context.Context, params Params) (*StaticProbe, error) {
	healthy, err := params.Bool("healthy", true)
	if err != nil {
		return nil, err
	}
	if healthy {
		return NewStaticProbe(nil), nil
	}
	return NewStaticProbe(errors.New(params.String("detail", "static failure"))), nil
}

// Kind implements observe.Kinded.
func (p *StaticProbe) Kind() string { return KindStatic }

// Check implements health.Probe.
func (p *StaticProbe) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.err
}
