package secret

import (
	"context"
	"fmt"
	"os"
)

// EnvProvider resolves "secretref:env:NAME" from the process environment.
type EnvProvider struct {
	lookup func(string) (string, bool)
}

// NewEnvProvider creates a provider reading os.LookupEnv.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

func (p *EnvProvider) Name() string { return "env" }

// Resolve returns the value of the environment variable ref.
func (p *EnvProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := p.lookup(ref)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrSecretNotFound, ref)
	}
	return v, nil
}

func (p *EnvProvider) Close() error { return nil }
