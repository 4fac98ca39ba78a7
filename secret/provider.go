package secret

import (
	"context"
	"errors"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

var (
	// ErrUnknownProvider is returned for a reference naming no registered provider.
	ErrUnknownProvider = errors.New("secret: provider is not registered")

	// ErrSecretNotFound is returned when a provider has no value for a reference.
	ErrSecretNotFound = errors.New("secret: not found")

	// ErrEmptySecret is returned by a strict resolver when a provider yields "".
	ErrEmptySecret = errors.New("secret: provider returned empty value")
)
