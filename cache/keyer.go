package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Keyer derives cache keys from request attributes.
//
// Contract:
// - Determinism: the same scope and attributes always produce the same key,
//   regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(scope string, attrs map[string]string) (string, error)
}

// HashKeyer derives keys of the form <prefix>:<scope>:<hash>, where hash is
// the first 16 hex characters of SHA-256 over the sorted attributes.
type HashKeyer struct {
	Prefix string
}

// NewHashKeyer creates a keyer with the "health" prefix.
func NewHashKeyer() *HashKeyer {
	return &HashKeyer{Prefix: "health"}
}

// Key implements Keyer.
func (k *HashKeyer) Key(scope string, attrs map[string]string) (string, error) {
	if strings.TrimSpace(scope) == "" {
		return "", fmt.Errorf("%w: empty scope", ErrInvalidKey)
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	h := sha256.New()
	for _, name := range names {
		// Length-prefixed so {"a":"bc"} and {"ab":"c"} differ.
		fmt.Fprintf(h, "%d:%s=%d:%s;", len(name), name, len(attrs[name]), attrs[name])
	}
	sum := h.Sum(nil)

	key := fmt.Sprintf("%s:%s:%s", k.Prefix, scope, hex.EncodeToString(sum[:8]))
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

var _ Keyer = (*HashKeyer)(nil)
