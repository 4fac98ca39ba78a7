package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value to cache on a miss.
type LoadFunc func(ctx context.Context) ([]byte, error)

// Memoizer fronts an expensive computation with a Cache.
// Concurrent misses for the same key share one LoadFunc call.
type Memoizer struct {
	cache  Cache
	policy Policy
	group  singleflight.Group
}

// NewMemoizer creates a memoizer. A nil cache or a policy that does not
// cache makes every Load call the LoadFunc directly.
func NewMemoizer(c Cache, policy Policy) *Memoizer {
	return &Memoizer{cache: c, policy: policy}
}

// Enabled reports whether Load can return cached values.
func (m *Memoizer) Enabled() bool {
	return m != nil && m.cache != nil && m.policy.ShouldCache()
}

// Load returns the cached value for key, or calls fn and caches its result.
// Errors are never cached. hit reports whether fn was skipped.
func (m *Memoizer) Load(ctx context.Context, key string, fn LoadFunc) (value []byte, hit bool, err error) {
	if !m.Enabled() {
		value, err = fn(ctx)
		return value, false, err
	}

	if cached, ok := m.cache.Get(ctx, key); ok {
		return cached, true, nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = m.cache.Set(ctx, key, value, m.policy.EffectiveTTL(0))
		return value, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.([]byte), false, nil
}

// Invalidate drops the cached value for key.
func (m *Memoizer) Invalidate(ctx context.Context, key string) error {
	if m == nil || m.cache == nil {
		return nil
	}
	return m.cache.Delete(ctx, key)
}
