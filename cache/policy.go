package cache

import "time"

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL used when none is specified.
	// If zero, caching is disabled.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Larger TTLs are clamped to it.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxEntries bounds the number of stored entries. Zero means unbounded.
	MaxEntries int
}

// DefaultPolicy returns a policy with caching disabled.
// Every request sees a fresh evaluation until a TTL is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxTTL:     time.Minute,
		MaxEntries: 256,
	}
}

// TTLPolicy returns a policy caching entries for ttl.
func TTLPolicy(ttl time.Duration) Policy {
	p := DefaultPolicy()
	p.DefaultTTL = ttl
	if ttl > p.MaxTTL {
		p.MaxTTL = ttl
	}
	return p
}

// ShouldCache reports whether this policy caches anything.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying the default and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	return p.clamp(ttl)
}

func (p Policy) clamp(ttl time.Duration) time.Duration {
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		return p.MaxTTL
	}
	return ttl
}
