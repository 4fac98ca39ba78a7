package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-memory cache with lazy expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	policy  Policy
	now     func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache with the given policy.
// The policy's MaxTTL clamps every Set and MaxEntries bounds the map.
func NewMemoryCache(policy Policy) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		policy:  policy,
		now:     time.Now,
	}
}

// Get retrieves a value. Expired entries are removed on access.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// Set stores a copy of value for ttl, clamped to the policy's MaxTTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	ttl = c.policy.clamp(ttl)
	if ttl <= 0 {
		return nil
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && c.policy.MaxEntries > 0 && len(c.entries) >= c.policy.MaxEntries {
		c.purgeLocked(now)
		if len(c.entries) >= c.policy.MaxEntries {
			c.evictOldestLocked()
		}
	}
	c.entries[key] = entry{value: stored, expiresAt: now.Add(ttl)}

	return nil
}

// Delete removes a value. Idempotent.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Purge drops every expired entry and returns how many were removed.
func (c *MemoryCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeLocked(c.now())
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) purgeLocked(now time.Time) int {
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// evictOldestLocked removes the entry closest to expiry.
func (c *MemoryCache) evictOldestLocked() {
	var (
		victim string
		first  = true
		soon   time.Time
	)
	for k, e := range c.entries {
		if first || e.expiresAt.Before(soon) {
			victim, soon, first = k, e.expiresAt, false
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}

var _ Cache = (*MemoryCache)(nil)
