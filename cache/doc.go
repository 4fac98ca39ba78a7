// Package cache provides short-lived caching of rendered health reports.
//
// It provides a Cache interface with an in-memory implementation, keys
// derived from request attributes, TTL policies, and a Memoizer that
// collapses concurrent misses for the same key into a single evaluation.
//
// Caching is opt-in: the zero Policy disables it, so every request
// observes a fresh evaluation unless a TTL is configured.
package cache
