package health

import (
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"
)

// Registry holds named checks in registration order.
//
// Registration is expected during startup. After Seal the registry is
// read-only and may be shared by any number of concurrent readers.
type Registry struct {
	mu     sync.RWMutex
	checks []Check
	index  map[string]int
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Register adds a check. Checks are critical unless an option says otherwise.
// A zero timeout is replaced with DefaultTimeout.
func (r *Registry) Register(name string, timeout time.Duration, probe Probe, opts ...CheckOption) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCheck)
	}
	if probe == nil {
		return fmt.Errorf("%w: %q has no probe", ErrInvalidCheck, name)
	}
	if timeout < 0 {
		return fmt.Errorf("%w: %q has negative timeout %s", ErrInvalidCheck, name, timeout)
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	check := Check{
		Name:     name,
		Timeout:  timeout,
		Critical: true,
		Probe:    probe,
	}
	for _, opt := range opts {
		opt(&check)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrRegistrySealed, name)
	}
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	r.index[name] = len(r.checks)
	r.checks = append(r.checks, check)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, timeout time.Duration, probe Probe, opts ...CheckOption) {
	if err := r.Register(name, timeout, probe, opts...); err != nil {
		panic(err)
	}
}

// Seal makes the registry read-only. Further Register calls fail.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// List returns the registered checks in registration order.
// The sequence is lazy and may be ranged over any number of times; each
// iteration sees the checks registered when it started.
func (r *Registry) List() iter.Seq[Check] {
	return func(yield func(Check) bool) {
		r.mu.RLock()
		checks := r.checks[:len(r.checks):len(r.checks)]
		r.mu.RUnlock()

		for _, c := range checks {
			if !yield(c) {
				return
			}
		}
	}
}

// Lookup returns the check registered under name.
func (r *Registry) Lookup(name string) (Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return Check{}, false
	}
	return r.checks[i], true
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.checks))
	for i, c := range r.checks {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.checks)
}
