package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry manages named provider factories and availability flags.
type Registry[T any, O any] struct {
	mu          sync.RWMutex
	factories   map[string]Factory[T, O]
	unavailable map[string]string
}

// NewRegistry creates a new empty Registry.
func NewRegistry[T any, O any]() *Registry[T, O] {
	return &Registry[T, O]{
		factories:   make(map[string]Factory[T, O]),
		unavailable: make(map[string]string),
	}
}

// RegisterFactory registers a named factory. It clears any unavailable mark.
func (r *Registry[T, O]) RegisterFactory(name string, factory Factory[T, O]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	delete(r.unavailable, name)
}

// MarkUnavailable records that name exists but cannot be built in this binary.
func (r *Registry[T, O]) MarkUnavailable(name, remediation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
	r.unavailable[name] = remediation
}

// Available reports whether name has a factory registered.
func (r *Registry[T, O]) Available(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Create builds a provider using the named factory.
func (r *Registry[T, O]) Create(ctx context.Context, name string, opts O) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	remediation, marked := r.unavailable[name]
	r.mu.RUnlock()

	var zero T
	if marked {
		return zero, &UnavailableError{Name: name, Remediation: remediation}
	}
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return factory(ctx, opts)
}

// List returns sorted names of all registered factories.
func (r *Registry[T, O]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
