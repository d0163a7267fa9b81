package component

import (
	"context"
	"sync"

	"github.com/kbukum/whisperkit/logger"
)

// Lazy holds a value built on first use. The first initializer that
// succeeds wins; a failed initialization leaves Lazy empty so a later call
// can try again.
type Lazy[T any] struct {
	name        string
	mu          sync.RWMutex
	initialized bool
	value       T
	lastError   error
}

// NewLazy creates an empty Lazy.
func NewLazy[T any](name string) *Lazy[T] {
	return &Lazy[T]{name: name}
}

// Name returns the name given to NewLazy.
func (l *Lazy[T]) Name() string { return l.name }

// Get returns the stored value, running init if there is none yet. created
// reports whether this call's init produced the value.
func (l *Lazy[T]) Get(ctx context.Context, init func(context.Context) (T, error)) (value T, created bool, err error) {
	l.mu.RLock()
	if l.initialized {
		v := l.value
		l.mu.RUnlock()
		return v, false, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if l.initialized {
		return l.value, false, nil
	}

	logger.Debug("Initializing lazy component", logger.Fields(logger.FieldComponent, l.name))
	v, err := init(ctx)
	if err != nil {
		l.lastError = err
		var zero T
		return zero, false, err
	}
	l.value = v
	l.initialized = true
	l.lastError = nil
	return v, true, nil
}

// Peek returns the value without initializing it.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.initialized
}

// IsInitialized reports whether a value is stored.
func (l *Lazy[T]) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initialized
}

// LastError returns the error of the most recent failed initialization.
func (l *Lazy[T]) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastError
}
