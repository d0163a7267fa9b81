package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/whisperkit/logger"
)

// StopTimeout bounds each component's Stop call during StopAll.
const StopTimeout = 10 * time.Second

type slot struct {
	c       Component
	running bool
}

// Registry runs components in a fixed order: Start follows registration
// order and Stop walks it backwards, so a component registered after its
// dependencies is stopped before them.
type Registry struct {
	mu     sync.RWMutex
	slots  []*slot
	byName map[string]*slot
	log    *logger.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]*slot{},
		log:    logger.WithComponent("registry"),
	}
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %q is already registered", name)
	}
	s := &slot{c: c}
	r.slots = append(r.slots, s)
	r.byName[name] = s
	r.log.Debug("registered", logger.Fields(logger.FieldComponent, name, "position", len(r.slots)))
	return nil
}

// StartAll starts every component that is not running yet. The first
// failure aborts the walk; whatever started before it keeps running until
// StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		if s.running {
			continue
		}
		name := s.c.Name()
		began := time.Now()
		if err := s.c.Start(ctx); err != nil {
			r.log.WithError(err).Error("start failed", logger.Fields(logger.FieldComponent, name))
			return fmt.Errorf("start %s: %w", name, err)
		}
		s.running = true
		r.log.Debug("started", logger.Fields(
			logger.FieldComponent, name,
			logger.FieldDuration, time.Since(began).Milliseconds(),
		))
	}
	r.log.Info("components started", logger.Fields("count", len(r.slots)))
	return nil
}

// StopAll stops running components in reverse order. Every component gets
// its own StopTimeout; failures are collected and joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.slots) - 1; i >= 0; i-- {
		s := r.slots[i]
		if !s.running {
			continue
		}
		s.running = false
		if err := r.stop(ctx, s.c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) stop(ctx context.Context, c Component) error {
	ctx, cancel := context.WithTimeout(ctx, StopTimeout)
	defer cancel()

	name := c.Name()
	if err := c.Stop(ctx); err != nil {
		r.log.WithError(err).Error("stop failed", logger.Fields(logger.FieldComponent, name))
		return fmt.Errorf("stop %s: %w", name, err)
	}
	r.log.Info("stopped", logger.Fields(logger.FieldComponent, name))
	return nil
}

// HealthAll asks each component for its health, in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.c.Health(ctx)
	}
	return out
}

// Describe collects descriptions from components implementing Describable.
// An empty Description.Name falls back to the component name.
func (r *Registry) Describe() []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Description
	for _, s := range r.slots {
		d, ok := s.c.(Describable)
		if !ok {
			continue
		}
		desc := d.Describe()
		if desc.Name == "" {
			desc.Name = s.c.Name()
		}
		out = append(out, desc)
	}
	return out
}

// Lookup returns the component registered under name.
func (r *Registry) Lookup(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return s.c, true
}

// Running reports whether the named component has started and not stopped.
func (r *Registry) Running(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byName[name]
	return ok && s.running
}
