package engine

import (
	"context"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/whisperkit/component"
	"github.com/kbukum/whisperkit/config"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/observability"
)

// Holder owns at most one Engine. The first Obtain that succeeds builds
// it; every later call returns the same instance.
type Holder struct {
	deps Deps
	lazy *component.Lazy[*Engine]
}

// NewHolder returns an empty Holder that builds engines from deps.
func NewHolder(deps Deps) *Holder {
	return &Holder{deps: deps.withDefaults(), lazy: component.NewLazy[*Engine]("engine")}
}

// Obtain returns the engine, building it from overrides on the first call.
// Overrides passed once the engine exists are ignored. A failed build
// leaves the holder empty, so a later call may try again.
func (h *Holder) Obtain(ctx context.Context, overrides map[string]any) (*Engine, error) {
	ctx, op := observability.Begin(ctx, h.deps.Metrics, "engine", "obtain", observability.SpanEngineObtain)
	e, created, err := h.lazy.Get(ctx, func(ctx context.Context) (*Engine, error) {
		cfg, err := config.Resolve(overrides)
		if err != nil {
			return nil, err
		}
		return New(ctx, cfg, h.deps)
	})
	op.SetAttributes(attribute.Bool("engine.created", created))
	op.End(ctx, err)
	if err != nil {
		return nil, err
	}

	if !created && len(overrides) > 0 {
		keys := make([]string, 0, len(overrides))
		for k := range overrides {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		h.deps.Logger.Debug("engine already initialized, ignoring overrides", logger.Fields("ignored", keys))
	}
	return e, nil
}

// Current returns the engine if one has been built.
func (h *Holder) Current() (*Engine, error) {
	e, ok := h.lazy.Peek()
	if !ok {
		return nil, errors.NotReady()
	}
	return e, nil
}

// Initialized reports whether an engine has been built.
func (h *Holder) Initialized() bool { return h.lazy.IsInitialized() }

// LastError returns the error of the most recent failed build.
func (h *Holder) LastError() error { return h.lazy.LastError() }

var defaultHolder = sync.OnceValue(func() *Holder { return NewHolder(DefaultDeps()) })

// Default returns the process-wide Holder.
func Default() *Holder { return defaultHolder() }

// Obtain returns the process-wide engine. See Holder.Obtain.
func Obtain(ctx context.Context, overrides map[string]any) (*Engine, error) {
	return Default().Obtain(ctx, overrides)
}

// Current returns the process-wide engine if it has been built.
func Current() (*Engine, error) {
	return Default().Current()
}
