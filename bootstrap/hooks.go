package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/whisperkit/logger"
)

// Hook is a lifecycle callback. Start and ready hooks abort startup on
// error; stop hooks are all run and their first error is returned.
type Hook func(ctx context.Context) error

type phase string

const (
	phaseStart phase = "start"
	phaseReady phase = "ready"
	phaseStop  phase = "stop"
)

// OnStart adds hooks that run once every component has started, before
// the configure callbacks.
func (a *App[C]) OnStart(hooks ...Hook) { a.addHooks(phaseStart, hooks) }

// OnReady adds hooks that run after the ready check, just before the
// startup summary.
func (a *App[C]) OnReady(hooks ...Hook) { a.addHooks(phaseReady, hooks) }

// OnStop adds hooks that run at shutdown while components are still up.
func (a *App[C]) OnStop(hooks ...Hook) { a.addHooks(phaseStop, hooks) }

func (a *App[C]) addHooks(p phase, hooks []Hook) {
	if a.hooks == nil {
		a.hooks = make(map[phase][]Hook)
	}
	a.hooks[p] = append(a.hooks[p], hooks...)
}

func (a *App[C]) runHooks(ctx context.Context, p phase) error {
	hooks := a.hooks[p]
	if len(hooks) == 0 {
		return nil
	}
	start := time.Now()
	var first error
	for i, h := range hooks {
		err := h(ctx)
		if err == nil {
			continue
		}
		err = fmt.Errorf("%s hook %d: %w", p, i, err)
		if p != phaseStop {
			return err
		}
		a.Logger.Error("Stop hook failed", logger.Fields(logger.FieldError, err.Error()))
		if first == nil {
			first = err
		}
	}
	a.Logger.Debug("Ran lifecycle hooks", logger.Fields(
		"phase", string(p),
		"count", len(hooks),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return first
}
