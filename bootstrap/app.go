package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/kbukum/whisperkit/component"
	"github.com/kbukum/whisperkit/logger"
)

// ConfigureFunc wires routes or clients that need started components.
type ConfigureFunc[C Config] func(ctx context.Context, app *App[C]) error

// App runs a set of components for one service. C is the service's
// configuration type.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	summaryOut      io.Writer
	signals         []os.Signal
	onConfigure     []ConfigureFunc[C]
	hooks           map[phase][]Hook
}

// NewApp fills in and validates cfg, then builds the logger from its
// Logging section unless WithLogger supplied one.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	base := cfg.GetServiceConfig()
	log := s.logger
	if log == nil {
		logger.Init(base.Logging)
		log = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          log,
		Summary:         NewSummary(base.Name, base.Version),
		gracefulTimeout: s.gracefulTimeout,
		summaryOut:      s.summaryOut,
		signals:         s.signals,
	}, nil
}

// RegisterComponent adds c. Components start in registration order and
// stop in reverse.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure adds a callback run after the start hooks.
func (a *App[C]) OnConfigure(fn ConfigureFunc[C]) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck returns an error naming every component that is not healthy,
// degraded ones included.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var issues []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		issue := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			issue += "(" + h.Message + ")"
		}
		issues = append(issues, issue)
	}
	if len(issues) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(issues, ", "))
	}
	return nil
}

// Run starts the App and blocks until a shutdown signal arrives or ctx
// ends, then stops it.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		a.abort(ctx)
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop(ctx)
}

// RunTask starts the App, runs task and stops the App when task returns.
// A shutdown signal cancels the task's context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		a.abort(ctx)
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()

	taskErr := task(taskCtx)
	if err := a.stop(ctx); err != nil && taskErr == nil {
		return err
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"initialization", a.Components.StartAll},
		{"start hooks", func(ctx context.Context) error { return a.runHooks(ctx, phaseStart) }},
		{"configuration", a.configure},
		{"ready check", func(ctx context.Context) error {
			if err := a.ReadyCheck(ctx); err != nil {
				a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
			}
			return nil
		}},
		{"ready hooks", func(ctx context.Context) error { return a.runHooks(ctx, phaseReady) }},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("%s failed: %w", step.name, err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Write(ctx, a.summaryOut, a.Components)
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// abort stops the components that started before startup failed.
func (a *App[C]) abort(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gracefulTimeout)
	defer cancel()
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Cleanup after failed startup", logger.Fields(logger.FieldError, err.Error()))
	}
}

// WaitForSignal blocks until a shutdown signal arrives or ctx ends. It
// returns the signal, or nil when ctx ended the wait.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks and stops every component, for callers
// that drive the lifecycle themselves.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop(ctx)
}

// stop is bounded by the graceful timeout even when ctx is already
// canceled, which is the usual case after a signal.
func (a *App[C]) stop(ctx context.Context) error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gracefulTimeout)
	defer cancel()

	hookErr := a.runHooks(ctx, phaseStop)
	stopErr := a.Components.StopAll(ctx)
	if stopErr != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, stopErr.Error()))
	} else {
		a.Logger.Info("Application shutdown complete")
	}
	if hookErr != nil {
		return hookErr
	}
	return stopErr
}
