package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kbukum/whisperkit/component"
)

// Component runs the engine under a component.Registry. Start builds the
// engine and Stop frees it.
type Component struct {
	holder    *Holder
	overrides map[string]any
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent returns a Component that obtains the engine from holder
// with overrides.
func NewComponent(holder *Holder, overrides map[string]any) *Component {
	return &Component{holder: holder, overrides: overrides}
}

func (c *Component) Name() string { return "engine" }

func (c *Component) Start(ctx context.Context) error {
	_, err := c.holder.Obtain(ctx, c.overrides)
	return err
}

func (c *Component) Stop(ctx context.Context) error {
	if e, err := c.holder.Current(); err == nil {
		e.Free()
	}
	return nil
}

// Health is healthy once the engine is built, degraded when an attempted
// warmup failed.
func (c *Component) Health(ctx context.Context) component.Health {
	e, err := c.holder.Current()
	if err != nil {
		h := component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
		if last := c.holder.LastError(); last != nil {
			h.Message = last.Error()
		}
		return h
	}

	info := e.Info()
	h := component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
		Details: map[string]string{
			"transcription": strconv.FormatBool(info.Transcription),
			"backend":       info.Backend,
			"warmed_up":     strconv.FormatBool(info.WarmedUp),
			"diarization":   strconv.FormatBool(info.Diarization),
		},
	}
	cfg := e.Config()
	warmupDisabled := cfg.WarmupFile != nil && *cfg.WarmupFile == ""
	if info.Transcription && !info.WarmedUp && !warmupDisabled {
		h.Status = component.StatusDegraded
		h.Message = "backend is not warmed up"
	}
	return h
}

func (c *Component) Describe() component.Description {
	d := component.Description{Name: "Engine", Type: "engine"}
	e, err := c.holder.Current()
	if err != nil {
		d.Details = "not initialized"
		return d
	}
	info := e.Info()
	if !info.Transcription {
		d.Details = "transcription disabled"
		return d
	}
	d.Details = fmt.Sprintf("%s %s lan=%s session=%s", info.Backend, info.Model, info.TargetLanguage, info.Session)
	return d
}
