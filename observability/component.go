package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/whisperkit/component"
	"github.com/kbukum/whisperkit/logger"
)

// Config is the "telemetry" section of the service configuration.
type Config struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"` // OTLP/HTTP host:port
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults targets a local collector, samples every trace and pushes
// metrics every 15s.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 1
	}
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
}

// Component installs the global tracer and meter providers while it runs.
type Component struct {
	cfg Config
	id  Identity
	log *logger.Logger

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

func NewComponent(cfg Config, service, version, environment string) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		id:  Identity{Service: service, Version: version, Environment: environment},
		log: logger.WithComponent("telemetry"),
	}
}

func (c *Component) Name() string { return "telemetry" }

// Start is a no-op unless telemetry is enabled.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}
	res, err := c.id.resource()
	if err != nil {
		return fmt.Errorf("telemetry resource: %w", err)
	}
	tp, err := newTracerProvider(ctx, c.cfg, res)
	if err != nil {
		return err
	}
	mp, err := newMeterProvider(ctx, c.cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}

	installTracerProvider(tp)
	otel.SetMeterProvider(mp)
	c.tp, c.mp = tp, mp
	c.log.Info("exporting telemetry", logger.Fields(
		logger.FieldURL, c.cfg.Endpoint,
		"sample_rate", c.cfg.SampleRate,
		"interval", c.cfg.Interval.String(),
	))
	return nil
}

// Stop flushes pending spans and metrics.
func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
	}
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
	}
	c.tp, c.mp = nil, nil
	return errors.Join(errs...)
}

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.cfg.Enabled {
		h.Message = "disabled"
	}
	return h
}

func (c *Component) Describe() component.Description {
	d := component.Description{Name: "Telemetry", Type: "otel", Details: "disabled"}
	if c.cfg.Enabled {
		d.Details = "otlp/http " + c.cfg.Endpoint
	}
	return d
}
