package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// newMeterProvider pushes metrics over OTLP/HTTP every cfg.Interval.
func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.Interval))
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)), nil
}

// Meter returns a meter from the global provider. Instruments created
// before the provider is installed start exporting once it is.
func Meter(name string) metric.Meter { return otel.Meter(name) }

// Metric names.
const (
	MetricBackendLoad       = "engine.backend.load"
	MetricWarmupTotal       = "engine.warmup.total"
	MetricInferenceDuration = "inference.duration"
	MetricSessionTotal      = "session.total"
	MetricSessionActive     = "session.active"
	MetricWordsCommitted    = "session.words.committed"
	MetricOperationDuration = "operation.duration"
	MetricErrorTotal        = "error.total"
)

// Metrics holds the engine's metric instruments.
type Metrics struct {
	backendLoad       metric.Float64Histogram
	warmupTotal       metric.Int64Counter
	inferenceDuration metric.Float64Histogram
	sessionTotal      metric.Int64Counter
	sessionActive     metric.Int64UpDownCounter
	wordsCommitted    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.backendLoad, err = meter.Float64Histogram(MetricBackendLoad,
		metric.WithDescription("Time to construct and load a transcription backend"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricBackendLoad, err)
	}
	if m.warmupTotal, err = meter.Int64Counter(MetricWarmupTotal,
		metric.WithDescription("Warmup attempts by result"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricWarmupTotal, err)
	}
	if m.inferenceDuration, err = meter.Float64Histogram(MetricInferenceDuration,
		metric.WithDescription("Duration of backend inference calls"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricInferenceDuration, err)
	}
	if m.sessionTotal, err = meter.Int64Counter(MetricSessionTotal,
		metric.WithDescription("Session processors created by variant"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricSessionTotal, err)
	}
	if m.sessionActive, err = meter.Int64UpDownCounter(MetricSessionActive,
		metric.WithDescription("Session processors not yet finished"),
	); err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricSessionActive, err)
	}
	if m.wordsCommitted, err = meter.Int64Counter(MetricWordsCommitted,
		metric.WithDescription("Words committed to session sinks"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricWordsCommitted, err)
	}
	if m.operationDuration, err = meter.Float64Histogram(MetricOperationDuration,
		metric.WithDescription("Duration of tracked operations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricOperationDuration, err)
	}
	if m.errorTotal, err = meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Total errors by code and component"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}
	return &m, nil
}

// RecordBackendLoad records how long backend construction took.
func (m *Metrics) RecordBackendLoad(ctx context.Context, backend, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.backendLoad.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}

// RecordWarmup counts a warmup attempt. result is "ok", "failed" or "skipped".
func (m *Metrics) RecordWarmup(ctx context.Context, backend, result string) {
	if m == nil {
		return
	}
	m.warmupTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("result", result),
	))
}

// RecordInference records one backend inference call.
func (m *Metrics) RecordInference(ctx context.Context, backend, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.inferenceDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}

// RecordSessionStart counts a new session processor.
func (m *Metrics) RecordSessionStart(ctx context.Context, variant string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("variant", variant))
	m.sessionTotal.Add(ctx, 1, attrs)
	m.sessionActive.Add(ctx, 1, attrs)
}

// RecordSessionEnd marks a session processor finished.
func (m *Metrics) RecordSessionEnd(ctx context.Context, variant string) {
	if m == nil {
		return
	}
	m.sessionActive.Add(ctx, -1, metric.WithAttributes(attribute.String("variant", variant)))
}

// RecordWordsCommitted counts committed words.
func (m *Metrics) RecordWordsCommitted(ctx context.Context, variant string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.wordsCommitted.Add(ctx, int64(n), metric.WithAttributes(attribute.String("variant", variant)))
}

// RecordOperation records an operation execution.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
