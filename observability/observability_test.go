package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/whisperkit/errors"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	cfg = Config{Endpoint: "collector:4318", SampleRate: 0.25, Interval: time.Minute}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "collector:4318" || cfg.SampleRate != 0.25 || cfg.Interval != time.Minute {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordBackendLoad(ctx, "faster-whisper", "ok", time.Second)
	metrics.RecordWarmup(ctx, "faster-whisper", "ok")
	metrics.RecordInference(ctx, "faster-whisper", "ok", 10*time.Millisecond)
	metrics.RecordSessionStart(ctx, "standard")
	metrics.RecordWordsCommitted(ctx, "standard", 3)
	metrics.RecordSessionEnd(ctx, "standard")
	metrics.RecordOperation(ctx, "whisperkit", "engine.build", "ok", time.Second)
	metrics.RecordError(ctx, "CONFIGURATION_ERROR", "engine")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordBackendLoad(ctx, "openai-api", "ok", time.Second)
	m.RecordWarmup(ctx, "openai-api", "skipped")
	m.RecordSessionStart(ctx, "vac")
	m.RecordError(ctx, "INTERNAL_ERROR", "session")
}

func TestMetricsAreExported(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordBackendLoad(ctx, "faster-whisper", "ok", 2*time.Second)
	metrics.RecordWarmup(ctx, "faster-whisper", "failed")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, name := range []string{MetricBackendLoad, MetricWarmupTotal} {
		if !hasMetric(rm, name) {
			t.Errorf("expected %s to be collected", name)
		}
	}
}

func hasMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func TestOperation(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx, op := Begin(context.Background(), metrics, "engine", "build", SpanEngineBuild, attribute.String(AttrBackend, "faster-whisper"))
	if FromContext(ctx) != op {
		t.Error("operation not stored in ctx")
	}
	op.End(ctx, errors.BackendConstruction("faster-whisper", fmt.Errorf("load failed")))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanEngineBuild {
		t.Errorf("span name = %q, want %q", spans[0].Name, SpanEngineBuild)
	}
	if len(spans[0].Events) == 0 {
		t.Error("error not recorded as a span event")
	}
	var code string
	for _, kv := range spans[0].Attributes {
		if string(kv.Key) == AttrErrorCode {
			code = kv.Value.AsString()
		}
	}
	if code != string(errors.ErrCodeBackendConstruction) {
		t.Errorf("error.code attribute = %q", code)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if !hasMetric(rm, MetricErrorTotal) {
		t.Error("error metric not recorded")
	}
}

func TestFromContext_NotSet(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil when no operation was begun")
	}
}

func TestOperation_NilMetrics(t *testing.T) {
	ctx, op := Begin(context.Background(), nil, "warmup", "run", SpanEngineWarmup)
	op.End(ctx, nil)
	if op.Elapsed() <= 0 {
		t.Error("elapsed not measured")
	}
}

func TestRootSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tc := range tests {
		if got := rootSampler(tc.rate).Description(); got != tc.want {
			t.Errorf("rootSampler(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}

func TestProviders(t *testing.T) {
	cfg := Config{Endpoint: "127.0.0.1:4318", Insecure: true}
	cfg.ApplyDefaults()
	res, err := Identity{Service: "whisperkit", Version: "dev", Environment: "development"}.resource()
	if err != nil {
		t.Fatalf("resource: %v", err)
	}

	tp, err := newTracerProvider(context.Background(), cfg, res)
	if err != nil {
		t.Fatalf("newTracerProvider: %v", err)
	}
	shutdown(tp.Shutdown)

	mp, err := newMeterProvider(context.Background(), cfg, res)
	if err != nil {
		t.Fatalf("newMeterProvider: %v", err)
	}
	shutdown(mp.Shutdown)
}

// shutdown bounds exporter flushes; no collector listens in tests.
func shutdown(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = fn(ctx)
}

func TestComponent(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	t.Run("disabled", func(t *testing.T) {
		c := NewComponent(Config{}, "whisperkit", "dev", "development")
		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if c.tp != nil || c.mp != nil {
			t.Error("providers installed while disabled")
		}
		if h := c.Health(context.Background()); h.Message != "disabled" {
			t.Errorf("Health = %+v", h)
		}
		if err := c.Stop(context.Background()); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		c := NewComponent(Config{Enabled: true, Endpoint: "127.0.0.1:4318", Insecure: true, SampleRate: 0.5, Interval: time.Hour}, "whisperkit", "dev", "development")
		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if c.tp == nil || c.mp == nil {
			t.Fatal("providers not installed")
		}
		if d := c.Describe(); d.Details != "otlp/http 127.0.0.1:4318" {
			t.Errorf("Describe = %+v", d)
		}
		shutdown(c.Stop)
		if c.tp != nil || c.mp != nil {
			t.Error("providers kept after Stop")
		}
	})
}

func TestOperation_NestedErrorCountedOnce(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, _ := NewMetrics(mp.Meter("test"))

	failure := errors.Configuration("lan: unsupported")
	ctx, outer := Begin(context.Background(), metrics, "engine", "obtain", SpanEngineObtain)
	inner := func(ctx context.Context) {
		ctx, op := Begin(ctx, metrics, "engine", "build", SpanEngineBuild)
		op.End(ctx, failure)
	}
	inner(ctx)
	outer.End(ctx, failure)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != MetricErrorTotal {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 1 {
		t.Errorf("errors counted %d times, want 1", total)
	}
}
