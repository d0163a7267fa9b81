package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/kbukum/whisperkit"

// Span names.
const (
	SpanEngineObtain  = "engine.obtain"
	SpanEngineBuild   = "engine.build"
	SpanEngineWarmup  = "engine.warmup"
	SpanInference     = "inference.transcribe"
	SpanSessionCreate = "session.create"
)

// Attribute keys.
const (
	AttrServiceName   = "service.name"
	AttrComponent     = "component"
	AttrOperationName = "operation.name"
	AttrSessionID     = "session.id"
	AttrBackend       = "backend"
	AttrDurationMs    = "duration_ms"
	AttrStatus        = "status"
	AttrErrorCode     = "error.code"
)

// Identity is who emits the telemetry.
type Identity struct {
	Service     string
	Version     string
	Environment string
}

// resource merges the SDK defaults with id. The attributes carry no schema
// URL so the merge cannot conflict.
func (id Identity) resource() (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String(AttrServiceName, id.Service),
		attribute.String("service.version", id.Version),
		attribute.String("deployment.environment", id.Environment),
	))
}

// rootSampler keeps everything at rate >= 1 and nothing at rate <= 0.
func rootSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// newTracerProvider exports spans over OTLP/HTTP in batches. Spans with a
// sampled parent are always kept.
func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(rootSampler(cfg.SampleRate))),
	), nil
}

func installTracerProvider(tp trace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Tracer returns a tracer from the global provider.
func Tracer(name string) trace.Tracer { return otel.Tracer(name) }

// StartSpan starts a span on the whisperkit tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(instrumentation).Start(ctx, name, opts...)
}
