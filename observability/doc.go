// Package observability traces and measures the engine lifecycle with
// OpenTelemetry.
//
// Engine steps are wrapped in an Operation, which owns a span and records
// the step's duration:
//
//	ctx, op := observability.Begin(ctx, metrics, "engine", "build", observability.SpanEngineBuild)
//	backend, tok, err := build(ctx, cfg)
//	op.End(ctx, err)
//
// Instruments live on Metrics, created from any metric.Meter. Before
// the telemetry component starts, observability.Meter hands out the global delegating
// meter, so instruments created early still export once the provider is
// installed. A nil *Metrics records nothing.
//
// Component installs the OTLP/HTTP trace and metric providers when the
// service config enables telemetry, and shuts them down on stop.
package observability
