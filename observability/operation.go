package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/whisperkit/errors"
)

// Operation is one traced and timed engine step, such as obtaining the
// engine or building a backend.
type Operation struct {
	Component string
	Name      string

	parent  *Operation
	started time.Time
	metrics *Metrics
	span    trace.Span
}

type operationKey struct{}

// Begin opens a span named spanName for the operation component/name and
// returns a context carrying both. metrics may be nil.
func Begin(ctx context.Context, metrics *Metrics, component, name, spanName string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	parent := FromContext(ctx)
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrComponent, component),
		attribute.String(AttrOperationName, name),
	)
	span.SetAttributes(attrs...)
	op := &Operation{Component: component, Name: name, parent: parent, started: time.Now(), metrics: metrics, span: span}
	return context.WithValue(ctx, operationKey{}, op), op
}

// FromContext returns the innermost operation begun on ctx, or nil.
func FromContext(ctx context.Context) *Operation {
	op, _ := ctx.Value(operationKey{}).(*Operation)
	return op
}

// SetAttributes tags the operation's span.
func (op *Operation) SetAttributes(attrs ...attribute.KeyValue) {
	op.span.SetAttributes(attrs...)
}

// Elapsed is the time since Begin.
func (op *Operation) Elapsed() time.Duration { return time.Since(op.started) }

// End closes the span and records the duration under status "ok" or
// "error". A failure carrying an error code is counted in the error metric
// once, by the outermost operation.
func (op *Operation) End(ctx context.Context, err error) {
	d := op.Elapsed()
	status := "ok"
	if err != nil {
		status = "error"
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		if appErr, ok := errors.AsAppError(err); ok {
			op.span.SetAttributes(attribute.String(AttrErrorCode, string(appErr.Code)))
			if op.parent == nil {
				op.metrics.RecordError(ctx, string(appErr.Code), op.Component)
			}
		}
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, d.Milliseconds()),
	)
	op.span.End()
	op.metrics.RecordOperation(ctx, op.Component, op.Name, status, d)
}
