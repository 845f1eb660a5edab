package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// StepMeta contains metadata about a cached step for telemetry purposes.
type StepMeta struct {
	ID   string // Stable step identity (required)
	Name string // Human-readable step name (optional, falls back to ID)
}

// Validate checks that the metadata identifies a step.
func (m StepMeta) Validate() error {
	if m.ID == "" {
		return ErrMissingStepID
	}
	return nil
}

// DisplayName returns the name to use in logs and span names.
func (m StepMeta) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// SpanName returns the deterministic span name for a cache operation.
// Format: cache.<op>.<name>
func (m StepMeta) SpanName(op string) string {
	return "cache." + op + "." + m.DisplayName()
}

// Tracer wraps OpenTelemetry tracing with cache-operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a cache operation (read, write).
	StartSpan(ctx context.Context, op string, meta StepMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with step metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, op string, meta StepMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("step.id", meta.ID),
		attribute.String("cache.op", op),
	}
	if meta.Name != "" {
		attrs = append(attrs, attribute.String("step.name", meta.Name))
	}

	return t.tracer.Start(ctx, meta.SpanName(op), trace.WithAttributes(attrs...))
}

// EndSpan ends the span, recording error status if err is non-nil.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that produces no spans.
type noopTracer struct {
	tracer trace.Tracer
}

// NewNoopTracer returns a Tracer that discards all spans.
func NewNoopTracer() Tracer {
	return &noopTracer{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, op string, meta StepMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(op))
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}

// Ensure implementations satisfy Tracer
var (
	_ Tracer = (*tracerImpl)(nil)
	_ Tracer = (*noopTracer)(nil)
)
