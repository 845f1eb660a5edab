package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestStepMeta_SpanName verifies span name construction.
func TestStepMeta_SpanName(t *testing.T) {
	tests := []struct {
		name     string
		meta     StepMeta
		op       string
		expected string
	}{
		{
			name:     "with name",
			meta:     StepMeta{ID: "train-001-9f8a6b3c", Name: "train"},
			op:       "read",
			expected: "cache.read.train",
		},
		{
			name:     "without name falls back to id",
			meta:     StepMeta{ID: "train-001-9f8a6b3c"},
			op:       "write",
			expected: "cache.write.train-001-9f8a6b3c",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.meta.SpanName(tc.op); got != tc.expected {
				t.Errorf("SpanName(%q) = %q, want %q", tc.op, got, tc.expected)
			}
		})
	}
}

// TestStepMeta_Validate verifies the ID requirement.
func TestStepMeta_Validate(t *testing.T) {
	if err := (StepMeta{ID: "train-001"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := (StepMeta{Name: "train"}).Validate(); !errors.Is(err, ErrMissingStepID) {
		t.Errorf("Validate() error = %v, want ErrMissingStepID", err)
	}
}

// TestStepMeta_DisplayName verifies name fallback to ID.
func TestStepMeta_DisplayName(t *testing.T) {
	if got := (StepMeta{ID: "a", Name: "b"}).DisplayName(); got != "b" {
		t.Errorf("DisplayName() = %q, want %q", got, "b")
	}
	if got := (StepMeta{ID: "a"}).DisplayName(); got != "a" {
		t.Errorf("DisplayName() = %q, want %q", got, "a")
	}
}

func newRecordingTracer(t *testing.T) (Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

// TestTracer_StartSpanAttributes verifies step attributes on the span.
func TestTracer_StartSpanAttributes(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	meta := StepMeta{ID: "train-001-9f8a6b3c", Name: "train"}
	_, span := tracer.StartSpan(context.Background(), "read", meta)
	tracer.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}

	ended := spans[0]
	if ended.Name() != "cache.read.train" {
		t.Errorf("span name = %q, want %q", ended.Name(), "cache.read.train")
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range ended.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if v := attrs["step.id"]; v.AsString() != "train-001-9f8a6b3c" {
		t.Errorf("step.id attribute = %q, want %q", v.AsString(), "train-001-9f8a6b3c")
	}
	if v := attrs["step.name"]; v.AsString() != "train" {
		t.Errorf("step.name attribute = %q, want %q", v.AsString(), "train")
	}
	if v := attrs["cache.op"]; v.AsString() != "read" {
		t.Errorf("cache.op attribute = %q, want %q", v.AsString(), "read")
	}
}

// TestTracer_EndSpanSuccess verifies OK status without error.
func TestTracer_EndSpanSuccess(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.StartSpan(context.Background(), "write", StepMeta{ID: "s1"})
	tracer.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("status code = %v, want Ok", spans[0].Status().Code)
	}
}

// TestTracer_EndSpanError verifies error status and recorded error.
func TestTracer_EndSpanError(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.StartSpan(context.Background(), "write", StepMeta{ID: "s1"})
	tracer.EndSpan(span, errors.New("disk full"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}

	ended := spans[0]
	if ended.Status().Code != codes.Error {
		t.Errorf("status code = %v, want Error", ended.Status().Code)
	}
	if ended.Status().Description != "disk full" {
		t.Errorf("status description = %q, want %q", ended.Status().Description, "disk full")
	}
	if len(ended.Events()) == 0 {
		t.Error("expected a recorded error event")
	}
}

// TestNoopTracer verifies the noop tracer produces usable spans that go nowhere.
func TestNoopTracer(t *testing.T) {
	tracer := NewNoopTracer()

	ctx, span := tracer.StartSpan(context.Background(), "read", StepMeta{ID: "s1"})
	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
	tracer.EndSpan(span, errors.New("ignored"))
}
