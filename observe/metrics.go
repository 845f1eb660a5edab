package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache events.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; recording is best-effort.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordHit records a cache hit served from the given tier
	// ("strong", "weak", or "disk").
	RecordHit(ctx context.Context, meta StepMeta, tier string)

	// RecordMiss records a full cache miss.
	RecordMiss(ctx context.Context, meta StepMeta)

	// RecordWrite records a cache write with duration and error status.
	RecordWrite(ctx context.Context, meta StepMeta, duration time.Duration, err error)

	// RecordEviction records an eviction from the strong memory tier.
	RecordEviction(ctx context.Context)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	hitCount      metric.Int64Counter
	missCount     metric.Int64Counter
	writeCount    metric.Int64Counter
	writeErrors   metric.Int64Counter
	writeDuration metric.Float64Histogram
	evictionCount metric.Int64Counter
}

// NewMetrics creates a Metrics instance backed by the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	hitCount, err := meter.Int64Counter(
		"cache.hits",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	missCount, err := meter.Int64Counter(
		"cache.misses",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	writeCount, err := meter.Int64Counter(
		"cache.writes",
		metric.WithDescription("Total number of cache writes"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	writeErrors, err := meter.Int64Counter(
		"cache.write.errors",
		metric.WithDescription("Total number of failed cache writes"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	writeDuration, err := meter.Float64Histogram(
		"cache.write.duration_ms",
		metric.WithDescription("Cache write duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evictionCount, err := meter.Int64Counter(
		"cache.evictions",
		metric.WithDescription("Total number of strong-tier evictions"),
		metric.WithUnit("{eviction}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:         meter,
		hitCount:      hitCount,
		missCount:     missCount,
		writeCount:    writeCount,
		writeErrors:   writeErrors,
		writeDuration: writeDuration,
		evictionCount: evictionCount,
	}, nil
}

func stepAttrs(meta StepMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("step.id", meta.ID),
	}
	if meta.Name != "" {
		attrs = append(attrs, attribute.String("step.name", meta.Name))
	}
	return attrs
}

// RecordHit records a cache hit for the given tier.
func (m *metricsImpl) RecordHit(ctx context.Context, meta StepMeta, tier string) {
	attrs := append(stepAttrs(meta), attribute.String("cache.tier", tier))
	m.hitCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMiss records a full cache miss.
func (m *metricsImpl) RecordMiss(ctx context.Context, meta StepMeta) {
	m.missCount.Add(ctx, 1, metric.WithAttributes(stepAttrs(meta)...))
}

// RecordWrite records a cache write.
func (m *metricsImpl) RecordWrite(ctx context.Context, meta StepMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(stepAttrs(meta)...)

	m.writeCount.Add(ctx, 1, opt)
	if err != nil {
		m.writeErrors.Add(ctx, 1, opt)
	}
	m.writeDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordEviction records a strong-tier eviction.
func (m *metricsImpl) RecordEviction(ctx context.Context) {
	m.evictionCount.Add(ctx, 1)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that discards everything.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordHit(ctx context.Context, meta StepMeta, tier string) {}
func (m *noopMetrics) RecordMiss(ctx context.Context, meta StepMeta)             {}
func (m *noopMetrics) RecordWrite(ctx context.Context, meta StepMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordEviction(ctx context.Context) {}

// Ensure implementations satisfy Metrics
var (
	_ Metrics = (*metricsImpl)(nil)
	_ Metrics = (*noopMetrics)(nil)
)
