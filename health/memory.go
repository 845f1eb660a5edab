package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// WarningThreshold is the fraction of allocated memory that triggers
	// degraded status. Value should be between 0 and 1. Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the fraction of allocated memory that triggers
	// unhealthy status. Value should be between 0 and 1. Default: 0.95
	CriticalThreshold float64

	// MaxAlloc is the maximum expected allocation in bytes.
	// If zero, the runtime's reserved memory is used as the ceiling.
	MaxAlloc uint64
}

// MemoryChecker checks process memory usage. Cached step results held in
// the strong tier are the main in-process memory consumer, so this gives
// early warning before large artifacts exhaust the heap.
type MemoryChecker struct {
	config MemoryCheckerConfig
}

// NewMemoryChecker creates a new memory health checker.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.1
		if config.CriticalThreshold > 1 {
			config.CriticalThreshold = 0.99
		}
	}

	return &MemoryChecker{config: config}
}

// Name returns the name of this checker.
func (m *MemoryChecker) Name() string {
	return "memory"
}

// Check performs the memory health check.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}
	if maxAlloc == 0 {
		return Healthy("memory stats unavailable")
	}

	usageRatio := float64(stats.Alloc) / float64(maxAlloc)

	details := map[string]any{
		"alloc_bytes":   stats.Alloc,
		"max_alloc":     maxAlloc,
		"usage_percent": usageRatio * 100,
		"heap_objects":  stats.HeapObjects,
		"num_gc":        stats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	if usageRatio >= m.config.CriticalThreshold {
		return Unhealthy(
			fmt.Sprintf("memory usage critical: %.1f%%", usageRatio*100),
			ErrCheckFailed,
		).WithDetails(details)
	}

	if usageRatio >= m.config.WarningThreshold {
		return Degraded(
			fmt.Sprintf("memory usage high: %.1f%%", usageRatio*100),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("memory usage normal: %.1f%%", usageRatio*100),
	).WithDetails(details)
}

// Ensure MemoryChecker implements Checker
var _ Checker = (*MemoryChecker)(nil)
