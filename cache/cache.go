package cache

import (
	"context"

	"github.com/jonwraymond/stepcache/observe"
	"github.com/jonwraymond/stepcache/step"
)

// StepCache is a mapping from steps to their previously computed results.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Contains never errors; it reports false for nil steps and for steps
//   that are not eligible for caching.
// - Get fails with ErrNotFound exactly when Contains reports false.
// - Put fails with ErrAlreadyCached on a duplicate write for an
//   eligible step, and is a warn-and-no-op for ineligible steps.
// - Entries are immutable once written; implementations never evict
//   authoritative entries, only in-memory copies.
//
// Implementations are interchangeable; callers must not assume
// persistence, bounded memory, or any particular eviction order.
type StepCache interface {
	// Contains reports whether a completed result exists for the step.
	Contains(ctx context.Context, s step.Step) bool

	// Get returns the cached result for the step.
	Get(ctx context.Context, s step.Step) (any, error)

	// Put stores the result for the step.
	Put(ctx context.Context, s step.Step, value any) error

	// Len returns the number of completed results in this cache.
	Len(ctx context.Context) (int, error)
}

// stepMeta builds telemetry metadata for a step.
func stepMeta(s step.Step) observe.StepMeta {
	return observe.StepMeta{ID: s.UniqueID(), Name: s.Name()}
}
