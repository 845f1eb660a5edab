package step

import (
	"github.com/jonwraymond/stepcache/format"
)

// Step is a unit of computation whose result can be memoized.
//
// Contract:
// - Determinism: equal UniqueIDs must denote interchangeable results.
// - Stability: UniqueID must not change across process restarts.
// - Concurrency: implementations must be safe for concurrent use.
type Step interface {
	// UniqueID returns the stable, opaque identity of this step.
	// It uniquely determines the step's computation and its transitive
	// inputs, and is used as the cache lookup key.
	UniqueID() string

	// Name returns a human-readable name for logs and telemetry.
	Name() string

	// CacheResults reports whether this step is eligible for caching.
	// Steps returning false are never persisted and never reported as
	// cached.
	CacheResults() bool

	// Format returns the serialization format used to persist this
	// step's result.
	Format() format.Format
}
