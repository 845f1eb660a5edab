package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrNotFound is returned by Get when no completed entry exists for
	// the step. Callers recover by computing the result and calling Put.
	ErrNotFound = errors.New("cache: step result not found")

	// ErrAlreadyCached is returned by Put when a completed entry already
	// exists for the step's identity. Entries are write-once and are
	// never overwritten.
	ErrAlreadyCached = errors.New("cache: step result already cached, will not overwrite")

	// ErrUncacheable is returned when asking for the entry directory of
	// a step that is not eligible for caching.
	ErrUncacheable = errors.New("cache: step is marked uncacheable")

	// ErrMissingRoot indicates LocalConfig.Dir is empty.
	ErrMissingRoot = errors.New("cache: root directory is required")
)
