// Package cache provides memoization caches for computation step results.
//
// It provides the StepCache interface with two implementations: a
// persistent LocalCache with crash-consistent on-disk entries and
// tiered in-memory retention, and an unbounded MemoryCache for tests
// and contexts without a durable filesystem.
package cache
