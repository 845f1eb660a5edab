// Package observe provides observability primitives for step caching.
//
// It is a pure instrumentation library: no cache logic, no I/O beyond
// exporter setup. The cache implementations accept a Logger and a
// Metrics through their configuration; both default to no-ops.
package observe
