// Package format provides pluggable serialization of step results.
//
// A Format writes a result value into a directory and reads it back.
// The cache treats the written bytes as opaque; completeness is
// signalled separately by the cache's own metadata file. Formats
// receive the filesystem explicitly so callers can run them against
// in-memory filesystems in tests.
package format
