package format

import (
	"context"
	"errors"

	"github.com/spf13/afero"
)

// Sentinel errors for format operations.
var (
	// ErrNoArtifact is returned by Read when the artifact file is missing.
	ErrNoArtifact = errors.New("format: no artifact in directory")

	// ErrUnsupportedValue is returned by Write for values the format
	// cannot serialize.
	ErrUnsupportedValue = errors.New("format: unsupported value")
)

// Format reads and writes a step result to a directory.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Write must either produce a complete artifact or return an
//   error; it must not require cleanup by the caller. Read must return
//   an error wrapping ErrNoArtifact when the artifact is absent.
// - Ownership: implementations write only inside dir and must not
//   touch the cache's metadata files.
type Format interface {
	// Write serializes value into dir.
	Write(ctx context.Context, fsys afero.Fs, value any, dir string) error

	// Read deserializes the value previously written to dir.
	Read(ctx context.Context, fsys afero.Fs, dir string) (any, error)
}
