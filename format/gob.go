package format

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// gobArtifactName is the artifact file written by GobFormat.
const gobArtifactName = "data.bin.gz"

// GobFormat serializes step results with encoding/gob, gzip-compressed.
//
// Unlike JSONFormat it preserves Go types on round-trip, but concrete
// types stored through interface values must be registered with
// gob.Register by the caller.
type GobFormat struct{}

// NewGobFormat creates a gob format.
func NewGobFormat() *GobFormat {
	return &GobFormat{}
}

// Write serializes value into dir.
func (f *GobFormat) Write(ctx context.Context, fsys afero.Fs, value any, dir string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("format: context cancelled: %w", err)
	}
	if err := checkSerializable(value); err != nil {
		return err
	}

	file, err := fsys.Create(filepath.Join(dir, gobArtifactName))
	if err != nil {
		return fmt.Errorf("format: create artifact: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	if err := gob.NewEncoder(gz).Encode(&value); err != nil {
		return fmt.Errorf("format: encode gob: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("format: finish artifact: %w", err)
	}
	return nil
}

// Read deserializes the value previously written to dir.
func (f *GobFormat) Read(ctx context.Context, fsys afero.Fs, dir string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("format: context cancelled: %w", err)
	}

	path := filepath.Join(dir, gobArtifactName)
	file, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoArtifact, path)
		}
		return nil, fmt.Errorf("format: open artifact: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("format: corrupt artifact: %w", err)
	}
	defer gz.Close()

	var value any
	if err := gob.NewDecoder(gz).Decode(&value); err != nil {
		return nil, fmt.Errorf("format: decode gob: %w", err)
	}
	return value, nil
}

// Ensure GobFormat implements Format
var _ Format = (*GobFormat)(nil)
