package format

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// Artifact file names used by JSONFormat.
const (
	jsonArtifactName     = "data.json"
	jsonGzipArtifactName = "data.json.gz"
)

// JSONFormat serializes step results as JSON, optionally gzip-compressed.
//
// Values round-trip structurally, not type-identically: numbers decode
// as float64 and objects as map[string]any, per encoding/json.
type JSONFormat struct {
	compress bool
}

// NewJSONFormat creates a JSON format. When compress is true the
// artifact is gzip-compressed on disk.
func NewJSONFormat(compress bool) *JSONFormat {
	return &JSONFormat{compress: compress}
}

// Write serializes value as JSON into dir.
func (f *JSONFormat) Write(ctx context.Context, fsys afero.Fs, value any, dir string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("format: context cancelled: %w", err)
	}
	if err := checkSerializable(value); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("format: encode json: %w", err)
	}

	path := filepath.Join(dir, f.artifactName())
	if !f.compress {
		if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
			return fmt.Errorf("format: write artifact: %w", err)
		}
		return nil
	}

	file, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("format: create artifact: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("format: write artifact: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("format: finish artifact: %w", err)
	}
	return nil
}

// Read deserializes the JSON value previously written to dir.
func (f *JSONFormat) Read(ctx context.Context, fsys afero.Fs, dir string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("format: context cancelled: %w", err)
	}

	path := filepath.Join(dir, f.artifactName())
	file, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoArtifact, path)
		}
		return nil, fmt.Errorf("format: open artifact: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if f.compress {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("format: corrupt artifact: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("format: read artifact: %w", err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("format: decode json: %w", err)
	}
	return value, nil
}

func (f *JSONFormat) artifactName() string {
	if f.compress {
		return jsonGzipArtifactName
	}
	return jsonArtifactName
}

// checkSerializable rejects values no directory format can represent.
func checkSerializable(value any) error {
	if value == nil {
		return nil
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Func, reflect.Chan:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
	}
	return nil
}

// Ensure JSONFormat implements Format
var _ Format = (*JSONFormat)(nil)
