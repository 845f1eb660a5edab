package cache

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// On-disk file names inside an entry directory. The canonical metadata
// file is the sole durable witness that an entry is complete; the temp
// name is only ever observed mid-commit or after a crash.
const (
	// MetadataFileName is the canonical metadata file name.
	MetadataFileName = "cache-metadata.json"

	// TempMetadataFileName is the metadata file name used during a
	// commit, before the atomic rename to MetadataFileName.
	TempMetadataFileName = "cache-metadata.temp"
)

// Metadata is the persisted record marking a cache entry complete.
type Metadata struct {
	// Step is the unique identity of the cached step.
	Step string `json:"step"`
}

// writeMetadataFile writes a metadata record to path.
func writeMetadataFile(fsys afero.Fs, path string, meta Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("cache: encode metadata: %w", err)
	}
	data = append(data, '\n')

	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("cache: write metadata: %w", err)
	}
	return nil
}

// readMetadataFile reads a metadata record from path.
func readMetadataFile(fsys afero.Fs, path string) (Metadata, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Metadata{}, fmt.Errorf("cache: read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("cache: decode metadata: %w", err)
	}
	return meta, nil
}
