package health

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/jonwraymond/stepcache/cache"
)

// probeFileName is created and removed to verify the store directory is writable.
const probeFileName = ".health-probe"

// StoreCheckerConfig configures the cache store health checker.
type StoreCheckerConfig struct {
	// Fs is the filesystem holding the cache directory.
	// Default: the OS filesystem.
	Fs afero.Fs

	// Dir is the cache root directory (required).
	Dir string
}

// StoreChecker probes the on-disk cache store.
//
// It reports Unhealthy when the cache directory is missing or not writable,
// and Degraded when orphaned temp metadata files from interrupted writes
// are present. Entry counts are included in the result details.
type StoreChecker struct {
	fs  afero.Fs
	dir string
}

// NewStoreChecker creates a new store health checker.
func NewStoreChecker(config StoreCheckerConfig) (*StoreChecker, error) {
	if config.Dir == "" {
		return nil, ErrMissingStoreDir
	}
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}
	return &StoreChecker{fs: config.Fs, dir: config.Dir}, nil
}

// Name returns the name of this checker.
func (s *StoreChecker) Name() string {
	return "store"
}

// Check performs the store health check.
func (s *StoreChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return Unhealthy("cannot stat cache directory", err)
	}
	if !exists {
		return Unhealthy(fmt.Sprintf("cache directory %q does not exist", s.dir), ErrCheckFailed)
	}

	if err := s.probeWritable(); err != nil {
		return Unhealthy("cache directory is not writable", err)
	}

	entries, err := afero.Glob(s.fs, filepath.Join(s.dir, "*", cache.MetadataFileName))
	if err != nil {
		return Unhealthy("cannot scan cache directory", err)
	}

	orphans, err := afero.Glob(s.fs, filepath.Join(s.dir, "*", cache.TempMetadataFileName))
	if err != nil {
		return Unhealthy("cannot scan cache directory", err)
	}

	details := map[string]any{
		"dir":     s.dir,
		"entries": len(entries),
		"orphans": len(orphans),
	}

	if len(orphans) > 0 {
		return Degraded(
			fmt.Sprintf("%d interrupted write(s) left temp metadata behind", len(orphans)),
		).WithDetails(details)
	}

	return Healthy(
		fmt.Sprintf("store ok: %d entries", len(entries)),
	).WithDetails(details)
}

func (s *StoreChecker) probeWritable() error {
	path := filepath.Join(s.dir, probeFileName)
	if err := afero.WriteFile(s.fs, path, []byte("ok"), 0o644); err != nil {
		return err
	}
	return s.fs.Remove(path)
}

// Ensure StoreChecker implements Checker
var _ Checker = (*StoreChecker)(nil)
