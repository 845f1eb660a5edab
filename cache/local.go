package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/stepcache/observe"
	"github.com/jonwraymond/stepcache/step"
)

// LocalConfig configures a LocalCache.
type LocalConfig struct {
	// Dir is the root directory. Every cached step gets a subdirectory
	// under it named by the step's unique identity. Required.
	Dir string

	// Fs is the filesystem the cache operates on.
	// Default: the OS filesystem.
	Fs afero.Fs

	// StrongCapacity bounds the strong memory tier.
	// Default: DefaultStrongCapacity.
	StrongCapacity int

	// Logger receives warnings (for example uncacheable-step writes).
	// Default: no-op.
	Logger observe.Logger

	// Metrics records hits, misses, writes, and evictions.
	// Default: no-op.
	Metrics observe.Metrics

	// Tracer wraps disk reads and writes in spans.
	// Default: no-op.
	Tracer observe.Tracer
}

// LocalCache is a StepCache that stores results on disk under a root
// directory, with a two-tier in-memory accelerator in front.
//
// Entry layout: <root>/<identity>/ holds the format-written artifact
// plus the cache-metadata.json completion marker. The presence of the
// canonical metadata file is the sole durable witness that an entry is
// complete; a directory without it (even one with artifact bytes, left
// by a crashed writer) is treated as missing.
type LocalCache struct {
	fs      afero.Fs
	dir     string
	tiers   *memoryTiers
	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer

	// writeLocks serializes in-process writers per identity, closing
	// the check-then-act window between the existence check and the
	// artifact write. Cross-process racers still converge because the
	// final rename is atomic and duplicate artifact writes are
	// idempotent under the identity determinism contract.
	writeLocks sync.Map // map[string]*sync.Mutex

	// readGroup deduplicates concurrent deserialization of one entry.
	readGroup singleflight.Group
}

// NewLocalCache creates a LocalCache rooted at cfg.Dir, creating the
// directory if needed.
func NewLocalCache(cfg LocalConfig) (*LocalCache, error) {
	if cfg.Dir == "" {
		return nil, ErrMissingRoot
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NewNoopMetrics()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = observe.NewNoopTracer()
	}

	if err := cfg.Fs.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create root directory: %w", err)
	}

	c := &LocalCache{
		fs:      cfg.Fs,
		dir:     cfg.Dir,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
	}
	c.tiers = newMemoryTiers(cfg.StrongCapacity, func() {
		c.metrics.RecordEviction(context.Background())
	})
	return c, nil
}

// Dir returns the cache's root directory.
func (c *LocalCache) Dir() string {
	return c.dir
}

// Contains reports whether a completed result exists for the step,
// either resident in a memory tier or committed on disk. Ineligible
// steps always report false, regardless of disk state.
func (c *LocalCache) Contains(ctx context.Context, s step.Step) bool {
	if s == nil || !s.CacheResults() {
		return false
	}

	key := s.UniqueID()
	if c.tiers.contains(key) {
		return true
	}

	ok, err := afero.Exists(c.fs, c.metadataPath(key))
	return err == nil && ok
}

// Get returns the cached result for the step. Lookup order: strong tier
// (refreshing recency), weak tier, then disk; a disk hit deserializes
// via the step's format and repopulates both tiers.
func (c *LocalCache) Get(ctx context.Context, s step.Step) (any, error) {
	if !c.Contains(ctx, s) {
		if s != nil {
			c.metrics.RecordMiss(ctx, stepMeta(s))
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.UniqueID())
		}
		return nil, ErrNotFound
	}

	key := s.UniqueID()
	meta := stepMeta(s)

	if value, tier, ok := c.tiers.get(key); ok {
		c.metrics.RecordHit(ctx, meta, tier)
		return value, nil
	}

	// Committed on disk but not resident: deserialize once even when
	// several goroutines miss concurrently.
	value, err, _ := c.readGroup.Do(key, func() (any, error) {
		// A racing reader may have finished the flight and populated
		// the tiers between our tier check and this call.
		if v, _, ok := c.tiers.get(key); ok {
			return v, nil
		}

		readCtx, span := c.tracer.StartSpan(ctx, "read", meta)
		v, err := s.Format().Read(readCtx, c.fs, c.entryDir(key))
		c.tracer.EndSpan(span, err)
		if err != nil {
			return nil, err
		}
		c.tiers.add(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}

	c.metrics.RecordHit(ctx, meta, "disk")
	return value, nil
}

// Put stores the result for the step. Writes are durable before they
// are visible: the artifact and a temporary metadata file land on disk
// first, and a single atomic rename of the metadata file flips the
// entry from incomplete to complete.
func (c *LocalCache) Put(ctx context.Context, s step.Step, value any) error {
	if s == nil {
		c.logger.Warn(ctx, "tried to cache a nil step")
		return nil
	}
	if !s.CacheResults() {
		c.logger.Warn(ctx, "tried to cache step despite being marked as uncacheable",
			observe.Field{Key: "step.name", Value: s.Name()})
		return nil
	}

	key := s.UniqueID()
	meta := stepMeta(s)

	lock := c.writeLock(key)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	err := c.commit(ctx, s, key, meta, value)
	c.metrics.RecordWrite(ctx, meta, time.Since(start), err)
	return err
}

// commit runs the entry commit protocol:
//
//  1. Ensure the entry directory exists.
//  2. Let the step's format write the artifact into it.
//  3. Write the metadata record to the temporary name.
//  4. Populate the memory tiers.
//  5. Atomically rename the temporary metadata file to the canonical
//     name. Readers either see no metadata file or a complete one.
//  6. On any failure, best-effort delete the temporary file and return
//     the original error. No canonical metadata file is ever left
//     behind unless the artifact write fully succeeded.
func (c *LocalCache) commit(ctx context.Context, s step.Step, key string, meta observe.StepMeta, value any) error {
	dir := c.entryDir(key)
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create entry directory: %w", err)
	}

	metaPath := filepath.Join(dir, MetadataFileName)
	exists, err := afero.Exists(c.fs, metaPath)
	if err != nil {
		return fmt.Errorf("cache: check entry: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyCached, key)
	}

	tempPath := filepath.Join(dir, TempMetadataFileName)

	writeCtx, span := c.tracer.StartSpan(ctx, "write", meta)
	err = c.writeEntry(writeCtx, s, key, value, dir, tempPath, metaPath)
	c.tracer.EndSpan(span, err)
	if err != nil {
		c.tiers.remove(key)
		if rmErr := c.fs.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Error(ctx, "failed to remove temporary metadata file",
				observe.Field{Key: "path", Value: tempPath},
				observe.Field{Key: "error", Value: rmErr.Error()})
		}
		return err
	}
	return nil
}

func (c *LocalCache) writeEntry(ctx context.Context, s step.Step, key string, value any, dir, tempPath, metaPath string) error {
	// Serialization errors propagate unchanged; no metadata has been
	// written yet, so the entry stays incomplete.
	if err := s.Format().Write(ctx, c.fs, value, dir); err != nil {
		return err
	}

	if err := writeMetadataFile(c.fs, tempPath, Metadata{Step: key}); err != nil {
		return err
	}

	// Populate tiers before the rename so in-process readers skip
	// re-deserialization as soon as the entry becomes visible.
	c.tiers.add(key, value)

	if err := c.fs.Rename(tempPath, metaPath); err != nil {
		return fmt.Errorf("cache: commit metadata: %w", err)
	}
	return nil
}

// Len returns the number of completed entries under the root: a scan
// for canonical metadata files, independent of memory-tier contents.
func (c *LocalCache) Len(ctx context.Context) (int, error) {
	matches, err := afero.Glob(c.fs, filepath.Join(c.dir, "*", MetadataFileName))
	if err != nil {
		return 0, fmt.Errorf("cache: scan entries: %w", err)
	}
	return len(matches), nil
}

// StepDirectory returns the directory that holds (or will hold) the
// step's result. It is valid before the entry exists, so callers can
// learn where a future write will land. Uncacheable steps have no
// canonical location and yield ErrUncacheable.
func (c *LocalCache) StepDirectory(s step.Step) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%w: nil step", ErrUncacheable)
	}
	if !s.CacheResults() {
		return "", fmt.Errorf("%w: %s", ErrUncacheable, s.Name())
	}
	return c.entryDir(s.UniqueID()), nil
}

func (c *LocalCache) entryDir(key string) string {
	return filepath.Join(c.dir, key)
}

func (c *LocalCache) metadataPath(key string) string {
	return filepath.Join(c.entryDir(key), MetadataFileName)
}

func (c *LocalCache) writeLock(key string) *sync.Mutex {
	lock, _ := c.writeLocks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Ensure LocalCache implements StepCache
var _ StepCache = (*LocalCache)(nil)
