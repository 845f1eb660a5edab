package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/stepcache/observe"
	"github.com/jonwraymond/stepcache/step"
)

// MemoryConfig configures a MemoryCache.
type MemoryConfig struct {
	// Logger receives warnings. Default: no-op.
	Logger observe.Logger

	// Metrics records hits and misses. Default: no-op.
	Metrics observe.Metrics
}

// MemoryCache is a StepCache that stores results in an unbounded
// in-process map. It is little more than a mutex-guarded dictionary,
// intended for tests and for contexts without a durable filesystem.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]any
	logger  observe.Logger
	metrics observe.Metrics
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache(cfg MemoryConfig) *MemoryCache {
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NewNoopMetrics()
	}
	return &MemoryCache{
		entries: make(map[string]any),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}

// Contains reports whether a result exists for the step. Ineligible
// steps always report false.
func (c *MemoryCache) Contains(ctx context.Context, s step.Step) bool {
	if s == nil || !s.CacheResults() {
		return false
	}

	c.mu.RLock()
	_, ok := c.entries[s.UniqueID()]
	c.mu.RUnlock()
	return ok
}

// Get returns the cached result for the step.
func (c *MemoryCache) Get(ctx context.Context, s step.Step) (any, error) {
	if s == nil || !s.CacheResults() {
		return nil, ErrNotFound
	}

	key := s.UniqueID()
	c.mu.RLock()
	value, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.metrics.RecordMiss(ctx, stepMeta(s))
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	c.metrics.RecordHit(ctx, stepMeta(s), "memory")
	return value, nil
}

// Put stores the result for the step. Duplicate writes fail with
// ErrAlreadyCached; writes for ineligible steps warn and no-op.
func (c *MemoryCache) Put(ctx context.Context, s step.Step, value any) error {
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
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyCached, key)
	}
	c.entries[key] = value
	return nil
}

// Len returns the number of cached results.
func (c *MemoryCache) Len(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// Ensure MemoryCache implements StepCache
var _ StepCache = (*MemoryCache)(nil)
