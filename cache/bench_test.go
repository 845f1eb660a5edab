package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/spf13/afero"
)

func BenchmarkMemoryCache_Get(b *testing.B) {
	ctx := context.Background()
	c := NewMemoryCache(MemoryConfig{})
	s := newTestStep("bench-001-aaaa", true)
	if err := c.Put(ctx, s, map[string]any{"loss": 0.1}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Get(ctx, s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLocalCache_GetResident(b *testing.B) {
	ctx := context.Background()
	c, err := NewLocalCache(LocalConfig{Dir: "/cache", Fs: afero.NewMemMapFs()})
	if err != nil {
		b.Fatal(err)
	}
	s := newTestStep("bench-001-aaaa", true)
	if err := c.Put(ctx, s, map[string]any{"loss": 0.1}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Get(ctx, s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLocalCache_GetFromDisk(b *testing.B) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	c, err := NewLocalCache(LocalConfig{Dir: "/cache", Fs: fsys})
	if err != nil {
		b.Fatal(err)
	}
	s := newTestStep("bench-001-aaaa", true)
	if err := c.Put(ctx, s, map[string]any{"loss": 0.1}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.tiers.remove(s.UniqueID())
		if _, err := c.Get(ctx, s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLocalCache_Put(b *testing.B) {
	ctx := context.Background()
	c, err := NewLocalCache(LocalConfig{Dir: "/cache", Fs: afero.NewMemMapFs()})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := newTestStep(fmt.Sprintf("bench-%d-aaaa", i), true)
		if err := c.Put(ctx, s, map[string]any{"loss": 0.1}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMemoryTiers_Add(b *testing.B) {
	t := newMemoryTiers(DefaultStrongCapacity, nil)
	keys := make([]string, 64)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t.add(keys[i%len(keys)], i)
	}
}
