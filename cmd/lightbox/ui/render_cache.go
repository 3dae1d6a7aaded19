// Package ui provides a cache for rendered image blocks.
package ui

import (
	"hash/fnv"
	"math"
	"sync"
)

// RenderCache stores rendered images keyed by a hash of what produced them.
// Once full, the least-hit half is dropped.
type RenderCache struct {
	mu      sync.Mutex
	entries map[uint64]*cacheEntry
	maxSize int
}

type cacheEntry struct {
	content string
	hits    int
}

// NewRenderCache creates a new render cache with the specified max size.
func NewRenderCache(maxSize int) *RenderCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &RenderCache{
		entries: make(map[uint64]*cacheEntry),
		maxSize: maxSize,
	}
}

// computeHash computes a FNV-1a hash for cache keys.
//
// Supported types are intentionally limited to avoid allocations in hot paths.
func computeHash(inputs ...interface{}) uint64 {
	h := fnv.New64a()
	var b [8]byte

	putUint := func(u uint64) {
		for i := 0; i < 8; i++ {
			b[i] = byte(u >> (8 * i))
		}
		h.Write(b[:])
	}

	for _, input := range inputs {
		switch v := input.(type) {
		case string:
			h.Write([]byte(v))
			h.Write([]byte{0})
		case int:
			putUint(uint64(v))
		case float64:
			putUint(math.Float64bits(v))
		case bool:
			if v {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}

	return h.Sum64()
}

// ComputeKey generates a cache key from multiple inputs.
func ComputeKey(inputs ...interface{}) uint64 {
	return computeHash(inputs...)
}

// Get retrieves cached content if available.
func (rc *RenderCache) Get(key uint64) (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if entry, ok := rc.entries[key]; ok {
		entry.hits++
		return entry.content, true
	}
	return "", false
}

// Set stores rendered content in the cache.
func (rc *RenderCache) Set(key uint64, content string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, ok := rc.entries[key]; !ok && len(rc.entries) >= rc.maxSize {
		rc.evictLocked()
	}
	rc.entries[key] = &cacheEntry{content: content, hits: 1}
}

// Len returns the number of cached entries.
func (rc *RenderCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// Clear empties the cache.
func (rc *RenderCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.entries = make(map[uint64]*cacheEntry)
}

// GetOrCompute retrieves from cache or computes if missing.
func (rc *RenderCache) GetOrCompute(key uint64, compute func() string) string {
	if content, ok := rc.Get(key); ok {
		return content
	}
	content := compute()
	rc.Set(key, content)
	return content
}

func (rc *RenderCache) evictLocked() {
	if len(rc.entries) == 0 {
		return
	}
	total := 0
	for _, e := range rc.entries {
		total += e.hits
	}
	mean := total / len(rc.entries)
	for k, e := range rc.entries {
		if e.hits <= mean {
			delete(rc.entries, k)
		}
	}
}
