package cache

import (
	"sync"
	"time"
)

// Cache keeps loaded inputs (DEM grids, reference lines) keyed by file path
// so cross-sections sharing an input read it once per run. Failed loads are
// not cached.
type Cache[T any] struct {
	entries map[string]*Entry[T]
	mutex   sync.RWMutex
	hits    int
	misses  int
}

// Entry is a cached value with metadata
type Entry[T any] struct {
	Key      string
	Value    T
	LoadedAt time.Time
	Source   string
}

// New creates an empty cache
func New[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]*Entry[T]),
	}
}

// GetOrLoad returns the cached value for key, calling load on a miss. The
// lock is held while loading, so concurrent callers load a key once.
func (c *Cache[T]) GetOrLoad(key, source string, load func() (T, error)) (T, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, exists := c.entries[key]; exists {
		c.hits++
		return entry.Value, nil
	}

	c.misses++
	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.entries[key] = &Entry[T]{
		Key:      key,
		Value:    value,
		LoadedAt: time.Now(),
		Source:   source,
	}
	return value, nil
}

// Stats returns cache statistics
func (c *Cache[T]) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := Stats{
		TotalEntries: len(c.entries),
		Hits:         c.hits,
		Misses:       c.misses,
	}
	for _, entry := range c.entries {
		if stats.OldestEntry.IsZero() || entry.LoadedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.LoadedAt
		}
		if entry.LoadedAt.After(stats.NewestEntry) {
			stats.NewestEntry = entry.LoadedAt
		}
	}
	return stats
}

// Stats provides cache usage statistics
type Stats struct {
	TotalEntries int       `yaml:"total_entries"`
	Hits         int       `yaml:"hits"`
	Misses       int       `yaml:"misses"`
	OldestEntry  time.Time `yaml:"-"`
	NewestEntry  time.Time `yaml:"-"`
}
