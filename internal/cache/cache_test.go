package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrLoadLoadsOnce(t *testing.T) {
	c := New[int]()
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("dem.asc", "dem", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 2, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.False(t, stats.OldestEntry.IsZero())
}

func TestCache_FailedLoadIsNotCached(t *testing.T) {
	c := New[string]()
	boom := errors.New("boom")

	_, err := c.GetOrLoad("line.geojson", "line", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 0, c.Stats().TotalEntries)

	v, err := c.GetOrLoad("line.geojson", "line", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestCache_ConcurrentLoads(t *testing.T) {
	c := New[int]()
	var mu sync.Mutex
	calls := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrLoad("shared", "test", func() (int, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				return 7, nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}
