package cache_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantdb/pkg/cache"
)

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2, 0)
	c.Put("a", 1)
	c.Put("b", 2)

	// Touching a makes b the eviction candidate.
	_, ok := c.Get("a")
	assert.True(t, ok)
	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := cache.NewLRU[string, int](4, time.Minute, cache.WithClock(func() time.Time { return now }))

	c.Put("a", 1)
	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entries are dropped on read")

	c.Put("a", 2)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLRU_Remove(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](8, 0)
	for _, k := range []string{"id:1", "name:acme", "id:2", "name:globex"} {
		c.Put(k, len(k))
	}

	assert.True(t, c.Remove("id:2"))
	assert.False(t, c.Remove("id:2"))

	n := c.RemoveFunc(func(k string, _ int) bool { return strings.HasPrefix(k, "name:") })
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[int, int](16, time.Minute)
	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Put(i, i)
			c.Get(i % 8)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}

func TestNewLRU_PanicsOnZeroCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRU[string, int](0, time.Second) })
}
