package cache

import (
	"strconv"
	"sync"
	"testing"

	"github.com/poiesic/grantmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	query := core.Query{Text: "AI research funding"}

	t.Run("put then get round-trips", func(t *testing.T) {
		c := NewMemoryCache()
		c.Put(query, "grant-1", 85)

		score, ok := c.Get(query, "grant-1")
		require.True(t, ok)
		assert.Equal(t, 85, score)
	})

	t.Run("miss on unknown pair", func(t *testing.T) {
		c := NewMemoryCache()
		_, ok := c.Get(query, "grant-1")
		assert.False(t, ok)
	})

	t.Run("different query does not alias", func(t *testing.T) {
		c := NewMemoryCache()
		c.Put(query, "grant-1", 85)

		_, ok := c.Get(core.Query{Text: "marine biology"}, "grant-1")
		assert.False(t, ok)
	})

	t.Run("different grant does not alias", func(t *testing.T) {
		c := NewMemoryCache()
		c.Put(query, "grant-1", 85)

		_, ok := c.Get(query, "grant-2")
		assert.False(t, ok)
	})

	t.Run("query matching is case-sensitive", func(t *testing.T) {
		c := NewMemoryCache()
		c.Put(query, "grant-1", 85)

		_, ok := c.Get(core.Query{Text: "ai research funding"}, "grant-1")
		assert.False(t, ok)
	})

	t.Run("surrounding whitespace is normalized away", func(t *testing.T) {
		c := NewMemoryCache()
		c.Put(core.Query{Text: "  AI research funding  "}, "grant-1", 85)

		score, ok := c.Get(query, "grant-1")
		require.True(t, ok)
		assert.Equal(t, 85, score)
	})

	t.Run("put overwrites", func(t *testing.T) {
		c := NewMemoryCache()
		c.Put(query, "grant-1", 40)
		c.Put(query, "grant-1", 90)

		score, ok := c.Get(query, "grant-1")
		require.True(t, ok)
		assert.Equal(t, 90, score)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("bounded cache evicts oldest first", func(t *testing.T) {
		c := NewMemoryCache(WithMaxEntries(2))
		c.Put(query, "grant-1", 10)
		c.Put(query, "grant-2", 20)
		c.Put(query, "grant-3", 30)

		assert.Equal(t, 2, c.Len())
		_, ok := c.Get(query, "grant-1")
		assert.False(t, ok)
		_, ok = c.Get(query, "grant-3")
		assert.True(t, ok)
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		c := NewMemoryCache()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				id := "grant-" + strconv.Itoa(n%5)
				c.Put(query, id, n)
				c.Get(query, id)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 5, c.Len())
	})
}
