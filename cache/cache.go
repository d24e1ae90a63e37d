// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"strconv"
	"sync"

	"github.com/poiesic/grantmatch/core"
)

// ScoreCache stores per-candidate relevance scores keyed by the exact pair
// of normalized query text and grant ID. Scores are on the LLM's 0-100
// integer scale. Implementations must be safe for concurrent use.
type ScoreCache interface {
	// Get returns the cached score for the pair, if present.
	Get(query core.Query, grantId string) (int, bool)

	// Put stores a score for the pair, overwriting any previous entry.
	Put(query core.Query, grantId string, score int)

	// Len reports the number of live entries.
	Len() int
}

// MemoryCache is an in-process ScoreCache. Entries persist for the life of
// the process unless a maximum size is set, in which case the oldest
// entries are evicted first.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[core.ID]int
	order      []core.ID
	maxEntries int
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithMaxEntries bounds the cache to n entries with FIFO eviction.
// Zero or negative n leaves the cache unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(c *MemoryCache) {
		c.maxEntries = n
	}
}

// NewMemoryCache creates an empty cache, unbounded by default.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[core.ID]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// key digests the (normalized query, grant ID) pair into a fixed-size key.
// The query text is matched exactly and case-sensitively.
func key(query core.Query, grantId string) core.ID {
	return core.IDFromContent(query.NormalizedText() + "\x00" + grantId)
}

func (c *MemoryCache) Get(query core.Query, grantId string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok := c.entries[key(query, grantId)]
	return score, ok
}

func (c *MemoryCache) Put(query core.Query, grantId string, score int) {
	k := key(query, grantId)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[k]; !exists {
		c.order = append(c.order, k)
		if c.maxEntries > 0 && len(c.order) > c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[k] = score
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// String describes the cache for debug logging.
func (c *MemoryCache) String() string {
	bound := "unbounded"
	if c.maxEntries > 0 {
		bound = strconv.Itoa(c.maxEntries)
	}
	return "MemoryCache(max=" + bound + ")"
}
