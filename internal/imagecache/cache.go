// Package imagecache memoizes composed image URLs in a fixed-capacity LRU.
package imagecache

import (
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rescuedogs/rescue-edge/internal/core/observability"
)

const DefaultCapacity = 500

type Stats struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	HitRatio  float64 `json:"hit_ratio"`
}

// Cache is safe for concurrent use. Get refreshes recency; Add past capacity
// evicts exactly the least recently used entry.
type Cache struct {
	lru       *lru.Cache[string, string]
	capacity  int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{capacity: capacity}
	l, err := lru.New[string, string](capacity)
	if err != nil {
		// only returned for non-positive sizes
		panic(err)
	}
	c.lru = l
	return c
}

func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
		observability.IncCacheHit("memory")
	} else {
		c.misses.Add(1)
		observability.IncCacheMiss("memory")
	}
	return v, ok
}

func (c *Cache) Add(key, val string) {
	if c.lru.Add(key, val) {
		c.evictions.Add(1)
		observability.IncCacheEviction()
	}
	observability.SetCacheEntries(c.lru.Len())
}

func (c *Cache) Len() int { return c.lru.Len() }

func (c *Cache) Capacity() int { return c.capacity }

// PurgeSource removes every entry derived from src and returns how many.
func (c *Cache) PurgeSource(src string) int {
	prefix := SourcePrefix(src)
	n := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) && c.lru.Remove(k) {
			n++
		}
	}
	observability.SetCacheEntries(c.lru.Len())
	return n
}

// Purge drops all entries; counters are kept.
func (c *Cache) Purge() {
	c.lru.Purge()
	observability.SetCacheEntries(0)
}

func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.lru.Len(),
		Capacity:  c.capacity,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}
