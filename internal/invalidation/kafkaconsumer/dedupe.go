package kafkaconsumer

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type versionDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, int64]
}

func newVersionDedupe(size int) *versionDedupe {
	if size <= 0 {
		size = 4096
	}
	c, _ := lru.New[string, int64](size)
	return &versionDedupe{lru: c}
}

// claim records v for key when it is newer than the last applied version.
// The returned undo puts the previous version back if v is still current.
func (d *versionDedupe) claim(key string, v int64) (undo func(), ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev, had := d.lru.Get(key)
	if had && v <= prev {
		return nil, false
	}
	d.lru.Add(key, v)
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if cur, ok := d.lru.Peek(key); !ok || cur != v {
			return
		}
		if had {
			d.lru.Add(key, prev)
		} else {
			d.lru.Remove(key)
		}
	}, true
}
