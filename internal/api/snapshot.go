package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rescuedogs/rescue-edge/internal/dogs"
	"github.com/rescuedogs/rescue-edge/internal/seo"
)

// snapshot is the full catalog as of fetchedAt, with its sitemap rendered.
type snapshot struct {
	dogs      []dogs.Dog
	orgs      []dogs.Org
	sitemaps  [][]byte
	fetchedAt time.Time
}

type snapshotCache struct {
	catalog Catalog
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group

	mu   sync.RWMutex
	last *snapshot
}

func newSnapshotCache(c Catalog, ttl time.Duration, now func() time.Time) *snapshotCache {
	return &snapshotCache{catalog: c, ttl: ttl, now: now}
}

// get returns a fresh snapshot, refreshing at most once concurrently. A stale
// snapshot is served when the refresh fails.
func (s *snapshotCache) get(ctx context.Context, site string) (*snapshot, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last != nil && s.now().Sub(last.fetchedAt) < s.ttl {
		return last, nil
	}

	v, err, _ := s.group.Do("catalog", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), site)
	})
	if err != nil {
		if last != nil {
			return last, nil
		}
		return nil, err
	}
	return v.(*snapshot), nil
}

func (s *snapshotCache) refresh(ctx context.Context, site string) (*snapshot, error) {
	ds, err := s.catalog.AllDogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch dogs: %w", err)
	}
	orgs, err := s.catalog.ListOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch organizations: %w", err)
	}
	now := s.now()
	parts, err := seo.BuildSitemaps(seo.SiteURLs(site, ds, orgs, now))
	if err != nil {
		return nil, err
	}
	snap := &snapshot{dogs: ds, orgs: orgs, sitemaps: parts, fetchedAt: now}
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	return snap, nil
}
