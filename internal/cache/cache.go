// Package cache defines the shared second tier behind the in-memory image URL cache.
package cache

import (
	"context"
	"time"
)

// Shared is a cross-instance store for composed image URLs.
type Shared interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	DelPrefix(ctx context.Context, prefix string) (int, error)
}
