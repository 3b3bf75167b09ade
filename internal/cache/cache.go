// Package cache holds byte caches used to keep upstream lookups warm
package cache

import (
	"context"
	"time"
)

// Cache stores raw values by key.
// Misses and backend failures both report ok=false: callers treat the cache as optional.
type Cache interface {
	Get(ctx context.Context, k string) ([]byte, bool)
	Set(ctx context.Context, k string, v []byte, ttl time.Duration)
	Delete(ctx context.Context, k string)
}
