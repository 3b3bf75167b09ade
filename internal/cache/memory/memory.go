package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nkiryanov/r6tracker/internal/cache"
)

const cleanupInterval = time.Minute

type Mem struct{ c *gocache.Cache }

var _ cache.Cache = (*Mem)(nil)

// New in-process cache. Zero ttl on Set means defaultTTL
func New(defaultTTL time.Duration) *Mem {
	return &Mem{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *Mem) Get(_ context.Context, k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *Mem) Set(_ context.Context, k string, v []byte, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(k, v, ttl)
}

func (m *Mem) Delete(_ context.Context, k string) { m.c.Delete(k) }
