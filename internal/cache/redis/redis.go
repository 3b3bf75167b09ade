package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/nkiryanov/r6tracker/internal/cache"
)

const pingTimeout = 5 * time.Second

type Cache struct {
	c      *rdb.Client
	prefix string
}

var _ cache.Cache = (*Cache)(nil)

// New redis backed cache. Keys are stored as "<prefix>:<key>" when prefix is set
func New(addr string, db int, prefix string) *Cache {
	return &Cache{
		c:      rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		prefix: strings.TrimSuffix(prefix, ":"),
	}
}

func (r *Cache) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Cache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := r.c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping failed: %w", err)
	}
	return nil
}

func (r *Cache) Get(ctx context.Context, k string) ([]byte, bool) {
	b, err := r.c.Get(ctx, r.key(k)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *Cache) Set(ctx context.Context, k string, v []byte, ttl time.Duration) {
	_ = r.c.Set(ctx, r.key(k), v, ttl).Err()
}

func (r *Cache) Delete(ctx context.Context, k string) { _ = r.c.Del(ctx, r.key(k)).Err() }

func (r *Cache) Close() error {
	return r.c.Close()
}
