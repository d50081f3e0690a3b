package notification

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a SentCache backed by Redis, for deployments running
// more than one dispatch worker. Keys are namespaced under a prefix
// and every key carries a TTL, so the cache is bounded by time rather
// than by entry count.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache returns a Redis-backed cache. The prefix namespaces
// keys (e.g. "notify:sent"); ttl bounds how long a duplicate is
// suppressed.
func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.prefix+":"+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisCache) Mark(ctx context.Context, key string) error {
	return r.rdb.Set(ctx, r.prefix+":"+key, "1", r.ttl).Err()
}
