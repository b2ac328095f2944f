// Package redisx wraps the Redis client used for caching the grouped
// product catalog.
package redisx

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr, password string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// Cache is a best-effort byte cache on top of Redis. All methods tolerate a
// nil client and Redis failures: reads report a miss, writes are dropped.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("ERROR: redis get %q: %v", key, err)
		}
		return nil, false
	}
	return payload, true
}

func (c *Cache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Printf("ERROR: redis set %q: %v", key, err)
	}
}

// InvalidatePrefix deletes every key under prefix. Catalog writes call this
// so stale grouped listings never outlive a price or stock change.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if c == nil || c.rdb == nil {
		return
	}
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			log.Printf("ERROR: redis scan %q: %v", prefix, err)
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				log.Printf("ERROR: redis del under %q: %v", prefix, err)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
