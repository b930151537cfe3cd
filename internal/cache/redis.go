// Package cache keeps the sent-reminder ledger in Redis so every API replica
// sees the same dedupe keys.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client
type Cache struct {
	Db redis.UniversalClient
}

// Connect parses a redis:// URL and verifies the server answers
func Connect(ctx context.Context, url string) (*Cache, error) {
	const op = "cache.Connect"
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	db := redis.NewClient(opts)
	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

func (c *Cache) Close() error {
	return c.Db.Close()
}

// RedisLedger implements notify.SentLedger with SET NX
type RedisLedger struct {
	cache  *Cache
	prefix string
}

// NewRedisLedger namespaces every key under prefix, e.g. "rentdesk:reminder:..."
func NewRedisLedger(c *Cache, prefix string) *RedisLedger {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisLedger{cache: c, prefix: prefix}
}

func (l *RedisLedger) MarkSent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "cache.MarkSent"
	ok, err := l.cache.Db.SetNX(ctx, l.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

func (l *RedisLedger) Forget(ctx context.Context, key string) error {
	const op = "cache.Forget"
	if err := l.cache.Db.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
