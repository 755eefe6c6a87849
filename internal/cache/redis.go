package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores values as JSON in Redis with per-key expiry. Errors
// from the server are treated as cache misses so a degraded Redis never
// breaks reads.
type RedisCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis at the given URL and verifies the
// connection with a ping.
func NewRedisCache[T any](url, prefix string, ttl time.Duration) (*RedisCache[T], error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache[T]{client: client, prefix: prefix, ttl: ttl}, nil
}

func (c *RedisCache[T]) Get(key string) (T, bool) {
	var zero T

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		return zero, false
	}

	var data T
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return zero, false
	}
	return data, true
}

func (c *RedisCache[T]) Set(key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.client.SetEx(ctx, c.prefix+key, raw, c.ttl)
}

func (c *RedisCache[T]) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c.client.Del(ctx, c.prefix+key)
}

// Close releases the underlying connection pool.
func (c *RedisCache[T]) Close() error {
	return c.client.Close()
}
