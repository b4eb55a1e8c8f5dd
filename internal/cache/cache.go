// Package cache stores resolved employee principals behind a hashed key.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the key/value contract used by the user provider.
// Implemented by Memory (dev, single instance) and Redis (shared).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Config struct {
	Backend string
	TTL     time.Duration
	Prefix  string
	Size    int
}

// New picks the backend named by cfg.Backend. Anything but "redis" falls back
// to the in-process cache.
func New(cfg Config, redisClient *redis.Client) Store {
	switch cfg.Backend {
	case "redis":
		return NewRedis(redisClient, RedisConfig{Prefix: cfg.Prefix})
	default:
		return NewMemory(cfg.Size, cfg.TTL)
	}
}
