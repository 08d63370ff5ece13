package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -destination=mocks/mock_cache.go -package=mocks phonics-coach/internal/cache Cache,RefreshTokenStore

// Cache stores JSON-encoded values with a TTL.
type Cache interface {
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get decodes the value under key into dest. It reports false for a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Delete removes key.
	Delete(ctx context.Context, key string) error
}

// RedisClientProvider exposes the raw client for scripts and health checks.
type RedisClientProvider interface {
	Client() *redis.Client
}

// Ensure Redis implements Cache interface
var (
	_ Cache               = (*Redis)(nil)
	_ RedisClientProvider = (*Redis)(nil)
)
