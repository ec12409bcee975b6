package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/schoolfin/voucher/internal/infrastructure/config"
)

const defaultArtifactKeyPrefix = "voucher:artifact:"

// RedisArtifactCache implements ArtifactCache on Redis so every instance
// behind a load balancer shares generated PDFs
type RedisArtifactCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisArtifactCache connects to Redis and verifies the connection
func NewRedisArtifactCache(cfg config.RedisConfig) (*RedisArtifactCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisArtifactCacheWithClient(client, ""), nil
}

// NewRedisArtifactCacheWithClient wraps an existing client
func NewRedisArtifactCacheWithClient(client *redis.Client, keyPrefix string) *RedisArtifactCache {
	if keyPrefix == "" {
		keyPrefix = defaultArtifactKeyPrefix
	}
	return &RedisArtifactCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisArtifactCache) key(hash string) string {
	return c.keyPrefix + hash
}

// Get returns the cached PDF for hash
func (c *RedisArtifactCache) Get(ctx context.Context, hash string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached artifact: %w", err)
	}
	return data, true, nil
}

// Set stores data under hash with a TTL
func (c *RedisArtifactCache) Set(ctx context.Context, hash string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(hash), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache artifact: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisArtifactCache) Close() error {
	return c.client.Close()
}

var _ ArtifactCache = (*RedisArtifactCache)(nil)
