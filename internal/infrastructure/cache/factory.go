package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/schoolfin/voucher/internal/infrastructure/config"
)

// ArtifactCacheFactory picks the artifact cache backend from configuration
type ArtifactCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	memoryEntries         int
}

// ArtifactCacheFactoryOption is a functional option for configuring the factory
type ArtifactCacheFactoryOption func(*ArtifactCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ArtifactCacheFactoryOption {
	return func(f *ArtifactCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) ArtifactCacheFactoryOption {
	return func(f *ArtifactCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithMemoryEntries bounds the in-memory cache
func WithMemoryEntries(n int) ArtifactCacheFactoryOption {
	return func(f *ArtifactCacheFactory) {
		f.memoryEntries = n
	}
}

// NewArtifactCacheFactory creates a new factory
func NewArtifactCacheFactory(cfg config.RedisConfig, opts ...ArtifactCacheFactoryOption) *ArtifactCacheFactory {
	f := &ArtifactCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		memoryEntries:         128,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when Redis is enabled and reachable, and an
// in-memory cache otherwise
func (f *ArtifactCacheFactory) Create() (ArtifactCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory artifact cache")
		return NewInMemoryArtifactCache(f.memoryEntries), nil
	}

	c, err := NewRedisArtifactCache(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis artifact cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for artifact cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory artifact cache", zap.Error(err))
	return NewInMemoryArtifactCache(f.memoryEntries), nil
}
