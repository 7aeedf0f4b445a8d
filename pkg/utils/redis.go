package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobsonar/internal/config"
	"jobsonar/internal/logging"
)

// RedisClient wraps the Redis client with a hot cache of recently seen
// content hashes. The cache is an accelerator in front of the ledger, so
// every method degrades to a miss instead of failing the caller.
type RedisClient struct {
	client *redis.Client
	window time.Duration
	logger logging.Logger
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config) *RedisClient {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	return &RedisClient{
		client: client,
		window: cfg.Pipeline.DedupWindow,
		logger: logging.GetGlobalLogger(),
	}
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// SeenHash reports whether a content hash was marked within the dedup
// window. Errors are logged and reported as a miss so the caller falls
// through to the ledger.
func (r *RedisClient) SeenHash(ctx context.Context, hash string) bool {
	exists, err := r.client.Exists(ctx, r.hashKey(hash)).Result()
	if err != nil {
		r.logger.Debug("Dedup cache lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	return exists > 0
}

// MarkHash records a content hash with the dedup window as TTL
func (r *RedisClient) MarkHash(ctx context.Context, hash string) {
	if err := r.client.Set(ctx, r.hashKey(hash), 1, r.window).Err(); err != nil {
		r.logger.Debug("Dedup cache mark failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// hashKey generates the Redis key for a content hash
func (r *RedisClient) hashKey(hash string) string {
	return fmt.Sprintf("dedup:hash:%s", hash)
}

// IsHealthy checks if Redis is connected and healthy
func (r *RedisClient) IsHealthy(ctx context.Context) error {
	return r.Ping(ctx)
}
