package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hoopslab/etl/internal/metrics"
)

// RedisCache stores upstream response bodies so reruns of an extract
// within the TTL do not hit the providers again
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to redisURL and verifies the connection
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		prefix: "hoopslab:upstream:",
		ttl:    ttl,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Get returns the cached body for key. Redis errors count as misses.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	start := time.Now()
	body, err := rc.client.Get(ctx, rc.prefix+key).Bytes()
	metrics.RecordCacheOperation("get", time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.RecordCacheHit()
		return body, true
	case err == redis.Nil:
		metrics.RecordCacheMiss()
	default:
		metrics.RecordCacheMiss()
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	return nil, false
}

// Set stores body under key with the cache TTL. Failures are logged, not returned.
func (rc *RedisCache) Set(ctx context.Context, key string, body []byte) {
	start := time.Now()
	err := rc.client.Set(ctx, rc.prefix+key, body, rc.ttl).Err()
	metrics.RecordCacheOperation("set", time.Since(start).Seconds())
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
