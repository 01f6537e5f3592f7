package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const detailKeyPrefix = "detail:"

// DetailCache caches raw detail payloads so a re-run shortly after a failed
// one does not hammer the vendor again. Lookups and stores are best effort;
// a broken cache never fails an ingest.
type DetailCache interface {
	Get(ctx context.Context, productID, storeCode string) (json.RawMessage, bool, error)
	Set(ctx context.Context, productID, storeCode string, payload json.RawMessage) error
	Close() error
}

// RedisDetailCache implements DetailCache on Redis. Suitable when several
// ingest hosts share one vendor rate budget.
type RedisDetailCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisDetailCache creates a Redis-backed detail cache and verifies the
// connection before returning.
func NewRedisDetailCache(cfg RedisConfig) (*RedisDetailCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &RedisDetailCache{client: client, ttl: ttl}, nil
}

// NewRedisDetailCacheWithClient creates a cache on an existing client. Useful
// for tests sharing a miniredis or mock connection.
func NewRedisDetailCacheWithClient(client *redis.Client, ttl time.Duration) *RedisDetailCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &RedisDetailCache{client: client, ttl: ttl}
}

func detailKey(productID, storeCode string) string {
	return detailKeyPrefix + productID + ":" + storeCode
}

// Get returns the cached payload for a pair, with found=false on a miss.
func (c *RedisDetailCache) Get(ctx context.Context, productID, storeCode string) (json.RawMessage, bool, error) {
	data, err := c.client.Get(ctx, detailKey(productID, storeCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get detail from Redis: %w", err)
	}
	return json.RawMessage(data), true, nil
}

// Set stores the payload for a pair with the configured TTL.
func (c *RedisDetailCache) Set(ctx context.Context, productID, storeCode string, payload json.RawMessage) error {
	if err := c.client.Set(ctx, detailKey(productID, storeCode), []byte(payload), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store detail in Redis: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisDetailCache) Close() error {
	return c.client.Close()
}

// NoopDetailCache is used when no Redis address is configured.
type NoopDetailCache struct{}

func (NoopDetailCache) Get(context.Context, string, string) (json.RawMessage, bool, error) {
	return nil, false, nil
}

func (NoopDetailCache) Set(context.Context, string, string, json.RawMessage) error { return nil }

func (NoopDetailCache) Close() error { return nil }

var (
	_ DetailCache = (*RedisDetailCache)(nil)
	_ DetailCache = NoopDetailCache{}
)
