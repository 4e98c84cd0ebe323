package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjstillabower/health-advisory-service/internal/config"
	"github.com/kjstillabower/health-advisory-service/internal/models"
)

// RedisOptions configures RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// RedisCache stores JSON-encoded advisories with SET EX.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache returns a cache backed by a lazily connected redis client.
func NewRedisCache(opts RedisOptions) *RedisCache {
	ro := &redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.Timeout > 0 {
		ro.DialTimeout = opts.Timeout
		ro.ReadTimeout = opts.Timeout
		ro.WriteTimeout = opts.Timeout
	}
	return &RedisCache{client: redis.NewClient(ro)}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.Advisory, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Advisory{}, false, nil
	}
	if err != nil {
		return models.Advisory{}, false, fmt.Errorf("redis get: %w", err)
	}
	var a models.Advisory
	if err := json.Unmarshal(raw, &a); err != nil {
		return models.Advisory{}, false, fmt.Errorf("redis decode: %w", err)
	}
	return a, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value models.Advisory, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis encode: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error { return c.client.Ping(ctx).Err() }
func (c *RedisCache) Close() error                   { return c.client.Close() }
func (c *RedisCache) Backend() string                { return config.CacheRedis }
