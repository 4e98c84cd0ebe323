package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/kjstillabower/health-advisory-service/internal/config"
	"github.com/kjstillabower/health-advisory-service/internal/models"
)

// maxRelativeExpiration is memcached's limit for relative expirations (30 days).
const maxRelativeExpiration = 30 * 24 * 60 * 60

// MemcachedCache stores JSON-encoded advisories in memcached.
type MemcachedCache struct {
	client *memcache.Client
}

// NewMemcachedCache connects lazily to a comma-separated server list
// (e.g. "host1:11211,host2:11211"). Zero timeout and maxIdleConns keep the client defaults.
func NewMemcachedCache(addrs string, timeout time.Duration, maxIdleConns int) (*MemcachedCache, error) {
	var servers []string
	for _, a := range strings.Split(addrs, ",") {
		if a = strings.TrimSpace(a); a != "" {
			servers = append(servers, a)
		}
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("memcached: no server addresses in %q", addrs)
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	if maxIdleConns > 0 {
		client.MaxIdleConns = maxIdleConns
	}
	return &MemcachedCache{client: client}, nil
}

func (c *MemcachedCache) Get(ctx context.Context, key string) (models.Advisory, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Advisory{}, false, err
	}
	item, err := c.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return models.Advisory{}, false, nil
	}
	if err != nil {
		return models.Advisory{}, false, fmt.Errorf("memcached get: %w", err)
	}
	var a models.Advisory
	if err := json.Unmarshal(item.Value, &a); err != nil {
		return models.Advisory{}, false, fmt.Errorf("memcached decode: %w", err)
	}
	return a, true, nil
}

func (c *MemcachedCache) Set(ctx context.Context, key string, value models.Advisory, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("memcached encode: %w", err)
	}
	return c.client.Set(&memcache.Item{Key: key, Value: raw, Expiration: expirationSeconds(ttl)})
}

// expirationSeconds clamps ttl into memcached's relative expiration range.
func expirationSeconds(ttl time.Duration) int32 {
	sec := int64(ttl / time.Second)
	if sec <= 0 {
		return 1
	}
	if sec > maxRelativeExpiration {
		return maxRelativeExpiration
	}
	return int32(sec)
}

func (c *MemcachedCache) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.client.Ping()
}

func (c *MemcachedCache) Close() error    { return c.client.Close() }
func (c *MemcachedCache) Backend() string { return config.CacheMemcached }
