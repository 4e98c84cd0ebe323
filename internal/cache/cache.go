package cache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kjstillabower/health-advisory-service/internal/config"
	"github.com/kjstillabower/health-advisory-service/internal/models"
)

// Cache stores advisories by normalized location.
// Get returns (zero, false, nil) on a miss; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (models.Advisory, bool, error)
	Set(ctx context.Context, key string, value models.Advisory, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
	Backend() string
}

// Key normalizes a location into a cache key: lowercased, whitespace collapsed and
// escaped so it is safe for memcached.
func Key(location string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(location)), " ")
	return "advisory:" + url.QueryEscape(norm)
}

// New builds the backend selected by cfg.CacheBackend.
func New(cfg *config.Config) (Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheInMemory:
		return NewInMemoryCache(), nil
	case config.CacheMemcached:
		return NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
	case config.CacheRedis:
		return NewRedisCache(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Timeout:  cfg.RedisTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// DefaultMaxEntries caps the in-memory cache; locations are free text, so the key
// space is unbounded.
const DefaultMaxEntries = 10000

// InMemoryCache is a process-local TTL map with a size cap. Safe for concurrent use.
type InMemoryCache struct {
	mu         sync.RWMutex
	data       map[string]entry
	maxEntries int
	now        func() time.Time
}

type entry struct {
	value     models.Advisory
	expiresAt time.Time
}

// NewInMemoryCache returns an empty cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]entry), maxEntries: DefaultMaxEntries, now: time.Now}
}

// Get returns the entry for key unless it has expired. Expired entries are dropped.
func (c *InMemoryCache) Get(ctx context.Context, key string) (models.Advisory, bool, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return models.Advisory{}, false, nil
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.data[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return models.Advisory{}, false, nil
	}
	return e.value, true, nil
}

// Set stores value until ttl elapses. When the cache is full, expired entries are
// swept first and then the entry closest to expiry is evicted.
func (c *InMemoryCache) Set(ctx context.Context, key string, value models.Advisory, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.sweepLocked(now)
		if len(c.data) >= c.maxEntries {
			c.evictSoonestLocked()
		}
	}
	c.data[key] = entry{value: value, expiresAt: now.Add(ttl)}
	return nil
}

func (c *InMemoryCache) sweepLocked(now time.Time) {
	for k, e := range c.data {
		if now.After(e.expiresAt) {
			delete(c.data, k)
		}
	}
}

func (c *InMemoryCache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	first := true
	for k, e := range c.data {
		if first || e.expiresAt.Before(soonest) {
			victim, soonest, first = k, e.expiresAt, false
		}
	}
	if !first {
		delete(c.data, victim)
	}
}

// Len returns the number of stored entries, expired or not.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *InMemoryCache) Ping(context.Context) error { return nil }
func (c *InMemoryCache) Close() error               { return nil }
func (c *InMemoryCache) Backend() string            { return config.CacheInMemory }
