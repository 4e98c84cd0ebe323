package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(RedisOptions{Addr: mr.Addr(), Timeout: time.Second})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	val := sampleAdvisory()
	require.NoError(t, c.Set(ctx, Key("Seattle"), val, 10*time.Minute))

	got, ok, err := c.Get(ctx, Key("seattle"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, val.Location, got.Location)
	assert.Equal(t, val.Sample, got.Sample)
	assert.Equal(t, val.Recommendations, got.Recommendations)

	assert.Equal(t, 10*time.Minute, mr.TTL(Key("seattle")))
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newTestRedis(t)

	_, ok, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", sampleAdvisory(), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	c, mr := newTestRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	_, ok, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisCache_PingAndServerDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)
	require.NoError(t, c.Ping(ctx))

	mr.Close()
	assert.Error(t, c.Ping(ctx))
	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
}
