package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var _ Cache = (*redis.Client)(nil)

func testRedisAddr(t *testing.T) string {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	return addr
}

func TestFakeCacheUnset(t *testing.T) {
	c := &FakeCache{}
	ctx := context.Background()
	require.Panics(t, func() { c.Set(ctx, "k", 1, 0) })
	require.Panics(t, func() { c.GetDel(ctx, "k") })
	require.NoError(t, c.Close())
}

func TestFakeCacheDelegates(t *testing.T) {
	store := map[string]any{}
	c := &FakeCache{
		SetFn: func(_ context.Context, key string, val any, _ time.Duration) *redis.StatusCmd {
			store[key] = val
			return redis.NewStatusResult("OK", nil)
		},
		GetDelFn: func(_ context.Context, key string) *redis.StringCmd {
			v, ok := store[key]
			if !ok {
				return redis.NewStringResult("", redis.Nil)
			}
			delete(store, key)
			return redis.NewStringResult(v.(string), nil)
		},
		CloseFn: func() error { return errors.New("close") },
	}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "verify:a", "1", time.Hour).Err())
	require.Equal(t, "1", c.GetDel(ctx, "verify:a").Val())
	require.ErrorIs(t, c.GetDel(ctx, "verify:a").Err(), redis.Nil)
	require.EqualError(t, c.Close(), "close")
}
