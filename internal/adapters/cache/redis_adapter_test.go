package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	redisclient "github.com/zatekoja/healthmarket/internal/infrastructure/clients/redis"
)

func newTestCache(t *testing.T) (providers.CacheProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisAdapter(redisclient.NewClientFromRedis(rdb), "cache:"), mr
}

func TestRedisAdapter_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "rec:fever", []byte(`{"specialty":"General Physician"}`), time.Minute))
	assert.True(t, mr.Exists("cache:rec:fever"))

	got, err := c.Get(ctx, "rec:fever")
	require.NoError(t, err)
	assert.JSONEq(t, `{"specialty":"General Physician"}`, string(got))

	require.NoError(t, c.Delete(ctx, "rec:fever"))
	_, err = c.Get(ctx, "rec:fever")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestRedisAdapter_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}
