package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	redisclient "github.com/zatekoja/healthmarket/internal/infrastructure/clients/redis"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	"github.com/zatekoja/healthmarket/pkg/config"
)

// exerciseStore runs the behaviour every backend must share
func exerciseStore(t *testing.T, store providers.StorageProvider) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, KeyDoctors)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyDoctors, []byte(`[{"id":1}]`)))
	value, ok, err := store.Get(ctx, KeyDoctors)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(value))

	require.NoError(t, store.Set(ctx, KeyDoctors, []byte(`[]`)))
	value, _, err = store.Get(ctx, KeyDoctors)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(value))

	require.NoError(t, store.Delete(ctx, KeyDoctors))
	_, ok, err = store.Get(ctx, KeyDoctors)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Delete(ctx, "never_written"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	raw := []byte(`"a"`)
	require.NoError(t, store.Set(ctx, "k", raw))
	raw[1] = 'b'

	value, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(value))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set(context.Background(), "../escape", []byte("{}"))
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(redisclient.NewClientFromRedis(rdb), "hm:")
	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), KeyUsers, []byte(`[]`)))
	assert.True(t, mr.Exists("hm:users"))
	assert.Zero(t, mr.TTL("hm:users"), "stored collections never expire")
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	type item struct {
		ID int64 `json:"id"`
	}

	got, err := GetJSON(ctx, store, KeyMedicines, []item{})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, SetJSON(ctx, store, KeyMedicines, []item{{ID: 1}, {ID: 2}}))
	got, err = GetJSON(ctx, store, KeyMedicines, []item{})
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 1}, {ID: 2}}, got)
}

func TestGetJSON_MalformedValueIsAnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyMedicines, []byte(`{not json`)))

	got, err := GetJSON(ctx, store, KeyMedicines, []int{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decode medicines")
	assert.Empty(t, got)
}

func TestWishlistKey(t *testing.T) {
	assert.Equal(t, "wishlist_42", WishlistKey(42))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.StorageConfig{Backend: "memory"}, Backends{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = New(ctx, config.StorageConfig{Backend: "file", Dir: t.TempDir()}, Backends{})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	_, err = New(ctx, config.StorageConfig{Backend: "redis"}, Backends{})
	assert.Error(t, err)

	_, err = New(ctx, config.StorageConfig{Backend: "sqlite"}, Backends{})
	assert.Error(t, err)
}

func TestInstrument(t *testing.T) {
	mem := NewMemoryStore()
	assert.Same(t, mem, Instrument(mem, "memory", nil).(*MemoryStore))

	metrics, err := observability.InitMetrics()
	require.NoError(t, err)
	wrapped := Instrument(mem, "memory", metrics)
	exerciseStore(t, wrapped)
}
