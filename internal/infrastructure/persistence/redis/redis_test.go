package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheFromClient(client), mr
}

func TestNewCache_Pings(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	cache, err := NewCache(Config{URL: "redis://" + addr + "/0", DialTimeout: time.Second, PoolSize: 2})
	require.NoError(t, err)
	defer cache.Close()
	assert.NoError(t, cache.Ping(context.Background()))

	// Addr is not usable once the server is closed.
	mr.Close()
	_, err = NewCache(Config{URL: "redis://" + addr + "/0", DialTimeout: 100 * time.Millisecond})
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestCache_BasicOperations(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.GetBytes(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetBytes(ctx, "k", []byte("v"), time.Minute))
	got, err := cache.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	ttl, err := cache.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	require.NoError(t, cache.Delete(ctx, "k"))
	exists, err = cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, cache.SetBytes(ctx, "", nil, 0), ErrCacheKeyEmpty)
	assert.ErrorIs(t, cache.SetBytes(ctx, "k", nil, -time.Second), ErrCacheInvalidTTL)
}

func TestStateStorage(t *testing.T) {
	cache, mr := newTestCache(t)
	storage := NewStateStorage(cache)
	ctx := context.Background()

	_, err := storage.GetItem(ctx, "gator-hub-storage")
	assert.True(t, shared.IsNotFound(err))

	record := []byte(`{"isDarkMode":true}`)
	require.NoError(t, storage.SetItem(ctx, "gator-hub-storage", record))

	raw, err := mr.Get(PrefixState + "gator-hub-storage")
	require.NoError(t, err)
	assert.Equal(t, string(record), raw)
	assert.Zero(t, mr.TTL(PrefixState+"gator-hub-storage"), "records never expire")

	got, err := storage.GetItem(ctx, "gator-hub-storage")
	require.NoError(t, err)
	assert.JSONEq(t, string(record), string(got))

	require.NoError(t, storage.RemoveItem(ctx, "gator-hub-storage"))
	_, err = storage.GetItem(ctx, "gator-hub-storage")
	assert.True(t, shared.IsNotFound(err))
}

func TestStateStorage_Unavailable(t *testing.T) {
	cache, mr := newTestCache(t)
	storage := NewStateStorage(cache)
	mr.Close()

	err := storage.SetItem(context.Background(), "k", []byte("{}"))
	assert.True(t, shared.IsRetryable(err))

	_, err = storage.GetItem(context.Background(), "k")
	assert.True(t, shared.IsRetryable(err))
	assert.False(t, shared.IsNotFound(err))
}

func TestReminderLedger(t *testing.T) {
	cache, mr := newTestCache(t)
	ledger := NewReminderLedger(cache)
	ctx := context.Background()

	first, err := ledger.MarkSent(ctx, "2024-03-05:4")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := ledger.MarkSent(ctx, "2024-03-05:4")
	require.NoError(t, err)
	assert.False(t, again)

	assert.Equal(t, TTLReminderMarker, mr.TTL(PrefixReminder+"2024-03-05:4"))
}
