package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financing-ledger/domain"
)

func setupRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, ttl), mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	cache, mr := setupRedisCache(t, time.Hour)
	ctx := context.Background()

	f := newFinancing()
	f.ID = 12
	approvedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.ApprovedAt = &approvedAt
	f.Status = domain.StatusApproved

	require.NoError(t, cache.Set(ctx, f))
	assert.True(t, mr.Exists("financing:12"))

	got, ok := cache.Get(ctx, 12)
	require.True(t, ok)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, domain.StatusApproved, got.Status)
	assert.True(t, got.FinancedAmount.Equal(f.FinancedAmount))
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(approvedAt))

	require.NoError(t, cache.Delete(ctx, 12))
	_, ok = cache.Get(ctx, 12)
	assert.False(t, ok)
}

func TestRedisCache_Expires(t *testing.T) {
	cache, mr := setupRedisCache(t, time.Minute)
	ctx := context.Background()

	f := newFinancing()
	f.ID = 3
	require.NoError(t, cache.Set(ctx, f))

	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, 3)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, mr := setupRedisCache(t, time.Minute)
	require.NoError(t, mr.Set("financing:5", "{not json"))

	_, ok := cache.Get(context.Background(), 5)

	assert.False(t, ok)
}

func TestMockCache(t *testing.T) {
	cache := NewMockCache()
	ctx := context.Background()

	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)

	f := newFinancing()
	f.ID = 1
	require.NoError(t, cache.Set(ctx, f))

	got, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), got.ID)

	require.NoError(t, cache.Delete(ctx, 1))
	_, ok = cache.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMockCache_Expires(t *testing.T) {
	cache := NewMockCacheWithTTL(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	f := newFinancing()
	f.ID = 3
	require.NoError(t, cache.Set(ctx, f))

	_, ok := cache.Get(ctx, 3)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = cache.Get(ctx, 3)
	assert.False(t, ok)
}
