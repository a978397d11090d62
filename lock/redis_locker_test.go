package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financing-ledger/domain"
)

func setupRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger, _ := test.NewNullLogger()
	l := NewRedisLocker(redislock.New(client), 10*time.Second, logger).
		WithRetry(redislock.LimitRetry(redislock.LinearBackoff(5*time.Millisecond), 3))
	return l, mr
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	l, mr := setupRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "financing:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:financing:1"))

	unlock()
	assert.False(t, mr.Exists("lock:financing:1"))
	unlock()
}

func TestRedisLocker_HeldLockReturnsConflict(t *testing.T) {
	l, _ := setupRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "financing:1")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(context.Background(), "financing:1")

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRedisLocker_ReacquireAfterRelease(t *testing.T) {
	l, _ := setupRedisLocker(t)

	unlock, err := l.Lock(context.Background(), "financing:2")
	require.NoError(t, err)
	unlock()

	unlock, err = l.Lock(context.Background(), "financing:2")
	require.NoError(t, err)
	unlock()
}
