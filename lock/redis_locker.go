package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"

	"financing-ledger/domain"
)

const (
	defaultRetryInterval = 100 * time.Millisecond
	defaultMaxRetries    = 50
)

// RedisLocker obtains "lock:<key>" through redislock so that replicas sharing
// one Redis never approve the same record concurrently.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
	logger logrus.FieldLogger
}

func NewRedisLocker(client *redislock.Client, ttl time.Duration, logger logrus.FieldLogger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(defaultRetryInterval), defaultMaxRetries),
		logger: logger,
	}
}

// WithRetry replaces the retry strategy used while waiting for a held lock.
func (r *RedisLocker) WithRetry(retry redislock.RetryStrategy) *RedisLocker {
	r.retry = retry
	return r
}

// Lock returns an error wrapping domain.ErrConflict when the lock is still
// held after the retry budget is spent.
func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key

	l, err := r.client.Obtain(ctx, lockKey, r.ttl, &redislock.Options{RetryStrategy: r.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", domain.ErrConflict, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain %s: %w", lockKey, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be cancelled here.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := l.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.logger.WithFields(logrus.Fields{
					"module": "lock",
					"key":    lockKey,
				}).Warn("failed to release redis lock: " + err.Error())
			}
		})
	}, nil
}

var _ Locker = (*RedisLocker)(nil)
