package config

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil clients when no address is configured, in which
// case callers fall back to in-process cache and locking.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, *redislock.Client, error) {
	if addr == "" {
		return nil, nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 100,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}

	return rdb, redislock.New(rdb), nil
}
