package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"financing-ledger/domain"
)

const cacheKeyPrefix = "financing:"

type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func cacheKey(id uint64) string {
	return fmt.Sprintf("%s%d", cacheKeyPrefix, id)
}

func (r *RedisCache) Get(ctx context.Context, id uint64) (domain.Financing, bool) {
	val, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return domain.Financing{}, false
	}

	var f domain.Financing
	if err := json.Unmarshal(val, &f); err != nil {
		return domain.Financing{}, false
	}
	return f, true
}

func (r *RedisCache) Set(ctx context.Context, f domain.Financing) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cacheKey(f.ID), b, r.ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, id uint64) error {
	return r.client.Del(ctx, cacheKey(id)).Err()
}

var _ CacheRepository = (*RedisCache)(nil)
