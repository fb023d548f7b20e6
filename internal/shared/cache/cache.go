// Package cache holds the redis keys shared across features and the
// read-through helper the services use.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeeOptionsKey = "employees:options"
	DashboardKey       = "dashboard:summary"
)

// Invalidate deletes keys and only logs failures; a stale entry expires on
// its own TTL.
func Invalidate(ctx context.Context, rdb *redis.Client, logger *zap.Logger, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Error("failed to invalidate cache",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

// GetOrLoad returns the cached JSON value for key, or calls load once per key
// across concurrent callers and stores the result for ttl.
func GetOrLoad[T any](
	ctx context.Context,
	rdb *redis.Client,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	if rdb != nil {
		if cached, err := rdb.Get(ctx, key).Result(); err == nil {
			var v T
			if json.Unmarshal([]byte(cached), &v) == nil {
				return v, nil
			}
		}
	}

	res, err, _ := sf.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if rdb != nil {
			if data, err := json.Marshal(v); err == nil {
				rdb.Set(ctx, key, data, ttl)
			}
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return res.(T), nil
}
