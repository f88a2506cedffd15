package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/junkim100/homebrew-trace-sub001/schemas"
)

// RedisAggregateCache wraps an AggregateStore with a read-through cache.
// Aggregate rollups are expensive to recompute and change slowly (hourly at
// most), so they are the one store concern worth caching; notes and graph
// lookups are not, since their filters are effectively unique per query.
type RedisAggregateCache struct {
	next  AggregateStore
	rdb   *redis.Client
	ttl   time.Duration
}

// NewRedisAggregateCache wraps next with a cache backed by rdb. ttl of zero
// uses a 5 minute default.
func NewRedisAggregateCache(next AggregateStore, rdb *redis.Client, ttl time.Duration) *RedisAggregateCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &RedisAggregateCache{next: next, rdb: rdb, ttl: ttl}
}

func (c *RedisAggregateCache) cacheKey(keyType string, filter schemas.TimeFilter, limit int) string {
	start, end := "", ""
	if filter.Start != nil {
		start = filter.Start.Format(time.RFC3339)
	}
	if filter.End != nil {
		end = filter.End.Format(time.RFC3339)
	}
	return fmt.Sprintf("agg:%s:%s:%s:%q:%d", keyType, start, end, filter.Description, limit)
}

func (c *RedisAggregateCache) TopByKeyType(ctx context.Context, keyType string, filter schemas.TimeFilter, limit int) (AggregateResult, error) {
	key := c.cacheKey(keyType, filter, limit)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached AggregateResult
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
	}

	result, err := c.next.TopByKeyType(ctx, keyType, filter, limit)
	if err != nil {
		return AggregateResult{}, err
	}

	if raw, err := json.Marshal(result); err == nil {
		// Best-effort write: a cache failure never fails the query itself.
		_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}
	return result, nil
}
