// Package cache keeps short-lived ranking results in Redis.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"omegavideos/internal/logging"
)

// TrendingKey holds the ranked trending ids as a sorted set scored by rank.
const TrendingKey = "feed:trending"

// TrendingCache stores the trending order only. Counters and viewer flags
// are resolved on every read.
type TrendingCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewTrendingCache(client *redis.Client, ttl time.Duration) *TrendingCache {
	return &TrendingCache{client: client, ttl: ttl, log: logging.Component("TrendingCache")}
}

// Get returns the cached ids in rank order. found is false on a miss.
func (c *TrendingCache) Get(ctx context.Context) ([]int64, bool, error) {
	members, err := c.client.ZRange(ctx, TrendingKey, 0, -1).Result()
	if err != nil {
		return nil, false, fmt.Errorf("get trending: %w", err)
	}
	if len(members) == 0 {
		return nil, false, nil
	}

	ids := make([]int64, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("parse trending member %q: %w", m, err)
		}
		ids[i] = id
	}
	return ids, true, nil
}

// Set replaces the cached order. An empty list is not cached.
func (c *TrendingCache) Set(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]redis.Z, len(ids))
	for i, id := range ids {
		members[i] = redis.Z{Score: float64(i), Member: strconv.FormatInt(id, 10)}
	}

	// MULTI keeps readers from seeing a half-written set
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, TrendingKey)
	pipe.ZAdd(ctx, TrendingKey, members...)
	pipe.Expire(ctx, TrendingKey, c.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set trending: %w", err)
	}

	c.log.Debug().Int("videos", len(ids)).Dur("ttl", c.ttl).Msg("trending cached")
	return nil
}
