package markets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

// mesma chave escrita pelo market-sync-worker
const keyAll = "markets:all"

type RedisCache struct{ R *redis.Client }

func NewRedisCache(r *redis.Client) *RedisCache { return &RedisCache{R: r} }

func (c *RedisCache) GetMarkets(ctx context.Context) ([]betting.Market, bool, error) {
	b, err := c.R.Get(ctx, keyAll).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []betting.Market
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *RedisCache) SetMarkets(ctx context.Context, ms []betting.Market, ttl time.Duration) error {
	b, err := json.Marshal(ms)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyAll, b, ttl).Err()
}
