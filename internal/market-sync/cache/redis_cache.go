package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

// KeyAll é lida pelo betslip-service (markets.RedisCache)
const KeyAll = "markets:all"

// RedisCache guarda a última lista de mercados coletada
// TTL: tempo de expiração do snapshot (se o worker parar, o betslip volta ao backend)
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// SetMarkets sobrescreve o snapshot inteiro; a última coleta vence
func (r *RedisCache) SetMarkets(ctx context.Context, ms []betting.Market) error {
	b, err := json.Marshal(ms)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, KeyAll, b, r.TTL).Err()
}
