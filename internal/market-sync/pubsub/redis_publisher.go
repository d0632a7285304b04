package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

// PublishSnapshot envia o snapshot para o ws hub do betslip-service
func (b *RedisBroadcaster) PublishSnapshot(ctx context.Context, snap events.MarketSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
