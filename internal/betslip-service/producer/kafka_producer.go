package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/kafka"
	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer  kafka.MessageWriter
	Timeout time.Duration
}

func NewKafkaPublisher(w kafka.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Timeout: 2 * time.Second}
}

// PublishTicketConfirmed usa o userId como key para manter a ordem por usuário.
func (p *KafkaPublisher) PublishTicketConfirmed(ctx context.Context, e events.TicketConfirmed) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	return kafka.WriteJSON(ctx, p.Writer, e.UserID, b)
}
