package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Repo interface {
	SaveTicket(ctx context.Context, t events.TicketConfirmed) (bool, error)
}

var errInvalidTicket = errors.New("ticket_confirmed without ticket_id, user_id or entries")

// Processor consome ticket_confirmed do Kafka e grava a auditoria no Postgres.
// Payload inválido ou falha persistente de banco vão para a DLQ.
type Processor struct {
	Log    *zap.Logger
	Reader Reader
	Repo   Repo
	DLQ    Writer // opcional

	Retries int
	Backoff time.Duration

	OnConsumed  func()       // métricas (counter++)
	OnRecorded  func()       // métricas
	OnDuplicate func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.failed("read")
			if !sleep(ctx, 500*time.Millisecond) {
				return ctx.Err()
			}
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		p.Handle(ctx, m)
	}
}

// Handle processa uma mensagem; nunca devolve erro para não travar a partição
func (p *Processor) Handle(ctx context.Context, m kafka.Message) {
	var t events.TicketConfirmed
	if err := json.Unmarshal(m.Value, &t); err != nil {
		p.Log.Warn("invalid message", zap.Error(err))
		p.failed("decode")
		p.deadLetter(ctx, m, err)
		return
	}
	if t.TicketID == "" || t.UserID == "" || len(t.Entries) == 0 {
		p.Log.Warn("invalid ticket", zap.String("ticketId", t.TicketID))
		p.failed("validate")
		p.deadLetter(ctx, m, errInvalidTicket)
		return
	}

	inserted, err := p.save(ctx, t)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.Log.Error("db insert failed", zap.String("ticketId", t.TicketID), zap.Error(err))
		p.failed("db")
		p.deadLetter(ctx, m, err)
		return
	}
	if !inserted {
		p.Log.Debug("ticket already recorded", zap.String("ticketId", t.TicketID))
		if p.OnDuplicate != nil {
			p.OnDuplicate()
		}
		return
	}
	if p.OnRecorded != nil {
		p.OnRecorded()
	}
	p.Log.Info("ticket recorded",
		zap.String("ticketId", t.TicketID),
		zap.String("userId", t.UserID),
		zap.Int("entries", len(t.Entries)),
	)
}

// save tenta gravar com backoff linear (Retries tentativas extras)
func (p *Processor) save(ctx context.Context, t events.TicketConfirmed) (bool, error) {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 300 * time.Millisecond
	}
	inserted, err := p.Repo.SaveTicket(ctx, t)
	for i := 0; err != nil && i < p.Retries; i++ {
		if !sleep(ctx, time.Duration(i+1)*backoff) {
			return false, ctx.Err()
		}
		inserted, err = p.Repo.SaveTicket(ctx, t)
	}
	return inserted, err
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, cause error) {
	if p.DLQ == nil {
		return
	}
	dlq := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(cause.Error())},
		},
	}
	if err := p.DLQ.WriteMessages(ctx, dlq); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.failed("dlq")
	}
}

func (p *Processor) failed(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
