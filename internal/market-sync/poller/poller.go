package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

type Fetcher interface {
	ListMarkets(ctx context.Context) ([]betting.Market, error)
}

type Cache interface {
	SetMarkets(ctx context.Context, ms []betting.Market) error
}

type Broadcaster interface {
	PublishSnapshot(ctx context.Context, snap events.MarketSnapshot) error
}

// Poller relê a lista de mercados em intervalo fixo, grava no cache e
// anuncia o snapshot. Um único loop: coletas nunca se sobrepõem.
type Poller struct {
	Log         *zap.Logger
	Fetcher     Fetcher
	Cache       Cache
	Broadcaster Broadcaster // opcional
	Interval    time.Duration
	Location    *time.Location
	Now         func() time.Time

	OnFetched func()       // métricas
	OnError   func(string) // métricas por fase
}

// Run coleta uma vez na partida e depois a cada Interval, até ctx ser cancelado.
func (p *Poller) Run(ctx context.Context) error {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	interval := p.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	p.tick(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	ms, err := p.Fetcher.ListMarkets(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		// mantém o snapshot anterior no cache
		p.Log.Warn("market fetch failed", zap.Error(err))
		p.failed("fetch")
		return
	}
	if p.OnFetched != nil {
		p.OnFetched()
	}

	if err := p.Cache.SetMarkets(ctx, ms); err != nil {
		p.Log.Warn("redis set failed", zap.Error(err))
		p.failed("cache")
		// o broadcast ainda vale para quem está conectado
	}

	if p.Broadcaster == nil {
		return
	}
	snap := Snapshot(ms, p.Now(), p.Location)
	if err := p.Broadcaster.PublishSnapshot(ctx, snap); err != nil {
		p.Log.Warn("market broadcast failed", zap.Error(err))
		p.failed("broadcast")
		return
	}
	p.Log.Debug("markets synced", zap.Int("markets", len(ms)))
}

func (p *Poller) failed(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

// Snapshot monta o evento com a janela de horário já avaliada em loc.
func Snapshot(ms []betting.Market, now time.Time, loc *time.Location) events.MarketSnapshot {
	out := events.MarketSnapshot{
		Markets:   make([]events.MarketState, 0, len(ms)),
		FetchedAt: now.UTC(),
	}
	for _, m := range ms {
		out.Markets = append(out.Markets, events.MarketState{
			MarketID:    m.ID,
			OpenTime:    m.OpenTime,
			CloseTime:   m.CloseTime,
			OpenResult:  m.OpenResult,
			CloseResult: m.CloseResult,
			WindowOpen:  betting.IsWindowOpen(m, now, loc),
		})
	}
	return out
}
