package markets

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

var ErrNotFound = errors.New("market not found")

type Cache interface {
	GetMarkets(ctx context.Context) ([]betting.Market, bool, error)
	SetMarkets(ctx context.Context, ms []betting.Market, ttl time.Duration) error
}

type Fetcher interface {
	ListMarkets(ctx context.Context) ([]betting.Market, error)
}

// Source lê o snapshot de mercados do cache e, em caso de miss, busca no backend
// e reabastece o cache. Nunca guarda estado próprio: cada chamada relê.
type Source struct {
	Log     *zap.Logger
	Cache   Cache
	Backend Fetcher
	TTL     time.Duration
}

func NewSource(log *zap.Logger, c Cache, b Fetcher, ttl time.Duration) *Source {
	return &Source{Log: log, Cache: c, Backend: b, TTL: ttl}
}

// List relê a lista de mercados. Sem Cache (ambiente local) vai direto ao backend.
func (s *Source) List(ctx context.Context) ([]betting.Market, error) {
	if s.Cache == nil {
		return s.Backend.ListMarkets(ctx)
	}
	if ms, ok, err := s.Cache.GetMarkets(ctx); err != nil {
		s.Log.Warn("market cache read failed", zap.Error(err))
	} else if ok {
		return ms, nil
	}

	ms, err := s.Backend.ListMarkets(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetMarkets(ctx, ms, s.TTL); err != nil {
		s.Log.Warn("market cache backfill failed", zap.Error(err))
	}
	return ms, nil
}

func (s *Source) Get(ctx context.Context, id string) (betting.Market, error) {
	ms, err := s.List(ctx)
	if err != nil {
		return betting.Market{}, err
	}
	for _, m := range ms {
		if m.ID == id {
			return m, nil
		}
	}
	return betting.Market{}, ErrNotFound
}
