package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend/dto"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

const msgLoadFailed = "Failed to load history"

const (
	Credit = "Credit"
	Debit  = "Debit"
)

type Backend interface {
	GetUser(ctx context.Context, id string) (dto.User, error)
}

// Service monta as telas de histórico a partir do registro do usuário no backend.
type Service struct {
	Backend Backend
}

func NewService(b Backend) *Service { return &Service{Backend: b} }

type Win struct {
	betting.BetRecord
	WinningAmount decimal.Decimal `json:"winningAmount"`
}

type Wins struct {
	Items []Win           `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Range filtra por data de declaração do resultado; limites zero são ignorados.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

type StatementLine struct {
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
}

func (s *Service) user(ctx context.Context, userID string) (dto.User, error) {
	u, err := s.Backend.GetUser(ctx, userID)
	if err != nil {
		return dto.User{}, backend.Classify(err, msgLoadFailed)
	}
	return u, nil
}

// Bids devolve todas as apostas, da mais recente para a mais antiga.
func (s *Service) Bids(ctx context.Context, userID string) ([]betting.BetRecord, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Bids(u.BetDetails), nil
}

func (s *Service) Wins(ctx context.Context, userID string, r Range) (Wins, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return Wins{}, err
	}
	return WinHistory(u.BetDetails, r), nil
}

func (s *Service) Statement(ctx context.Context, userID string) ([]StatementLine, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Statement(u.BetDetails, u.WithdrawalRequests), nil
}

// Bids inverte a ordem de gravação (o backend anexa no fim).
func Bids(records []betting.BetRecord) []betting.BetRecord {
	out := make([]betting.BetRecord, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}

// WinHistory filtra apostas vencedoras já declaradas, ordena pela declaração
// (mais recente primeiro) e soma os prêmios.
func WinHistory(records []betting.BetRecord, r Range) Wins {
	out := Wins{Items: []Win{}, Total: decimal.Zero}
	for _, rec := range records {
		if !rec.IsWinner || !rec.ResultDeclared {
			continue
		}
		if (!r.From.IsZero() || !r.To.IsZero()) && (rec.ResultDeclarationTime == nil || !r.contains(*rec.ResultDeclarationTime)) {
			continue
		}
		amt := betting.WinningAmount(rec)
		out.Items = append(out.Items, Win{BetRecord: rec, WinningAmount: amt})
		out.Total = out.Total.Add(amt)
	}
	sort.SliceStable(out.Items, func(i, j int) bool {
		return after(out.Items[i].ResultDeclarationTime, out.Items[j].ResultDeclarationTime)
	})
	return out
}

// Statement gera o extrato: apostas liquidadas (crédito do prêmio ou débito da aposta)
// e saques como débito, ordenados por data decrescente.
func Statement(records []betting.BetRecord, withdrawals []dto.Withdrawal) []StatementLine {
	lines := make([]StatementLine, 0, len(records)+len(withdrawals))
	for _, rec := range records {
		if !rec.ResultDeclared {
			continue
		}
		line := StatementLine{Date: recordDate(rec), Status: "Completed"}
		if rec.IsWinner {
			line.Type = Credit
			line.Amount = betting.WinningAmount(rec)
			line.Description = fmt.Sprintf("Won %s bet on %s", rec.BetType.Category, rec.MarketID)
		} else {
			line.Type = Debit
			line.Amount = rec.Amount
			line.Description = fmt.Sprintf("Lost %s bet on %s", rec.BetType.Category, rec.MarketID)
		}
		lines = append(lines, line)
	}
	for _, w := range withdrawals {
		lines = append(lines, StatementLine{
			Date:        w.RequestTime,
			Type:        Debit,
			Amount:      w.Amount.Decimal,
			Description: "Withdrawal request",
			Status:      w.Status,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Date.After(lines[j].Date) })
	return lines
}

func recordDate(r betting.BetRecord) time.Time {
	if r.ResultDeclarationTime != nil {
		return *r.ResultDeclarationTime
	}
	if r.BetPlacedTiming != nil {
		return *r.BetPlacedTiming
	}
	return time.Time{}
}

// nil vai para o fim
func after(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return a.After(*b)
}
