package betting

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrIndexOutOfRange = errors.New("ticket entry index out of range")

// Ticket é a lista ordenada de entradas pendentes. Ordem de inserção = ordem de
// exibição = índice de remoção. Não é seguro para uso concorrente.
type Ticket struct {
	entries []BetEntry
}

func (t *Ticket) Add(e BetEntry) { t.entries = append(t.entries, e) }

func (t *Ticket) Remove(i int) error {
	if i < 0 || i >= len(t.entries) {
		return ErrIndexOutOfRange
	}
	t.entries = append(t.entries[:i:i], t.entries[i+1:]...)
	return nil
}

// Entries devolve uma cópia das entradas.
func (t *Ticket) Entries() []BetEntry {
	out := make([]BetEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Ticket) Len() int { return len(t.entries) }

func (t *Ticket) Clear() { t.entries = nil }

// Summary é o efeito agregado de confirmar o bilhete.
type Summary struct {
	TotalStake       decimal.Decimal `json:"totalStake"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
}

// Summarize soma as apostas e projeta o saldo. Saldo projetado negativo aborta a
// confirmação com KindInsufficientBalance (o Summary ainda é devolvido para exibição).
func Summarize(entries []BetEntry, w Wallet) (Summary, error) {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	s := Summary{TotalStake: total, ProjectedBalance: w.Balance.Sub(total)}
	if s.ProjectedBalance.IsNegative() {
		return s, NewError(KindInsufficientBalance, msgInsufficientBalance)
	}
	return s, nil
}
