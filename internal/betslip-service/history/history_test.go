package history

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend/dto"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

func at(day int) *time.Time {
	t := time.Date(2024, 1, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func record(number string, id betting.BetTypeID, amount int64, winner, declared bool, declaredAt *time.Time) betting.BetRecord {
	bt, _ := betting.LookupBetType(id)
	return betting.BetRecord{
		BetEntry:              betting.BetEntry{Number: number, Amount: decimal.NewFromInt(amount), BetType: bt, MarketID: "KALYAN"},
		IsWinner:              winner,
		ResultDeclared:        declared,
		ResultDeclarationTime: declaredAt,
	}
}

func TestWinHistory(t *testing.T) {
	records := []betting.BetRecord{
		record("5", betting.SingleDigit, 50, true, true, at(3)),    // 475
		record("12", betting.JodiDigit, 10, true, true, at(5)),     // 950
		record("123", betting.SinglePanna, 10, false, true, at(4)), // perdeu
		record("7", betting.SingleDigit, 10, true, false, nil),     // não declarada
	}

	w := WinHistory(records, Range{})
	if len(w.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(w.Items))
	}
	if w.Items[0].Number != "12" || w.Items[1].Number != "5" {
		t.Errorf("order = %s,%s, want newest first", w.Items[0].Number, w.Items[1].Number)
	}
	if !w.Items[1].WinningAmount.Equal(decimal.NewFromInt(475)) {
		t.Errorf("winningAmount = %s, want 475", w.Items[1].WinningAmount)
	}
	if !w.Total.Equal(decimal.NewFromInt(1425)) {
		t.Errorf("total = %s, want 1425", w.Total)
	}

	filtered := WinHistory(records, Range{From: *at(4)})
	if len(filtered.Items) != 1 || !filtered.Total.Equal(decimal.NewFromInt(950)) {
		t.Errorf("filtered = %+v", filtered)
	}

	empty := WinHistory(nil, Range{})
	if empty.Items == nil || !empty.Total.IsZero() {
		t.Errorf("empty = %+v", empty)
	}
}

func TestStatement(t *testing.T) {
	records := []betting.BetRecord{
		record("5", betting.SingleDigit, 50, true, true, at(3)),
		record("123", betting.SinglePanna, 20, false, true, at(4)),
		record("7", betting.SingleDigit, 10, false, false, nil),
	}
	withdrawals := []dto.Withdrawal{
		{Amount: dto.NewNumber(decimal.NewFromInt(300)), Status: "Pending", RequestTime: *at(6)},
	}

	lines := Statement(records, withdrawals)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}

	want := []struct {
		typ    string
		amount int64
		desc   string
	}{
		{Debit, 300, "Withdrawal request"},
		{Debit, 20, "Lost Single Panna bet on KALYAN"},
		{Credit, 475, "Won Single Digit bet on KALYAN"},
	}
	for i, w := range want {
		l := lines[i]
		if l.Type != w.typ || !l.Amount.Equal(decimal.NewFromInt(w.amount)) || l.Description != w.desc {
			t.Errorf("line %d = %+v, want %+v", i, l, w)
		}
	}
	if lines[0].Status != "Pending" {
		t.Errorf("withdrawal status = %q", lines[0].Status)
	}
}

func TestBidsNewestFirst(t *testing.T) {
	records := []betting.BetRecord{record("1", betting.SingleDigit, 10, false, false, nil), record("2", betting.SingleDigit, 10, false, false, nil)}
	got := Bids(records)
	if got[0].Number != "2" || records[0].Number != "1" {
		t.Errorf("Bids = %+v (input must not be mutated)", got)
	}
}

type fakeBackend struct {
	user dto.User
	err  error
}

func (f fakeBackend) GetUser(context.Context, string) (dto.User, error) { return f.user, f.err }

func TestServiceClassifiesErrors(t *testing.T) {
	s := NewService(fakeBackend{err: &backend.HTTPError{StatusCode: 404, Message: "User not found"}})
	_, err := s.Wins(context.Background(), "u1", Range{})
	if betting.KindOf(err) != betting.KindBackendRejection || err.Error() != "User not found" {
		t.Errorf("err = %v (kind %v)", err, betting.KindOf(err))
	}
}
