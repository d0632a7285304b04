package betting

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustBetType(t *testing.T, id BetTypeID) BetType {
	t.Helper()
	bt, ok := LookupBetType(id)
	if !ok {
		t.Fatalf("bet type %d not in catalog", id)
	}
	return bt
}

func pendingMarket() Market {
	return Market{ID: "KALYAN", OpenTime: "03:45 PM", CloseTime: "05:45 PM", OpenResult: ResultPending, CloseResult: ResultPending}
}

func wallet(v int64) Wallet { return Wallet{Balance: decimal.NewFromInt(v)} }

func TestValidateEntryJodiScenario(t *testing.T) {
	entry, err := ValidateEntry(Input{
		Number:  "5",
		Amount:  "100",
		BetType: mustBetType(t, JodiDigit),
		Market:  pendingMarket(),
		Wallet:  wallet(500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Number != "05" {
		t.Errorf("number = %q, want %q", entry.Number, "05")
	}
	if entry.Amount.String() != "100" {
		t.Errorf("amount = %s, want 100", entry.Amount)
	}
	if entry.Status != StatusPending {
		t.Errorf("status = %q, want %q", entry.Status, StatusPending)
	}
	if entry.Session != SessionNone {
		t.Errorf("session = %q, want none for Jodi", entry.Session)
	}
	if entry.MarketID != "KALYAN" {
		t.Errorf("market = %q, want KALYAN", entry.MarketID)
	}
}

func TestValidateEntryJodiClosedWhenCloseDeclared(t *testing.T) {
	m := pendingMarket()
	m.CloseResult = "12"

	_, err := ValidateEntry(Input{
		Number:  "5",
		Amount:  "100",
		BetType: mustBetType(t, JodiDigit),
		Market:  m,
		Wallet:  wallet(500),
	})
	if got := KindOf(err); got != KindMarketClosed {
		t.Fatalf("kind = %v, want %v (err=%v)", got, KindMarketClosed, err)
	}
}

func TestCanonicalNumber(t *testing.T) {
	tests := []struct {
		name     string
		id       BetTypeID
		in       string
		want     string
		wantKind Kind
	}{
		{"single digit", SingleDigit, "7", "7", KindUnknown},
		{"single digit two chars", SingleDigit, "07", "", KindInvalidNumber},
		{"jodi pads", JodiDigit, "7", "07", KindUnknown},
		{"jodi full", JodiDigit, "99", "99", KindUnknown},
		{"jodi too wide", JodiDigit, "100", "", KindInvalidNumber},
		{"jodi non numeric", JodiDigit, "a1", "", KindInvalidNumber},
		{"panna short", SinglePanna, "45", "", KindInvalidNumber},
		{"panna ok", DoublePanna, "045", "045", KindUnknown},
		{"triple panna ok", TriplePanna, "777", "777", KindUnknown},
		{"panna non numeric", SinglePanna, "12x", "", KindInvalidNumber},
		{"sangam ok", HalfSangam, "5-123", "5-123", KindUnknown},
		{"sangam trims", FullSangam, " 5 - 123 ", "5-123", KindUnknown},
		{"sangam missing dash", FullSangam, "5123", "", KindInvalidNumber},
		{"sangam short panna", HalfSangam, "5-12", "", KindInvalidNumber},
		{"sangam wide digit", HalfSangam, "15-123", "", KindInvalidNumber},
		{"empty", SingleDigit, "  ", "", KindInvalidNumber},
		{"unknown type", BetTypeID(9), "1", "", KindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalNumber(tt.id, tt.in)
			if tt.wantKind != KindUnknown {
				if KindOf(err) != tt.wantKind {
					t.Fatalf("kind = %v, want %v (err=%v)", KindOf(err), tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanonicalNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateEntryCheckOrder(t *testing.T) {
	declaredOpen := pendingMarket()
	declaredOpen.OpenResult = "123"

	tests := []struct {
		name string
		in   Input
		want Kind
	}{
		{
			name: "invalid number wins over everything",
			in:   Input{Number: "45", Amount: "5", BetType: mustBetType(t, SinglePanna), Market: declaredOpen, Wallet: wallet(0)},
			want: KindInvalidNumber,
		},
		{
			name: "missing session for panna",
			in:   Input{Number: "123", Amount: "5", BetType: mustBetType(t, SinglePanna), Market: pendingMarket(), Wallet: wallet(0)},
			want: KindMissingSession,
		},
		{
			name: "missing session for half sangam",
			in:   Input{Number: "1-123", Amount: "50", BetType: mustBetType(t, HalfSangam), Market: pendingMarket(), Wallet: wallet(500)},
			want: KindMissingSession,
		},
		{
			name: "market closed before amount checks",
			in:   Input{Number: "123", Amount: "abc", BetType: mustBetType(t, SinglePanna), Session: SessionOpen, Market: declaredOpen, Wallet: wallet(0)},
			want: KindMarketClosed,
		},
		{
			name: "non numeric amount",
			in:   Input{Number: "123", Amount: "abc", BetType: mustBetType(t, SinglePanna), Session: SessionClose, Market: declaredOpen, Wallet: wallet(500)},
			want: KindInvalidAmount,
		},
		{
			name: "zero amount",
			in:   Input{Number: "1", Amount: "0", BetType: mustBetType(t, SingleDigit), Market: pendingMarket(), Wallet: wallet(500)},
			want: KindInvalidAmount,
		},
		{
			name: "negative amount",
			in:   Input{Number: "1", Amount: "-20", BetType: mustBetType(t, SingleDigit), Market: pendingMarket(), Wallet: wallet(500)},
			want: KindInvalidAmount,
		},
		{
			name: "below minimum regardless of balance",
			in:   Input{Number: "1", Amount: "9.99", BetType: mustBetType(t, SingleDigit), Market: pendingMarket(), Wallet: wallet(1_000_000)},
			want: KindBelowMinimum,
		},
		{
			name: "below minimum even when balance is also short",
			in:   Input{Number: "1", Amount: "5", BetType: mustBetType(t, SingleDigit), Market: pendingMarket(), Wallet: wallet(1)},
			want: KindBelowMinimum,
		},
		{
			name: "insufficient balance regardless of minimum",
			in:   Input{Number: "1", Amount: "60", BetType: mustBetType(t, SingleDigit), Market: pendingMarket(), Wallet: wallet(50)},
			want: KindInsufficientBalance,
		},
		{
			name: "unknown bet type",
			in:   Input{Number: "1", Amount: "60", BetType: BetType{ID: 42}, Market: pendingMarket(), Wallet: wallet(500)},
			want: KindInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateEntry(tt.in)
			if got := KindOf(err); got != tt.want {
				t.Errorf("kind = %v, want %v (err=%v)", got, tt.want, err)
			}
		})
	}
}

func TestValidateEntryExactBoundaries(t *testing.T) {
	entry, err := ValidateEntry(Input{
		Number:  "3",
		Amount:  "10",
		BetType: mustBetType(t, SingleDigit),
		Market:  pendingMarket(),
		Wallet:  wallet(10),
	})
	if err != nil {
		t.Fatalf("amount == minimum == balance should pass: %v", err)
	}
	if !entry.Amount.Equal(MinStake) {
		t.Errorf("amount = %s, want 10", entry.Amount)
	}
}

func TestValidateEntrySessionHandling(t *testing.T) {
	t.Run("panna keeps chosen session", func(t *testing.T) {
		e, err := ValidateEntry(Input{Number: "123", Amount: "10", BetType: mustBetType(t, SinglePanna), Session: SessionClose, Market: pendingMarket(), Wallet: wallet(100)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Session != SessionClose {
			t.Errorf("session = %q, want Close", e.Session)
		}
	})

	t.Run("session agnostic types drop session", func(t *testing.T) {
		for _, id := range []BetTypeID{SingleDigit, JodiDigit} {
			num := "1"
			e, err := ValidateEntry(Input{Number: num, Amount: "10", BetType: mustBetType(t, id), Session: SessionOpen, Market: pendingMarket(), Wallet: wallet(100)})
			if err != nil {
				t.Fatalf("type %d: unexpected error: %v", id, err)
			}
			if e.Session != SessionNone {
				t.Errorf("type %d: session = %q, want none", id, e.Session)
			}
		}
	})

	t.Run("snapshot of bet type is embedded", func(t *testing.T) {
		bt := mustBetType(t, SinglePanna)
		e, err := ValidateEntry(Input{Number: "123", Amount: "10", BetType: bt, Session: SessionOpen, Market: pendingMarket(), Wallet: wallet(100)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		bt.Multiplier = decimal.NewFromInt(1)
		if e.BetType.Multiplier.Equal(bt.Multiplier) {
			t.Error("entry bet type changed together with the caller's copy")
		}
	})
}

func TestValidateEntryMessages(t *testing.T) {
	_, err := ValidateEntry(Input{Number: "1", Amount: "5", BetType: mustBetType(t, SingleDigit), Market: pendingMarket(), Wallet: wallet(100)})
	if err == nil || err.Error() != "Minimum bet amount is ₹10" {
		t.Errorf("message = %v, want minimum stake text", err)
	}
}
