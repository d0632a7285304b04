package betting

import (
	"testing"
	"time"
)

func marketWith(open, close string) Market {
	return Market{ID: "MILAN DAY", OpenResult: open, CloseResult: close}
}

func TestIsSessionOpenCoupledTypes(t *testing.T) {
	states := []struct {
		name  string
		m     Market
		open  bool
		close bool
	}{
		{"both pending", marketWith(ResultPending, ResultPending), true, true},
		{"open declared", marketWith("123", ResultPending), false, false},
		{"close declared", marketWith(ResultPending, "456"), false, false},
		{"both declared", marketWith("123", "456"), false, false},
	}

	for _, id := range []BetTypeID{JodiDigit, FullSangam} {
		bt, _ := LookupBetType(id)
		for _, st := range states {
			t.Run(bt.Category+"/"+st.name, func(t *testing.T) {
				if got := IsSessionOpen(st.m, bt, SessionOpen); got != st.open {
					t.Errorf("Open = %v, want %v", got, st.open)
				}
				if got := IsSessionOpen(st.m, bt, SessionClose); got != st.close {
					t.Errorf("Close = %v, want %v", got, st.close)
				}
			})
		}
	}
}

func TestIsSessionOpenPerSessionTypes(t *testing.T) {
	for _, id := range []BetTypeID{SinglePanna, DoublePanna, TriplePanna, HalfSangam} {
		bt, _ := LookupBetType(id)
		t.Run(bt.Category, func(t *testing.T) {
			m := marketWith("123", ResultPending)
			if IsSessionOpen(m, bt, SessionOpen) {
				t.Error("Open should be closed after open result")
			}
			if !IsSessionOpen(m, bt, SessionClose) {
				t.Error("Close should stay open while close result pending")
			}

			m = marketWith(ResultPending, "456")
			if !IsSessionOpen(m, bt, SessionOpen) {
				t.Error("Open should stay open while open result pending")
			}
			if IsSessionOpen(m, bt, SessionClose) {
				t.Error("Close should be closed after close result")
			}

			if IsSessionOpen(marketWith(ResultPending, ResultPending), bt, SessionNone) {
				t.Error("no session should never be eligible for a session-specific type")
			}
		})
	}
}

func TestIsSessionOpenSingleDigit(t *testing.T) {
	bt, _ := LookupBetType(SingleDigit)
	tests := []struct {
		m    Market
		want bool
	}{
		{marketWith(ResultPending, ResultPending), true},
		{marketWith("123", ResultPending), true},
		{marketWith(ResultPending, "456"), true},
		{marketWith("123", "456"), false},
	}
	for _, tt := range tests {
		if got := IsSessionOpen(tt.m, bt, SessionNone); got != tt.want {
			t.Errorf("open=%q close=%q: got %v, want %v", tt.m.OpenResult, tt.m.CloseResult, got, tt.want)
		}
	}
}

func TestIsSessionOpenUnknownType(t *testing.T) {
	if IsSessionOpen(marketWith(ResultPending, ResultPending), BetType{ID: 0}, SessionOpen) {
		t.Error("unknown bet type should never be eligible")
	}
}

func TestIsWindowOpen(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	m := Market{ID: "KALYAN", OpenTime: "03:45 PM", CloseTime: "05:45 PM"}

	if !IsWindowOpen(m, time.Date(2024, 3, 1, 16, 0, 0, 0, ist), ist) {
		t.Error("expected open at 16:00")
	}
	if IsWindowOpen(m, time.Date(2024, 3, 1, 18, 0, 0, 0, ist), ist) {
		t.Error("expected closed at 18:00")
	}

	bad := Market{ID: "BROKEN", OpenTime: "soon", CloseTime: "05:45 PM"}
	if IsWindowOpen(bad, time.Date(2024, 3, 1, 16, 0, 0, 0, ist), ist) {
		t.Error("unparseable times should report closed")
	}
}
