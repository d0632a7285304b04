package betting

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ResultPending é o valor sentinela de resultado ainda não declarado.
const ResultPending = "XXX"

const StatusPending = "Pending"

// MinStake é a aposta mínima, fixa para todo o sistema (₹10).
var MinStake = decimal.NewFromInt(10)

// Market é o snapshot de um mercado diário como devolvido pelo backend.
type Market struct {
	ID          string `json:"market_name"`
	OpenTime    string `json:"open_time_formatted"`
	CloseTime   string `json:"close_time_formatted"`
	OpenResult  string `json:"aankdo_open"`
	CloseResult string `json:"aankdo_close"`
	OpenFigure  string `json:"figure_open,omitempty"`
	CloseFigure string `json:"figure_close,omitempty"`
}

func (m Market) OpenDeclared() bool  { return m.OpenResult != ResultPending }
func (m Market) CloseDeclared() bool { return m.CloseResult != ResultPending }

// Session indica a metade do ciclo diário (Open/Close) a que a aposta se aplica.
// SessionNone serializa como null.
type Session string

const (
	SessionNone  Session = ""
	SessionOpen  Session = "Open"
	SessionClose Session = "Close"
)

// ParseSession aceita "open"/"close" em qualquer caixa; vazio vira SessionNone.
func ParseSession(s string) (Session, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SessionNone, true
	case "open":
		return SessionOpen, true
	case "close":
		return SessionClose, true
	}
	return SessionNone, false
}

func (s Session) MarshalJSON() ([]byte, error) {
	if s == SessionNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *Session) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = SessionNone
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Session(v)
	return nil
}

// Wallet é o saldo em cache do usuário; a verdade está no backend.
type Wallet struct {
	Balance decimal.Decimal `json:"balance"`
}

// BetEntry é uma linha do bilhete pendente. BetType é copiado (snapshot), não referenciado.
type BetEntry struct {
	Number   string          `json:"matkaBetNumber"`
	Amount   decimal.Decimal `json:"betAmount"`
	BetType  BetType         `json:"matkaBetType"`
	Session  Session         `json:"betTime"`
	Status   string          `json:"status"`
	MarketID string          `json:"market_id"`
	User     string          `json:"user,omitempty"`
}

// BetRecord é uma aposta histórica já gravada no backend, eventualmente liquidada.
type BetRecord struct {
	BetEntry
	IsWinner              bool       `json:"isWinner"`
	ResultDeclared        bool       `json:"resultDeclared"`
	ResultDeclarationTime *time.Time `json:"resultDeclarationTime,omitempty"`
	BetPlacedTiming       *time.Time `json:"betPlacedTiming,omitempty"`
}
