package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketEntry é uma linha do bilhete confirmado, já no formato canônico.
type TicketEntry struct {
	Number     string          `json:"number"`
	BetTypeID  int             `json:"bet_type_id"`
	Category   string          `json:"category"`
	Session    string          `json:"session,omitempty"` // "Open" | "Close" | ""
	Amount     decimal.Decimal `json:"amount"`
	Multiplier decimal.Decimal `json:"multiplier"`
	MarketID   string          `json:"market_id"`
}

// Evento emitido pelo betslip-service depois que o backend aceitou o bilhete.
type TicketConfirmed struct {
	TicketID         string          `json:"ticket_id"`
	UserID           string          `json:"user_id"`
	Entries          []TicketEntry   `json:"entries"`
	TotalStake       decimal.Decimal `json:"total_stake"`
	PreviousBalance  decimal.Decimal `json:"previous_balance"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
	ConfirmedAt      time.Time       `json:"confirmed_at"`
}
