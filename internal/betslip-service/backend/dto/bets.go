package dto

import (
	"encoding/json"
	"time"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

type BetType struct {
	ID          int    `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Multiplier  Number `json:"multiplier"`
}

// BetDetail é uma aposta no formato gravado em user.betDetails.
type BetDetail struct {
	Number                string          `json:"matkaBetNumber"`
	Amount                Number          `json:"betAmount"`
	BetType               BetType         `json:"matkaBetType"`
	Session               betting.Session `json:"betTime"`
	Status                string          `json:"status"`
	MarketID              string          `json:"market_id"`
	User                  string          `json:"user,omitempty"`
	IsWinner              bool            `json:"isWinner"`
	ResultDeclared        bool            `json:"resultDeclared"`
	ResultDeclarationTime *time.Time      `json:"resultDeclarationTime,omitempty"`
	BetPlacedTiming       *time.Time      `json:"betPlacedTiming,omitempty"`
}

func FromRecord(r betting.BetRecord) BetDetail {
	return BetDetail{
		Number:  r.Number,
		Amount:  NewNumber(r.Amount),
		BetType: BetType{
			ID:          int(r.BetType.ID),
			Category:    r.BetType.Category,
			Description: r.BetType.Description,
			Multiplier:  NewNumber(r.BetType.Multiplier),
		},
		Session:               r.Session,
		Status:                r.Status,
		MarketID:              r.MarketID,
		User:                  r.User,
		IsWinner:              r.IsWinner,
		ResultDeclared:        r.ResultDeclared,
		ResultDeclarationTime: r.ResultDeclarationTime,
		BetPlacedTiming:       r.BetPlacedTiming,
	}
}

// CommitBetsRequest é o corpo de PUT /user/{id}: lista completa + saldo novo.
// Os itens antigos vão byte a byte como vieram do GET.
type CommitBetsRequest struct {
	BetDetails []json.RawMessage `json:"betDetails"`
	Wallet     Number            `json:"wallet"`
}

type FundRequestsBody struct {
	TransactionRequest []json.RawMessage `json:"transactionRequest"`
}

type WithdrawalsBody struct {
	WithdrawalRequest []json.RawMessage `json:"withdrawalRequest"`
}
