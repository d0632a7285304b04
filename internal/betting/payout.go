package betting

import "github.com/shopspring/decimal"

// Payout é amount * multiplier da modalidade gravada na entrada.
func Payout(e BetEntry) decimal.Decimal {
	return e.Amount.Mul(e.BetType.Multiplier)
}

// WinningAmount só vale para apostas já liquidadas como vencedoras pelo backend;
// caso contrário devolve zero. Usado apenas em telas de histórico/extrato.
func WinningAmount(r BetRecord) decimal.Decimal {
	if !r.IsWinner || !r.ResultDeclared {
		return decimal.Zero
	}
	return Payout(r.BetEntry)
}
