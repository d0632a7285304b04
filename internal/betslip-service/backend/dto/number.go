package dto

import (
	"github.com/shopspring/decimal"
)

// Number é um decimal que trafega como número JSON (sem aspas), como o backend
// grava carteira e valores. Aceita número ou string na leitura.
type Number struct {
	decimal.Decimal
}

func NewNumber(d decimal.Decimal) Number { return Number{Decimal: d} }

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	return n.Decimal.UnmarshalJSON(b)
}
