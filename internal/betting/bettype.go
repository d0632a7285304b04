package betting

import "github.com/shopspring/decimal"

type BetTypeID int

const (
	SingleDigit BetTypeID = iota + 1
	JodiDigit
	SinglePanna
	DoublePanna
	TriplePanna
	HalfSangam
	FullSangam
)

func (id BetTypeID) Valid() bool { return id >= SingleDigit && id <= FullSangam }

// RequiresSession indica se a entrada precisa de Open/Close escolhido pelo usuário.
func (id BetTypeID) RequiresSession() bool {
	switch id {
	case SinglePanna, DoublePanna, TriplePanna, HalfSangam:
		return true
	}
	return false
}

// BetType é uma entrada do catálogo de modalidades.
type BetType struct {
	ID          BetTypeID       `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Multiplier  decimal.Decimal `json:"multiplier"`
}

var catalog = []BetType{
	{ID: SingleDigit, Category: "Single Digit", Description: "10 ka 95", Multiplier: decimal.RequireFromString("9.5")},
	{ID: JodiDigit, Category: "Jodi Digit", Description: "10 ka 950", Multiplier: decimal.NewFromInt(95)},
	{ID: SinglePanna, Category: "Single Panna", Description: "10 ka 1400", Multiplier: decimal.NewFromInt(140)},
	{ID: DoublePanna, Category: "Double Panna", Description: "10 ka 2800", Multiplier: decimal.NewFromInt(280)},
	{ID: TriplePanna, Category: "Triple Panna", Description: "10 ka 7000", Multiplier: decimal.NewFromInt(700)},
	{ID: HalfSangam, Category: "Half Sangam", Description: "10 ka 10000", Multiplier: decimal.NewFromInt(1000)},
	{ID: FullSangam, Category: "Full Sangam", Description: "10 ka 100000", Multiplier: decimal.NewFromInt(10000)},
}

// Catalog devolve uma cópia do catálogo, em ordem de id.
func Catalog() []BetType {
	out := make([]BetType, len(catalog))
	copy(out, catalog)
	return out
}

func LookupBetType(id BetTypeID) (BetType, bool) {
	if !id.Valid() {
		return BetType{}, false
	}
	return catalog[id-1], true
}
