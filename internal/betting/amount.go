package betting

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Limites da forma textual de um valor em rúpias: até 2 casas decimais e parte
// inteira de no máximo MaxAmountDigits dígitos. Sem sinal, sem expoente.
const (
	MaxAmountDigits   = 9
	MaxAmountDecimals = 2
)

var errAmountFormat = errors.New("amount must be plain decimal rupees")

// ParseAmount converte o valor digitado para decimal. Aceita só "123" ou "123.45";
// notação científica ("1e9"), sinais e zero são recusados com KindInvalidAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, WrapError(KindInvalidAmount, msgInvalidAmount, err)
	}
	return d, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	whole, frac, hasDot := strings.Cut(s, ".")
	if !allDigits(whole) || len(whole) > MaxAmountDigits {
		return decimal.Zero, errAmountFormat
	}
	if hasDot && (!allDigits(frac) || len(frac) > MaxAmountDecimals) {
		return decimal.Zero, errAmountFormat
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, errAmountFormat
	}
	return d, nil
}
