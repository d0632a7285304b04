package betting

import "strings"

// Input é a entrada candidata digitada pelo usuário, com o contexto explícito
// (mercado, modalidade, carteira) em vez de estado global.
type Input struct {
	Number  string
	Amount  string
	BetType BetType
	Session Session
	Market  Market
	Wallet  Wallet
	User    string
}

// ValidateEntry valida uma entrada antes de ela entrar no bilhete. A primeira falha
// vence, na ordem: número, sessão ausente, sessão fechada, valor, mínimo, saldo.
// Não tem efeitos colaterais; cabe ao chamador anexar a entrada ao bilhete.
func ValidateEntry(in Input) (BetEntry, error) {
	if !in.BetType.ID.Valid() {
		return BetEntry{}, NewError(KindInvalidRequest, msgUnknownBetType)
	}

	number, err := CanonicalNumber(in.BetType.ID, in.Number)
	if err != nil {
		return BetEntry{}, err
	}

	session := SessionNone
	if in.BetType.ID.RequiresSession() {
		if in.Session != SessionOpen && in.Session != SessionClose {
			return BetEntry{}, NewError(KindMissingSession, msgMissingSession)
		}
		session = in.Session
	}

	if !IsSessionOpen(in.Market, in.BetType, session) {
		return BetEntry{}, NewError(KindMarketClosed, closedMessage(in.BetType, session))
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return BetEntry{}, err
	}
	if amount.LessThan(MinStake) {
		return BetEntry{}, NewError(KindBelowMinimum, msgBelowMinimum)
	}
	if amount.GreaterThan(in.Wallet.Balance) {
		return BetEntry{}, NewError(KindInsufficientBalance, msgInsufficientBalance)
	}

	return BetEntry{
		Number:   number,
		Amount:   amount,
		BetType:  in.BetType,
		Session:  session,
		Status:   StatusPending,
		MarketID: in.Market.ID,
		User:     in.User,
	}, nil
}

// CanonicalNumber aplica a regra de largura da modalidade e devolve o número
// com zeros à esquerda (Jodi "7" -> "07"). Sangam usa "d-ppp".
func CanonicalNumber(id BetTypeID, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", NewError(KindInvalidNumber, msgEmptyNumber)
	}

	switch id {
	case SingleDigit:
		if len(s) == 1 && allDigits(s) {
			return s, nil
		}
		return "", NewError(KindInvalidNumber, msgInvalidSingleDigit)
	case JodiDigit:
		if len(s) <= 2 && allDigits(s) {
			return leftPad(s, 2), nil
		}
		return "", NewError(KindInvalidNumber, msgInvalidJodi)
	case SinglePanna, DoublePanna, TriplePanna:
		if len(s) == 3 && allDigits(s) {
			return s, nil
		}
		return "", NewError(KindInvalidNumber, msgInvalidPanna)
	case HalfSangam, FullSangam:
		digit, panna, ok := strings.Cut(s, "-")
		digit, panna = strings.TrimSpace(digit), strings.TrimSpace(panna)
		if ok && len(digit) == 1 && allDigits(digit) && len(panna) == 3 && allDigits(panna) {
			return digit + "-" + panna, nil
		}
		return "", NewError(KindInvalidNumber, msgInvalidSangam)
	}
	return "", NewError(KindInvalidRequest, msgUnknownBetType)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
