package betting

import "errors"

// Kind classifica falhas de validação (recuperáveis na entrada) e de confirmação.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidNumber
	KindMissingSession
	KindMarketClosed
	KindInvalidAmount
	KindBelowMinimum
	KindInsufficientBalance
	KindNetworkFailure
	KindBackendRejection
	KindInvalidRequest
	KindEmptyTicket
	KindPendingWithdrawal
	KindDuplicateReference
	KindUnauthorized
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindInvalidNumber:       "invalid_number",
	KindMissingSession:      "missing_session",
	KindMarketClosed:        "market_closed",
	KindInvalidAmount:       "invalid_amount",
	KindBelowMinimum:        "below_minimum",
	KindInsufficientBalance: "insufficient_balance",
	KindNetworkFailure:      "network_failure",
	KindBackendRejection:    "backend_rejection",
	KindInvalidRequest:      "invalid_request",
	KindEmptyTicket:         "empty_ticket",
	KindPendingWithdrawal:   "pending_withdrawal",
	KindDuplicateReference:  "duplicate_reference",
	KindUnauthorized:        "unauthorized",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return kindNames[KindUnknown]
}

// Error carrega o tipo da falha e a mensagem exibida ao usuário.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// WrapError anexa a causa original (ex.: erro HTTP) preservando a mensagem ao usuário.
func WrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf devolve o Kind de err, ou KindUnknown se err não for um *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Mensagens exibidas ao usuário
const (
	msgEmptyNumber         = "Please enter a number"
	msgInvalidSingleDigit  = "Please enter a valid digit between 0-9"
	msgInvalidJodi         = "Please enter a valid number between 00-99"
	msgInvalidPanna        = "Please enter a valid 3-digit number"
	msgInvalidSangam       = "Please enter a valid combination (digit-panna, e.g. 5-123)"
	msgMissingSession      = "Please select session (Open/Close)"
	msgOpenDeclared        = "Open market result is already declared"
	msgCloseDeclared       = "Close market result is already declared"
	msgMarketDeclared      = "Market result is already declared"
	msgInvalidAmount       = "Please enter a valid bet amount"
	msgBelowMinimum        = "Minimum bet amount is ₹10"
	msgInsufficientBalance = "Insufficient wallet balance"
	msgUnknownBetType      = "Unknown bet type"
)
