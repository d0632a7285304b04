package dto

import (
	"encoding/json"
	"time"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

// User é o registro do usuário no backend (carteira, apostas e pedidos).
//
// As listas tipadas são só para leitura. Os Raw* guardam cada item como veio do
// backend (_id, winningAmount, campos do admin) e são eles que voltam no PUT.
type User struct {
	ID                  string              `json:"_id"`
	Username            string              `json:"username"`
	MobileNumber        string              `json:"mobileNumber"`
	MPin                string              `json:"mPin,omitempty"`
	Wallet              Number              `json:"wallet"`
	BetDetails          []betting.BetRecord `json:"betDetails"`
	TransactionRequests []FundRequest       `json:"transactionRequest"`
	WithdrawalRequests  []Withdrawal        `json:"withdrawalRequest"`
	BankDetails         *BankDetails        `json:"bankDetails,omitempty"`

	RawBetDetails          []json.RawMessage `json:"-"`
	RawTransactionRequests []json.RawMessage `json:"-"`
	RawWithdrawalRequests  []json.RawMessage `json:"-"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var raw struct {
		BetDetails          []json.RawMessage `json:"betDetails"`
		TransactionRequests []json.RawMessage `json:"transactionRequest"`
		WithdrawalRequests  []json.RawMessage `json:"withdrawalRequest"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = User(p)
	u.RawBetDetails = raw.BetDetails
	u.RawTransactionRequests = raw.TransactionRequests
	u.RawWithdrawalRequests = raw.WithdrawalRequests
	return nil
}

// CreateUserRequest é o corpo de POST /user. O backend usa mPin também como senha.
type CreateUserRequest struct {
	Username            string        `json:"username"`
	MobileNumber        string        `json:"mobileNumber"`
	Password            string        `json:"password"`
	MPin                string        `json:"mPin"`
	Wallet              Number        `json:"wallet"`
	TransactionRequests []FundRequest `json:"transactionRequest"`
	BetDetails          []BetDetail   `json:"betDetails"`
	WithdrawalRequests  []Withdrawal  `json:"withdrawalRequest"`
}

// ProfileUpdate é o corpo parcial de PUT /user/{id} na edição de perfil.
type ProfileUpdate struct {
	Username string `json:"username"`
	MPin     string `json:"mPin"`
}

// UserEnvelope é a resposta do PUT /user/{id}: {"message": ..., "user": {...}}.
type UserEnvelope struct {
	Message string `json:"message,omitempty"`
	User    User   `json:"user"`
}

// BankDetails são os dados de saque salvos no usuário; o admin aprova.
type BankDetails struct {
	AccountNumber     string     `json:"accountNumber"`
	IFSCCode          string     `json:"ifscCode"`
	AccountHolderName string     `json:"accountHolderName"`
	UPIID             string     `json:"upiId,omitempty"`
	IsApproved        bool       `json:"isApproved"`
	SubmittedAt       *time.Time `json:"submittedAt,omitempty"`
}

type BankDetailsUpdate struct {
	BankDetails BankDetails `json:"bankDetails"`
}

// FundRequest é um pedido de depósito (UTR) aguardando aprovação.
type FundRequest struct {
	Amount      Number    `json:"amount"`
	Status      string    `json:"status"`
	RequestTime time.Time `json:"requestTime"`
	UTRNumber   string    `json:"utrNumber"`
	Username    string    `json:"username"`
}

// Withdrawal é um pedido de saque.
type Withdrawal struct {
	Amount            Number    `json:"amount"`
	Status            string    `json:"status"`
	RequestTime       time.Time `json:"requestTime"`
	AccountNumber     string    `json:"accountNumber,omitempty"`
	IFSCCode          string    `json:"ifscCode,omitempty"`
	AccountHolderName string    `json:"accountHolderName,omitempty"`
	UPIID             string    `json:"upiId,omitempty"`
	Username          string    `json:"username"`
}

// AppendRaw devolve uma cópia de existing com os items serializados no fim.
// Nunca devolve nil, para a lista sair como [] e não null.
func AppendRaw(existing []json.RawMessage, items ...any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(existing)+len(items))
	out = append(out, existing...)
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
