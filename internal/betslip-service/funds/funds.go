package funds

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend/dto"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/session"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/validation"
)

var (
	MinWithdrawal = decimal.NewFromInt(100)
	MaxWithdrawal = decimal.NewFromInt(100000)
)

const (
	msgInvalidAmount     = "Please enter a valid amount"
	msgInvalidUTR        = "Please enter a valid 12-digit UTR number"
	msgDuplicateUTR      = "This UTR number has already been used"
	msgWithdrawalRange   = "Withdrawal amount must be between ₹100 and ₹100000"
	msgInsufficient      = "Insufficient wallet balance"
	msgPendingWithdrawal = "You already have a pending withdrawal request"
	msgPayoutDetails     = "Please enter bank account details or a UPI ID"
	msgInvalidAccount    = "Please enter a valid account number (9-18 digits)"
	msgAccountMismatch   = "Account numbers do not match"
	msgInvalidIFSC       = "Please enter a valid IFSC code"
	msgInvalidName       = "Please enter a valid account holder name"
	msgInvalidUPI        = "Please enter a valid UPI ID"
	msgBankPending       = "Your bank details are under verification. Please wait for approval."
	msgFundFallback      = "Failed to submit request"
	msgBankFallback      = "Failed to save bank details"
)

var (
	fundMsgs = validation.Messages{
		"UTR": msgInvalidUTR,
	}
	payoutMsgs = validation.Messages{
		"AccountNumber":     msgInvalidAccount,
		"IFSCCode":          msgInvalidIFSC,
		"AccountHolderName": msgInvalidName,
		"UPIID":             msgInvalidUPI,
	}
	bankMsgs = validation.Messages{
		"AccountNumber":        msgInvalidAccount,
		"ConfirmAccountNumber": msgAccountMismatch,
		"IFSCCode":             msgInvalidIFSC,
		"AccountHolderName":    msgInvalidName,
		"UPIID":                msgInvalidUPI,
	}
)

type Backend interface {
	GetUser(ctx context.Context, id string) (dto.User, error)
	UpdateUser(ctx context.Context, id string, body any) (dto.User, error)
	SubmitFundRequest(ctx context.Context, u dto.User, req dto.FundRequest) error
	SubmitWithdrawal(ctx context.Context, u dto.User, w dto.Withdrawal) error
}

type Service struct {
	Log     *zap.Logger
	Backend Backend
	Store   session.Store
	Now     func() time.Time
}

func NewService(log *zap.Logger, b Backend, st session.Store) *Service {
	return &Service{Log: log, Backend: b, Store: st, Now: time.Now}
}

type FundInput struct {
	Amount string `json:"amount"`
	UTR    string `json:"utrNumber" validate:"len=12,number"`
}

// WithdrawalInput sem conta nem UPI usa os dados bancários salvos (se aprovados).
type WithdrawalInput struct {
	Amount            string `json:"amount"`
	AccountNumber     string `json:"accountNumber,omitempty" validate:"omitempty,number,min=9,max=18"`
	IFSCCode          string `json:"ifscCode,omitempty" validate:"required_with=AccountNumber,ifsc"`
	AccountHolderName string `json:"accountHolderName,omitempty" validate:"required_with=AccountNumber,holder"`
	UPIID             string `json:"upiId,omitempty" validate:"upi"`
}

type BankDetailsInput struct {
	AccountNumber        string `json:"accountNumber" validate:"required,number,min=9,max=18"`
	ConfirmAccountNumber string `json:"confirmAccountNumber" validate:"eqfield=AccountNumber"`
	IFSCCode             string `json:"ifscCode" validate:"required,ifsc"`
	AccountHolderName    string `json:"accountHolderName" validate:"required,holder"`
	UPIID                string `json:"upiId" validate:"required,upi"`
}

// AddFund registra um depósito pendente identificado pelo UTR do pagamento.
func (s *Service) AddFund(ctx context.Context, userID string, in FundInput) (dto.FundRequest, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return dto.FundRequest{}, err
	}
	in.UTR = strings.TrimSpace(in.UTR)
	if msg := validation.Violation(in, fundMsgs); msg != "" {
		return dto.FundRequest{}, betting.NewError(betting.KindInvalidRequest, msg)
	}

	u, err := s.Backend.GetUser(ctx, userID)
	if err != nil {
		return dto.FundRequest{}, backend.Classify(err, msgFundFallback)
	}
	for _, r := range u.TransactionRequests {
		if r.UTRNumber == in.UTR {
			return dto.FundRequest{}, betting.NewError(betting.KindDuplicateReference, msgDuplicateUTR)
		}
	}

	req := dto.FundRequest{
		Amount:      dto.NewNumber(amount),
		Status:      betting.StatusPending,
		RequestTime: s.Now().UTC(),
		UTRNumber:   in.UTR,
		Username:    u.Username,
	}
	if err := s.Backend.SubmitFundRequest(ctx, withID(u, userID), req); err != nil {
		return dto.FundRequest{}, backend.Classify(err, msgFundFallback)
	}
	s.Log.Info("fund request submitted", zap.String("userId", userID), zap.String("amount", amount.String()))
	return req, nil
}

// Withdraw registra um saque pendente. Aceita conta bancária (conta+IFSC+titular) ou UPI.
func (s *Service) Withdraw(ctx context.Context, userID string, in WithdrawalInput) (dto.Withdrawal, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return dto.Withdrawal{}, err
	}
	if amount.LessThan(MinWithdrawal) || amount.GreaterThan(MaxWithdrawal) {
		return dto.Withdrawal{}, betting.NewError(betting.KindInvalidAmount, msgWithdrawalRange)
	}
	in = normalizePayout(in)
	if msg := validation.Violation(in, payoutMsgs); msg != "" {
		return dto.Withdrawal{}, betting.NewError(betting.KindInvalidRequest, msg)
	}

	u, err := s.Backend.GetUser(ctx, userID)
	if err != nil {
		return dto.Withdrawal{}, backend.Classify(err, msgFundFallback)
	}
	w, err := payout(in, u.BankDetails)
	if err != nil {
		return dto.Withdrawal{}, err
	}
	if amount.GreaterThan(u.Wallet.Decimal) {
		return dto.Withdrawal{}, betting.NewError(betting.KindInsufficientBalance, msgInsufficient)
	}
	for _, r := range u.WithdrawalRequests {
		if r.Status == betting.StatusPending {
			return dto.Withdrawal{}, betting.NewError(betting.KindPendingWithdrawal, msgPendingWithdrawal)
		}
	}

	w.Amount = dto.NewNumber(amount)
	w.Status = betting.StatusPending
	w.RequestTime = s.Now().UTC()
	w.Username = u.Username

	u = withID(u, userID)
	if err := s.Backend.SubmitWithdrawal(ctx, u, w); err != nil {
		return dto.Withdrawal{}, backend.Classify(err, msgFundFallback)
	}

	s.refreshWallet(ctx, u)
	s.Log.Info("withdrawal submitted", zap.String("userId", userID), zap.String("amount", amount.String()))
	return w, nil
}

// SaveBankDetails grava os dados de saque no usuário, sempre como não aprovados.
func (s *Service) SaveBankDetails(ctx context.Context, userID string, in BankDetailsInput) (dto.BankDetails, error) {
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.ConfirmAccountNumber = strings.TrimSpace(in.ConfirmAccountNumber)
	in.IFSCCode = strings.ToUpper(strings.TrimSpace(in.IFSCCode))
	in.AccountHolderName = strings.TrimSpace(in.AccountHolderName)
	in.UPIID = strings.TrimSpace(in.UPIID)
	if msg := validation.Violation(in, bankMsgs); msg != "" {
		return dto.BankDetails{}, betting.NewError(betting.KindInvalidRequest, msg)
	}

	now := s.Now().UTC()
	bd := dto.BankDetails{
		AccountNumber:     in.AccountNumber,
		IFSCCode:          in.IFSCCode,
		AccountHolderName: in.AccountHolderName,
		UPIID:             in.UPIID,
		SubmittedAt:       &now,
	}
	if _, err := s.Backend.UpdateUser(ctx, userID, dto.BankDetailsUpdate{BankDetails: bd}); err != nil {
		return dto.BankDetails{}, backend.Classify(err, msgBankFallback)
	}
	s.Log.Info("bank details submitted", zap.String("userId", userID))
	return bd, nil
}

// BankDetails devolve os dados salvos; ok=false quando o usuário ainda não enviou.
func (s *Service) BankDetails(ctx context.Context, userID string) (dto.BankDetails, bool, error) {
	u, err := s.Backend.GetUser(ctx, userID)
	if err != nil {
		return dto.BankDetails{}, false, backend.Classify(err, msgFundFallback)
	}
	if u.BankDetails == nil || u.BankDetails.AccountNumber == "" {
		return dto.BankDetails{}, false, nil
	}
	return *u.BankDetails, true, nil
}

// aproveita o GET para atualizar a carteira em cache
func (s *Service) refreshWallet(ctx context.Context, u dto.User) {
	if s.Store == nil {
		return
	}
	cached, ok, err := session.LoadUser(ctx, s.Store, u.ID)
	if err != nil || !ok {
		return
	}
	cached.Wallet = u.Wallet.Decimal
	if err := session.SaveUser(ctx, s.Store, cached); err != nil {
		s.Log.Warn("wallet cache update failed", zap.String("userId", u.ID), zap.Error(err))
	}
}

func withID(u dto.User, id string) dto.User {
	if u.ID == "" {
		u.ID = id
	}
	return u
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := betting.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, betting.WrapError(betting.KindInvalidAmount, msgInvalidAmount, err)
	}
	return amount, nil
}

func normalizePayout(in WithdrawalInput) WithdrawalInput {
	in.UPIID = strings.TrimSpace(in.UPIID)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if in.AccountNumber == "" {
		in.IFSCCode, in.AccountHolderName = "", ""
		return in
	}
	in.IFSCCode = strings.ToUpper(strings.TrimSpace(in.IFSCCode))
	in.AccountHolderName = strings.TrimSpace(in.AccountHolderName)
	return in
}

// payout monta o destino do saque: o informado agora ou, na falta, o salvo.
func payout(in WithdrawalInput, saved *dto.BankDetails) (dto.Withdrawal, error) {
	if in.AccountNumber != "" || in.UPIID != "" {
		return dto.Withdrawal{
			AccountNumber:     in.AccountNumber,
			IFSCCode:          in.IFSCCode,
			AccountHolderName: in.AccountHolderName,
			UPIID:             in.UPIID,
		}, nil
	}
	if saved == nil || saved.AccountNumber == "" {
		return dto.Withdrawal{}, betting.NewError(betting.KindInvalidRequest, msgPayoutDetails)
	}
	if !saved.IsApproved {
		return dto.Withdrawal{}, betting.NewError(betting.KindInvalidRequest, msgBankPending)
	}
	return dto.Withdrawal{
		AccountNumber:     saved.AccountNumber,
		IFSCCode:          saved.IFSCCode,
		AccountHolderName: saved.AccountHolderName,
		UPIID:             saved.UPIID,
	}, nil
}
