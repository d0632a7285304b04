package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend/dto"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/session"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
	"github.com/sourabh07032000/kalyan-userside-app/internal/shared/validation"
)

// SignupBonus é o saldo inicial de uma conta nova.
var SignupBonus = decimal.NewFromInt(200)

const (
	msgInvalidMobile   = "Please enter a valid 10-digit mobile number"
	msgInvalidMPin     = "MPIN must be exactly 4 digits"
	msgInvalidUsername = "Please enter a username"
	msgUserExists      = "User already exists with this username or mobile number"
	msgUserNotFound    = "User not found. Please sign up first"
	msgInvalidOTP      = "Please enter a valid 4-digit OTP"
	msgOTPRejected     = "Invalid OTP. Please try again"
	msgProfileEmpty    = "Username and MPIN cannot be empty"
	msgProfileMPin     = "MPIN must be 4 digits"
	msgUnlockMPin      = "Please enter a valid 4-digit MPIN"
	msgWrongMPin       = "Invalid MPIN"
	msgProfileFallback = "Failed to update profile"
	msgFallback        = "Something went wrong. Please try again"
)

var (
	signupMsgs = validation.Messages{
		"Username":     msgInvalidUsername,
		"MobileNumber": msgInvalidMobile,
		"MPin":         msgInvalidMPin,
	}
	loginMsgs  = validation.Messages{"MobileNumber": msgInvalidMobile}
	verifyMsgs = validation.Messages{
		"MobileNumber": msgInvalidMobile,
		"OTP":          msgInvalidOTP,
	}
	profileMsgs = validation.Messages{
		"Username.required": msgProfileEmpty,
		"Username":          msgInvalidUsername,
		"MPin.required":     msgProfileEmpty,
		"MPin":              msgProfileMPin,
	}
	unlockMsgs = validation.Messages{"MPin": msgUnlockMPin}
)

type Backend interface {
	GetUser(ctx context.Context, id string) (dto.User, error)
	ListUsers(ctx context.Context) ([]dto.User, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (dto.User, error)
	UpdateUser(ctx context.Context, id string, body any) (dto.User, error)
	SendOTP(ctx context.Context, mobile string) (string, error)
	ValidateOTP(ctx context.Context, mobile, verificationID, otp string) (bool, error)
}

type Service struct {
	Log      *zap.Logger
	Backend  Backend
	Store    session.Store
	NewToken func() string
}

func NewService(log *zap.Logger, b Backend, st session.Store) *Service {
	return &Service{Log: log, Backend: b, Store: st, NewToken: uuid.NewString}
}

type SignupInput struct {
	Username     string `json:"username" validate:"required,max=50"`
	MobileNumber string `json:"mobileNumber" validate:"len=10,number"`
	MPin         string `json:"mPin" validate:"len=4,number"`
}

type LoginInput struct {
	MobileNumber string `json:"mobileNumber" validate:"len=10,number"`
}

// Challenge não revela o usuário: a identidade só sai depois do OTP.
type Challenge struct {
	VerificationID string `json:"verificationId"`
}

type VerifyInput struct {
	MobileNumber   string `json:"mobileNumber" validate:"len=10,number"`
	VerificationID string `json:"verificationId"`
	OTP            string `json:"otp" validate:"len=4,number"`
}

// Session é o que o login devolve. Token vai no header Authorization: Bearer.
type Session struct {
	Token string           `json:"token"`
	User  session.UserData `json:"user"`
}

type ProfileInput struct {
	Username string `json:"username" validate:"required,max=50"`
	MPin     string `json:"mPin" validate:"required,len=4,number"`
}

type UnlockInput struct {
	MPin string `json:"mPin" validate:"len=4,number"`
}

func invalid(msg string) error { return betting.NewError(betting.KindInvalidRequest, msg) }

func (s *Service) Signup(ctx context.Context, in SignupInput) (session.UserData, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	if msg := validation.Violation(in, signupMsgs); msg != "" {
		return session.UserData{}, invalid(msg)
	}

	users, err := s.Backend.ListUsers(ctx)
	if err != nil {
		return session.UserData{}, backend.Classify(err, msgFallback)
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, in.Username) || u.MobileNumber == in.MobileNumber {
			return session.UserData{}, betting.NewError(betting.KindDuplicateReference, msgUserExists)
		}
	}

	created, err := s.Backend.CreateUser(ctx, dto.CreateUserRequest{
		Username:            in.Username,
		MobileNumber:        in.MobileNumber,
		Password:            in.MPin,
		MPin:                in.MPin,
		Wallet:              dto.NewNumber(SignupBonus),
		TransactionRequests: []dto.FundRequest{},
		BetDetails:          []dto.BetDetail{},
		WithdrawalRequests:  []dto.Withdrawal{},
	})
	if err != nil {
		return session.UserData{}, backend.Classify(err, msgFallback)
	}
	s.Log.Info("user signed up", zap.String("userId", created.ID))
	return toUserData(created), nil
}

// Login localiza o usuário pelo celular e dispara o OTP.
func (s *Service) Login(ctx context.Context, in LoginInput) (Challenge, error) {
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	if msg := validation.Violation(in, loginMsgs); msg != "" {
		return Challenge{}, invalid(msg)
	}
	if _, err := s.findByMobile(ctx, in.MobileNumber); err != nil {
		return Challenge{}, err
	}
	vid, err := s.Backend.SendOTP(ctx, in.MobileNumber)
	if err != nil {
		return Challenge{}, backend.Classify(err, msgFallback)
	}
	return Challenge{VerificationID: vid}, nil
}

// Verify valida o OTP, grava o snapshot do usuário na sessão e emite o token.
func (s *Service) Verify(ctx context.Context, in VerifyInput) (Session, error) {
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.OTP = strings.TrimSpace(in.OTP)
	if msg := validation.Violation(in, verifyMsgs); msg != "" {
		return Session{}, invalid(msg)
	}

	ok, err := s.Backend.ValidateOTP(ctx, in.MobileNumber, in.VerificationID, in.OTP)
	if err != nil {
		return Session{}, backend.Classify(err, msgOTPRejected)
	}
	if !ok {
		return Session{}, betting.NewError(betting.KindBackendRejection, msgOTPRejected)
	}

	u, err := s.findByMobile(ctx, in.MobileNumber)
	if err != nil {
		return Session{}, err
	}
	ud := toUserData(u)
	if err := session.SaveUser(ctx, s.Store, ud); err != nil {
		return Session{}, err
	}
	token := s.NewToken()
	if err := session.SaveToken(ctx, s.Store, token, ud.ID); err != nil {
		return Session{}, err
	}
	s.Log.Info("user logged in", zap.String("userId", ud.ID))
	return Session{Token: token, User: ud}, nil
}

// Resolve devolve o usuário dono do token.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	userID, ok, err := session.ResolveToken(ctx, s.Store, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", betting.NewError(betting.KindUnauthorized, "Please login again")
	}
	return userID, nil
}

// Logout invalida o token e apaga a sessão do usuário.
func (s *Service) Logout(ctx context.Context, token, userID string) error {
	if err := session.DeleteToken(ctx, s.Store, token); err != nil {
		return err
	}
	return session.Clear(ctx, s.Store, userID)
}

// UpdateProfile troca nome de usuário e MPIN e atualiza o snapshot da sessão.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (session.UserData, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.MPin = strings.TrimSpace(in.MPin)
	if msg := validation.Violation(in, profileMsgs); msg != "" {
		return session.UserData{}, invalid(msg)
	}

	u, err := s.Backend.UpdateUser(ctx, userID, dto.ProfileUpdate{Username: in.Username, MPin: in.MPin})
	if err != nil {
		return session.UserData{}, backend.Classify(err, msgProfileFallback)
	}
	ud, err := s.mergeSession(ctx, userID, u)
	if err != nil {
		return session.UserData{}, err
	}
	ud.Username = in.Username
	if err := session.SaveUser(ctx, s.Store, ud); err != nil {
		return session.UserData{}, err
	}
	s.Log.Info("profile updated", zap.String("userId", userID))
	return ud, nil
}

// Unlock confere o MPIN de uma sessão já aberta contra o cadastro no backend.
func (s *Service) Unlock(ctx context.Context, userID string, in UnlockInput) (session.UserData, error) {
	in.MPin = strings.TrimSpace(in.MPin)
	if msg := validation.Violation(in, unlockMsgs); msg != "" {
		return session.UserData{}, invalid(msg)
	}
	u, err := s.Backend.GetUser(ctx, userID)
	if err != nil {
		return session.UserData{}, backend.Classify(err, msgFallback)
	}
	if u.MPin == "" || u.MPin != in.MPin {
		s.Log.Debug("mpin mismatch", zap.String("userId", userID))
		return session.UserData{}, betting.NewError(betting.KindUnauthorized, msgWrongMPin)
	}
	ud, err := s.mergeSession(ctx, userID, u)
	if err != nil {
		return session.UserData{}, err
	}
	if err := session.SaveUser(ctx, s.Store, ud); err != nil {
		return session.UserData{}, err
	}
	return ud, nil
}

// mergeSession aplica o que o backend devolveu sobre o snapshot da sessão.
func (s *Service) mergeSession(ctx context.Context, userID string, u dto.User) (session.UserData, error) {
	ud, _, err := session.LoadUser(ctx, s.Store, userID)
	if err != nil {
		return session.UserData{}, err
	}
	ud.ID = userID
	if u.ID == "" {
		return ud, nil // resposta sem o registro
	}
	ud.Username, ud.MobileNumber, ud.Wallet = u.Username, u.MobileNumber, u.Wallet.Decimal
	return ud, nil
}

func (s *Service) findByMobile(ctx context.Context, mobile string) (dto.User, error) {
	users, err := s.Backend.ListUsers(ctx)
	if err != nil {
		return dto.User{}, backend.Classify(err, msgFallback)
	}
	for _, u := range users {
		if u.MobileNumber == mobile {
			return u, nil
		}
	}
	return dto.User{}, invalid(msgUserNotFound)
}

func toUserData(u dto.User) session.UserData {
	return session.UserData{ID: u.ID, Username: u.Username, MobileNumber: u.MobileNumber, Wallet: u.Wallet.Decimal}
}
