package session

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

// UserData é o snapshot do usuário + carteira guardado após o login.
type UserData struct {
	ID           string          `json:"_id"`
	Username     string          `json:"username"`
	MobileNumber string          `json:"mobileNumber"`
	Wallet       decimal.Decimal `json:"wallet"`
}

func (u UserData) WalletSnapshot() betting.Wallet { return betting.Wallet{Balance: u.Wallet} }

func LoadUser(ctx context.Context, s Store, userID string) (UserData, bool, error) {
	var u UserData
	ok, err := s.Get(ctx, userID, KeyUserData, &u)
	return u, ok, err
}

func SaveUser(ctx context.Context, s Store, u UserData) error {
	return s.Set(ctx, u.ID, KeyUserData, u)
}

func LoadSelectedMarket(ctx context.Context, s Store, userID string) (betting.Market, bool, error) {
	var m betting.Market
	ok, err := s.Get(ctx, userID, KeySelectedMarket, &m)
	return m, ok, err
}

func SaveSelectedMarket(ctx context.Context, s Store, userID string, m betting.Market) error {
	return s.Set(ctx, userID, KeySelectedMarket, m)
}

func LoadBetType(ctx context.Context, s Store, userID string) (betting.BetType, bool, error) {
	var bt betting.BetType
	ok, err := s.Get(ctx, userID, KeyBetType, &bt)
	return bt, ok, err
}

func SaveBetType(ctx context.Context, s Store, userID string, bt betting.BetType) error {
	return s.Set(ctx, userID, KeyBetType, bt)
}

// O token de sessão mora num escopo próprio: token:{token} -> userId.
const keyTokenUser = "userId"

func tokenScope(token string) string { return "token:" + token }

// SaveToken associa o token opaco emitido no login ao usuário.
func SaveToken(ctx context.Context, s Store, token, userID string) error {
	return s.Set(ctx, tokenScope(token), keyTokenUser, userID)
}

// ResolveToken devolve o usuário dono do token; ok=false se não existe ou expirou.
func ResolveToken(ctx context.Context, s Store, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	var userID string
	ok, err := s.Get(ctx, tokenScope(token), keyTokenUser, &userID)
	if err != nil || !ok || userID == "" {
		return "", false, err
	}
	return userID, true, nil
}

func DeleteToken(ctx context.Context, s Store, token string) error {
	return s.Delete(ctx, tokenScope(token), keyTokenUser)
}

// Clear remove toda a sessão do usuário (logout).
func Clear(ctx context.Context, s Store, userID string) error {
	return s.Delete(ctx, userID, KeyUserData, KeySelectedMarket, KeyBetType)
}
