package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend/dto"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

// ErrUnavailable marca falhas de transporte (timeout, DNS, conexão recusada, corpo ilegível).
var ErrUnavailable = errors.New("backend unavailable")

// HTTPError é uma resposta não-2xx do backend. Message vem do campo "message" do corpo.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend http %d", e.StatusCode)
	}
	return fmt.Sprintf("backend http %d: %s", e.StatusCode, e.Message)
}

// Client fala com o backend remoto (dono de usuários, carteira, mercados e OTP).
// Não há retry: PUT /user/{id} não é idempotente.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetUser(ctx context.Context, id string) (dto.User, error) {
	var out dto.User
	err := c.do(ctx, http.MethodGet, userPath(id), nil, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) ([]dto.User, error) {
	var out []dto.User
	err := c.do(ctx, http.MethodGet, "/user", nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, req dto.CreateUserRequest) (dto.User, error) {
	var out dto.User
	err := c.do(ctx, http.MethodPost, "/user", req, &out)
	return out, err
}

// CommitBets anexa added às apostas de u e grava o novo saldo numa única escrita.
// u deve vir de GetUser logo antes: os itens antigos voltam exatamente como vieram.
func (c *Client) CommitBets(ctx context.Context, u dto.User, added []betting.BetRecord, wallet decimal.Decimal) error {
	items := make([]any, 0, len(added))
	for _, b := range added {
		items = append(items, dto.FromRecord(b))
	}
	details, err := dto.AppendRaw(existingBets(u), items...)
	if err != nil {
		return fmt.Errorf("encode betDetails: %w", err)
	}
	body := dto.CommitBetsRequest{BetDetails: details, Wallet: dto.NewNumber(wallet)}
	return c.do(ctx, http.MethodPut, userPath(u.ID), body, nil)
}

// UpdateUser faz um PUT parcial em /user/{id} (perfil, dados bancários).
func (c *Client) UpdateUser(ctx context.Context, id string, body any) (dto.User, error) {
	var out dto.UserEnvelope
	if err := c.do(ctx, http.MethodPut, userPath(id), body, &out); err != nil {
		return dto.User{}, err
	}
	return out.User, nil
}

func (c *Client) ListMarkets(ctx context.Context) ([]betting.Market, error) {
	var out []betting.Market
	err := c.do(ctx, http.MethodGet, "/api/market-data", nil, &out)
	return out, err
}

// SubmitFundRequest anexa req aos pedidos de depósito de u.
func (c *Client) SubmitFundRequest(ctx context.Context, u dto.User, req dto.FundRequest) error {
	existing := u.RawTransactionRequests
	if existing == nil && len(u.TransactionRequests) > 0 {
		existing = marshalEach(u.TransactionRequests)
	}
	list, err := dto.AppendRaw(existing, req)
	if err != nil {
		return fmt.Errorf("encode transactionRequest: %w", err)
	}
	return c.do(ctx, http.MethodPut, userPath(u.ID)+"/transactionRequest",
		dto.FundRequestsBody{TransactionRequest: list}, nil)
}

// SubmitWithdrawal anexa w aos pedidos de saque de u.
func (c *Client) SubmitWithdrawal(ctx context.Context, u dto.User, w dto.Withdrawal) error {
	existing := u.RawWithdrawalRequests
	if existing == nil && len(u.WithdrawalRequests) > 0 {
		existing = marshalEach(u.WithdrawalRequests)
	}
	list, err := dto.AppendRaw(existing, w)
	if err != nil {
		return fmt.Errorf("encode withdrawalRequest: %w", err)
	}
	return c.do(ctx, http.MethodPut, userPath(u.ID)+"/withdrawalRequest",
		dto.WithdrawalsBody{WithdrawalRequest: list}, nil)
}

func (c *Client) SendOTP(ctx context.Context, mobile string) (string, error) {
	var out dto.SendOTPResponse
	if err := c.do(ctx, http.MethodPost, "/newOtp/send-otp", dto.SendOTPRequest{MobileNumber: mobile}, &out); err != nil {
		return "", err
	}
	return out.VerificationID, nil
}

// ValidateOTP devolve (false, nil) quando o backend responde 2xx com success=false.
func (c *Client) ValidateOTP(ctx context.Context, mobile, verificationID, otp string) (bool, error) {
	var out dto.ValidateOTPResponse
	err := c.do(ctx, http.MethodPost, "/newOtp/validate-otp", dto.ValidateOTPRequest{
		OTP:            otp,
		PhoneNumber:    mobile,
		VerificationID: verificationID,
	}, &out)
	if err != nil {
		return false, err
	}
	return out.Success, nil
}

func userPath(id string) string {
	return "/user/" + url.PathEscape(id)
}

// existingBets cobre User montado em código, sem passar pelo decode.
func existingBets(u dto.User) []json.RawMessage {
	if u.RawBetDetails != nil || len(u.BetDetails) == 0 {
		return u.RawBetDetails
	}
	details := make([]dto.BetDetail, 0, len(u.BetDetails))
	for _, b := range u.BetDetails {
		details = append(details, dto.FromRecord(b))
	}
	return marshalEach(details)
}

func marshalEach[T any](items []T) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err == nil {
			out = append(out, raw)
		}
	}
	return out
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		var eb dto.ErrorBody
		_ = json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&eb)
		return &HTTPError{StatusCode: res.StatusCode, Message: eb.Message}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrUnavailable, method, path, err)
	}
	return nil
}

// Classify traduz um erro do backend para a taxonomia de confirmação:
// HTTPError -> BackendRejection (mensagem do backend ou fallback), resto -> NetworkFailure.
func Classify(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var be *betting.Error
	if errors.As(err, &be) {
		return be
	}
	var he *HTTPError
	if errors.As(err, &he) {
		msg := he.Message
		if msg == "" {
			msg = fallback
		}
		return betting.WrapError(betting.KindBackendRejection, msg, err)
	}
	return betting.WrapError(betting.KindNetworkFailure, fallback, err)
}
