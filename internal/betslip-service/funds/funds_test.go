package funds

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend/dto"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/session"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

type fakeBackend struct {
	user        dto.User
	funds       []dto.FundRequest
	withdrawals []dto.Withdrawal
	updates     []any
	fundCalls   int
	wdCalls     int
}

func (f *fakeBackend) GetUser(context.Context, string) (dto.User, error) { return f.user, nil }

func (f *fakeBackend) UpdateUser(_ context.Context, _ string, body any) (dto.User, error) {
	f.updates = append(f.updates, body)
	return f.user, nil
}

func (f *fakeBackend) SubmitFundRequest(_ context.Context, u dto.User, req dto.FundRequest) error {
	f.fundCalls++
	f.funds = append(append([]dto.FundRequest{}, u.TransactionRequests...), req)
	return nil
}

func (f *fakeBackend) SubmitWithdrawal(_ context.Context, u dto.User, w dto.Withdrawal) error {
	f.wdCalls++
	f.withdrawals = append(append([]dto.Withdrawal{}, u.WithdrawalRequests...), w)
	return nil
}

func newService(b *fakeBackend) *Service {
	s := NewService(zap.NewNop(), b, session.NewMemoryStore())
	s.Now = func() time.Time { return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestAddFund(t *testing.T) {
	b := &fakeBackend{user: dto.User{ID: "u1", Username: "ravi", TransactionRequests: []dto.FundRequest{{UTRNumber: "111111111111", Status: "Approved"}}}}
	s := newService(b)

	tests := []struct {
		name string
		in   FundInput
		want betting.Kind
	}{
		{"bad amount", FundInput{Amount: "abc", UTR: "123456789012"}, betting.KindInvalidAmount},
		{"zero amount", FundInput{Amount: "0", UTR: "123456789012"}, betting.KindInvalidAmount},
		{"exponent amount", FundInput{Amount: "1e20000000", UTR: "123456789012"}, betting.KindInvalidAmount},
		{"three decimals", FundInput{Amount: "10.125", UTR: "123456789012"}, betting.KindInvalidAmount},
		{"signed utr", FundInput{Amount: "500", UTR: "+12345678901"}, betting.KindInvalidRequest},
		{"short utr", FundInput{Amount: "500", UTR: "12345"}, betting.KindInvalidRequest},
		{"letters in utr", FundInput{Amount: "500", UTR: "12345678901a"}, betting.KindInvalidRequest},
		{"reused utr", FundInput{Amount: "500", UTR: "111111111111"}, betting.KindDuplicateReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddFund(context.Background(), "u1", tt.in)
			if betting.KindOf(err) != tt.want {
				t.Errorf("kind = %v, want %v (err=%v)", betting.KindOf(err), tt.want, err)
			}
		})
	}
	if b.fundCalls != 0 {
		t.Fatalf("backend written on invalid input")
	}

	req, err := s.AddFund(context.Background(), "u1", FundInput{Amount: "500", UTR: " 123456789012 "})
	if err != nil {
		t.Fatalf("AddFund: %v", err)
	}
	if req.Status != betting.StatusPending || req.UTRNumber != "123456789012" || req.Username != "ravi" {
		t.Errorf("request = %+v", req)
	}
	if len(b.funds) != 2 || b.funds[1].UTRNumber != "123456789012" {
		t.Errorf("submitted list = %+v", b.funds)
	}
}

func TestWithdraw(t *testing.T) {
	bank := WithdrawalInput{Amount: "500", AccountNumber: "123456789", IFSCCode: "sbin0001234", AccountHolderName: "Ravi Kumar"}

	tests := []struct {
		name    string
		user    dto.User
		in      WithdrawalInput
		want    betting.Kind
		wantMsg string
	}{
		{
			name: "below range",
			user: dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000))},
			in:   WithdrawalInput{Amount: "99", UPIID: "ravi@okaxis"},
			want: betting.KindInvalidAmount,
		},
		{
			name: "above range",
			user: dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000000))},
			in:   WithdrawalInput{Amount: "100001", UPIID: "ravi@okaxis"},
			want: betting.KindInvalidAmount,
		},
		{
			name: "over wallet",
			user: dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(400))},
			in:   bank,
			want: betting.KindInsufficientBalance,
		},
		{
			name: "pending withdrawal exists",
			user: dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000)), WithdrawalRequests: []dto.Withdrawal{{Status: "Pending"}}},
			in:   bank,
			want: betting.KindPendingWithdrawal,
		},
		{
			name:    "no payout details",
			user:    dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000))},
			in:      WithdrawalInput{Amount: "500"},
			want:    betting.KindInvalidRequest,
			wantMsg: msgPayoutDetails,
		},
		{
			name:    "saved details not approved yet",
			user:    dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000)), BankDetails: &dto.BankDetails{AccountNumber: "123456789", IFSCCode: "SBIN0001234", AccountHolderName: "Ravi"}},
			in:      WithdrawalInput{Amount: "500"},
			want:    betting.KindInvalidRequest,
			wantMsg: msgBankPending,
		},
		{
			name: "exponent amount",
			user: dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000))},
			in:   WithdrawalInput{Amount: "1e3", UPIID: "ravi@okaxis"},
			want: betting.KindInvalidAmount,
		},
		{
			name:    "short account",
			user:    dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000))},
			in:      WithdrawalInput{Amount: "500", AccountNumber: "1234", IFSCCode: "SBIN0001234", AccountHolderName: "Ravi"},
			want:    betting.KindInvalidRequest,
			wantMsg: msgInvalidAccount,
		},
		{
			name:    "bad ifsc",
			user:    dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000))},
			in:      WithdrawalInput{Amount: "500", AccountNumber: "123456789", IFSCCode: "SBIN1001234", AccountHolderName: "Ravi"},
			want:    betting.KindInvalidRequest,
			wantMsg: msgInvalidIFSC,
		},
		{
			name:    "bad holder name",
			user:    dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000))},
			in:      WithdrawalInput{Amount: "500", AccountNumber: "123456789", IFSCCode: "SBIN0001234", AccountHolderName: "R2"},
			want:    betting.KindInvalidRequest,
			wantMsg: msgInvalidName,
		},
		{
			name:    "bad upi",
			user:    dto.User{Wallet: dto.NewNumber(decimal.NewFromInt(1000))},
			in:      WithdrawalInput{Amount: "500", UPIID: "ravi@1"},
			want:    betting.KindInvalidRequest,
			wantMsg: msgInvalidUPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{user: tt.user}
			_, err := newService(b).Withdraw(context.Background(), "u1", tt.in)
			if betting.KindOf(err) != tt.want {
				t.Fatalf("kind = %v, want %v (err=%v)", betting.KindOf(err), tt.want, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
			if b.wdCalls != 0 {
				t.Error("backend written on rejected withdrawal")
			}
		})
	}
}

func TestWithdrawSuccess(t *testing.T) {
	b := &fakeBackend{user: dto.User{
		ID:                 "u1",
		Username:           "ravi",
		Wallet:             dto.NewNumber(decimal.NewFromInt(800)),
		WithdrawalRequests: []dto.Withdrawal{{Status: "Approved"}},
	}}
	s := newService(b)
	ctx := context.Background()
	_ = session.SaveUser(ctx, s.Store, session.UserData{ID: "u1", Wallet: decimal.NewFromInt(10)})

	w, err := s.Withdraw(ctx, "u1", WithdrawalInput{Amount: "100", AccountNumber: "123456789012", IFSCCode: "hdfc0ABC123", AccountHolderName: "Ravi Kumar", UPIID: "ravi.k@okaxis"})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if w.IFSCCode != "HDFC0ABC123" || w.UPIID != "ravi.k@okaxis" || w.Status != betting.StatusPending {
		t.Errorf("withdrawal = %+v", w)
	}
	if len(b.withdrawals) != 2 {
		t.Errorf("submitted %d withdrawals, want 2", len(b.withdrawals))
	}
	u, _, _ := session.LoadUser(ctx, s.Store, "u1")
	if !u.Wallet.Equal(decimal.NewFromInt(800)) {
		t.Errorf("cached wallet = %s, want refreshed 800", u.Wallet)
	}
}

func TestWithdrawUsesApprovedBankDetails(t *testing.T) {
	b := &fakeBackend{user: dto.User{
		ID:          "u1",
		Wallet:      dto.NewNumber(decimal.NewFromInt(1000)),
		BankDetails: &dto.BankDetails{AccountNumber: "123456789", IFSCCode: "SBIN0001234", AccountHolderName: "Ravi Kumar", UPIID: "ravi@okaxis", IsApproved: true},
	}}
	w, err := newService(b).Withdraw(context.Background(), "u1", WithdrawalInput{Amount: "200"})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if w.AccountNumber != "123456789" || w.IFSCCode != "SBIN0001234" || w.UPIID != "ravi@okaxis" {
		t.Errorf("withdrawal = %+v", w)
	}
}

func TestSaveBankDetails(t *testing.T) {
	valid := BankDetailsInput{
		AccountNumber:        "123456789012",
		ConfirmAccountNumber: "123456789012",
		IFSCCode:             " sbin0001234 ",
		AccountHolderName:    "Ravi Kumar",
		UPIID:                "ravi@okaxis",
	}

	tests := []struct {
		name    string
		mutate  func(*BankDetailsInput)
		wantMsg string
	}{
		{"short account", func(in *BankDetailsInput) { in.AccountNumber, in.ConfirmAccountNumber = "1234", "1234" }, msgInvalidAccount},
		{"confirmation differs", func(in *BankDetailsInput) { in.ConfirmAccountNumber = "123456789013" }, msgAccountMismatch},
		{"bad ifsc", func(in *BankDetailsInput) { in.IFSCCode = "SBIN1001234" }, msgInvalidIFSC},
		{"bad name", func(in *BankDetailsInput) { in.AccountHolderName = "R2" }, msgInvalidName},
		{"missing upi", func(in *BankDetailsInput) { in.UPIID = "" }, msgInvalidUPI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{}
			in := valid
			tt.mutate(&in)
			_, err := newService(b).SaveBankDetails(context.Background(), "u1", in)
			if betting.KindOf(err) != betting.KindInvalidRequest || err.Error() != tt.wantMsg {
				t.Fatalf("err = %v, want %q", err, tt.wantMsg)
			}
			if len(b.updates) != 0 {
				t.Error("backend written on invalid bank details")
			}
		})
	}

	b := &fakeBackend{}
	bd, err := newService(b).SaveBankDetails(context.Background(), "u1", valid)
	if err != nil {
		t.Fatalf("SaveBankDetails: %v", err)
	}
	if bd.IFSCCode != "SBIN0001234" || bd.IsApproved || bd.SubmittedAt == nil {
		t.Errorf("bank details = %+v", bd)
	}
	if len(b.updates) != 1 {
		t.Fatalf("updates = %d", len(b.updates))
	}
	body, _ := json.Marshal(b.updates[0])
	var got map[string]map[string]any
	_ = json.Unmarshal(body, &got)
	if got["bankDetails"]["isApproved"] != false || got["bankDetails"]["accountNumber"] != "123456789012" {
		t.Errorf("PUT body = %s", body)
	}
}

func TestBankDetails(t *testing.T) {
	b := &fakeBackend{user: dto.User{ID: "u1"}}
	s := newService(b)
	if _, ok, err := s.BankDetails(context.Background(), "u1"); err != nil || ok {
		t.Fatalf("BankDetails = %v, %v; want not found", ok, err)
	}
	b.user.BankDetails = &dto.BankDetails{AccountNumber: "123456789", IsApproved: true}
	bd, ok, err := s.BankDetails(context.Background(), "u1")
	if err != nil || !ok || !bd.IsApproved {
		t.Fatalf("BankDetails = %+v, %v, %v", bd, ok, err)
	}
}

// o pedido novo entra no fim e os antigos voltam com todos os campos do backend
func TestAddFundKeepsExistingRequests(t *testing.T) {
	var put map[string][]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"_id":"u1","username":"ravi","wallet":100,
				"transactionRequest":[{"_id":"tx-1","amount":500,"status":"Approved","utrNumber":"111111111111","approvedBy":"admin"}],
				"withdrawalRequest":[{"_id":"wd-1","amount":300,"status":"Rejected","remark":"bad account"}]}`)
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&put); err != nil {
				t.Errorf("decode PUT: %v", err)
			}
		}
	}))
	defer srv.Close()

	s := NewService(zap.NewNop(), backend.New(srv.URL, time.Second), session.NewMemoryStore())
	if _, err := s.AddFund(context.Background(), "u1", FundInput{Amount: "250", UTR: "222222222222"}); err != nil {
		t.Fatalf("AddFund: %v", err)
	}
	txs := put["transactionRequest"]
	if len(txs) != 2 || txs[0]["_id"] != "tx-1" || txs[0]["approvedBy"] != "admin" || txs[1]["utrNumber"] != "222222222222" {
		t.Errorf("transactionRequest = %#v", txs)
	}

	put = nil
	if _, err := s.Withdraw(context.Background(), "u1", WithdrawalInput{Amount: "100", UPIID: "ravi@okaxis"}); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	wds := put["withdrawalRequest"]
	if len(wds) != 2 || wds[0]["_id"] != "wd-1" || wds[0]["remark"] != "bad account" {
		t.Errorf("withdrawalRequest = %#v", wds)
	}
}
