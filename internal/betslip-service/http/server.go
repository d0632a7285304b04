package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/auth"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend/dto"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/funds"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/history"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/session"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/slip"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

type Tickets interface {
	Add(ctx context.Context, userID string, req slip.AddRequest) (betting.BetEntry, error)
	Remove(userID string, index int) error
	Summary(ctx context.Context, userID string) ([]betting.BetEntry, betting.Summary, error)
	Discard(userID string)
	Confirm(ctx context.Context, userID string) (slip.Result, error)
}

type Markets interface {
	List(ctx context.Context) ([]betting.Market, error)
}

type History interface {
	Bids(ctx context.Context, userID string) ([]betting.BetRecord, error)
	Wins(ctx context.Context, userID string, r history.Range) (history.Wins, error)
	Statement(ctx context.Context, userID string) ([]history.StatementLine, error)
}

type Funds interface {
	AddFund(ctx context.Context, userID string, in funds.FundInput) (dto.FundRequest, error)
	Withdraw(ctx context.Context, userID string, in funds.WithdrawalInput) (dto.Withdrawal, error)
	SaveBankDetails(ctx context.Context, userID string, in funds.BankDetailsInput) (dto.BankDetails, error)
	BankDetails(ctx context.Context, userID string) (dto.BankDetails, bool, error)
}

type Auth interface {
	Signup(ctx context.Context, in auth.SignupInput) (session.UserData, error)
	Login(ctx context.Context, in auth.LoginInput) (auth.Challenge, error)
	Verify(ctx context.Context, in auth.VerifyInput) (auth.Session, error)
	Resolve(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token, userID string) error
	UpdateProfile(ctx context.Context, userID string, in auth.ProfileInput) (session.UserData, error)
	Unlock(ctx context.Context, userID string, in auth.UnlockInput) (session.UserData, error)
}

// Users busca o registro atualizado do usuário (carteira).
type Users interface {
	GetUser(ctx context.Context, id string) (dto.User, error)
}

// API expõe os endpoints REST do betslip-service
type API struct {
	Log     *zap.Logger
	Tickets Tickets
	Markets Markets
	History History
	Funds   Funds
	Auth    Auth
	Users   Users
	Store   session.Store
	WS      http.HandlerFunc // opcional

	Location       *time.Location
	Now            func() time.Time
	AllowedOrigins []string
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.Location == nil {
		a.Location = time.UTC
	}
	origins := a.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(a.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if a.WS != nil {
		r.Get("/ws", a.WS) // push de mercados
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))

		r.Post("/auth/signup", a.signup)
		r.Post("/auth/login", a.login)
		r.Post("/auth/verify", a.verify)

		r.Get("/markets", a.listMarkets)
		r.Get("/bet-types", a.listBetTypes)

		// usuário vem do token Bearer, nunca da URL
		r.Route("/me", func(r chi.Router) {
			r.Use(a.requireUser)

			r.Post("/logout", a.logout)
			r.Post("/unlock", a.unlock)
			r.Put("/profile", a.updateProfile)
			r.Put("/selection", a.putSelection)
			r.Get("/wallet", a.getWallet)

			r.Get("/ticket", a.getTicket)
			r.Post("/ticket/entries", a.addEntry)
			r.Delete("/ticket/entries/{index}", a.removeEntry)
			r.Delete("/ticket", a.discardTicket)
			r.Post("/ticket/confirm", a.confirmTicket)

			r.Get("/bids", a.bids)
			r.Get("/wins", a.wins)
			r.Get("/statement", a.statement)

			r.Post("/funds", a.addFund)
			r.Post("/withdrawals", a.withdraw)
			r.Get("/bank-details", a.getBankDetails)
			r.Put("/bank-details", a.putBankDetails)
		})
	})
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor mapeia o kind do erro para o status HTTP.
func statusFor(k betting.Kind) int {
	switch k {
	case betting.KindInvalidNumber, betting.KindMissingSession, betting.KindInvalidAmount,
		betting.KindBelowMinimum, betting.KindInsufficientBalance, betting.KindEmptyTicket,
		betting.KindPendingWithdrawal:
		return http.StatusUnprocessableEntity
	case betting.KindMarketClosed, betting.KindDuplicateReference:
		return http.StatusConflict
	case betting.KindInvalidRequest:
		return http.StatusBadRequest
	case betting.KindUnauthorized:
		return http.StatusUnauthorized
	case betting.KindNetworkFailure, betting.KindBackendRejection:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := betting.KindOf(err)
	status := statusFor(kind)
	msg := err.Error()
	if kind == betting.KindUnknown {
		a.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "Something went wrong. Please try again"
	}
	writeJSON(w, status, errorBody{Error: kind.String(), Message: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: betting.KindInvalidRequest.String(), Message: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// requestLogger registra cada request no zap do serviço.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("requestId", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
