package slip

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend/dto"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/markets"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/session"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
	"github.com/sourabh07032000/kalyan-userside-app/pkg/contracts/events"
)

const (
	msgLoginRequired   = "Please login again"
	msgSelectBetType   = "Please select a bet type"
	msgSelectMarket    = "Please select a market"
	msgMarketNotFound  = "Market not found"
	msgInvalidSession  = "Please select session (Open/Close)"
	msgInvalidIndex    = "Invalid bet entry"
	msgEmptyTicket     = "Please add at least one bet"
	msgLoadMarkets     = "Failed to load markets"
	msgConfirmFallback = "Failed to place bets"
)

type Backend interface {
	GetUser(ctx context.Context, id string) (dto.User, error)
	CommitBets(ctx context.Context, u dto.User, added []betting.BetRecord, wallet decimal.Decimal) error
}

type Markets interface {
	Get(ctx context.Context, id string) (betting.Market, error)
}

type Publisher interface {
	PublishTicketConfirmed(ctx context.Context, e events.TicketConfirmed) error
}

// AddRequest é a entrada digitada. MarketID/BetTypeID vazios usam a seleção da sessão.
type AddRequest struct {
	Number    string `json:"number"`
	Amount    string `json:"amount"`
	Session   string `json:"session,omitempty"`
	MarketID  string `json:"marketId,omitempty"`
	BetTypeID int    `json:"betTypeId,omitempty"`
}

type Result struct {
	TicketID string             `json:"ticketId"`
	Entries  []betting.BetEntry `json:"entries"`
	Summary  betting.Summary    `json:"summary"`
}

type userTicket struct {
	mu      sync.Mutex // serializa add/remove/confirm do mesmo usuário
	t       betting.Ticket
	dropped bool // já saiu do mapa; Add precisa de um novo
}

// Service mantém um bilhete pendente por usuário, em memória (não persiste).
type Service struct {
	Log     *zap.Logger
	Store   session.Store
	Markets Markets
	Backend Backend
	Pub     Publisher
	Now     func() time.Time

	OnAdded    func()       // métricas
	OnRejected func(string) // métricas por kind
	OnConfirm  func(string) // métricas por resultado

	mu      sync.Mutex
	tickets map[string]*userTicket
}

func NewService(log *zap.Logger, st session.Store, m Markets, b Backend, p Publisher) *Service {
	return &Service{
		Log:     log,
		Store:   st,
		Markets: m,
		Backend: b,
		Pub:     p,
		Now:     time.Now,
		tickets: make(map[string]*userTicket),
	}
}

// ticket devolve o bilhete do usuário, criando se preciso. Só Add cria.
func (s *Service) ticket(userID string) *userTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	ut, ok := s.tickets[userID]
	if !ok {
		ut = &userTicket{}
		s.tickets[userID] = ut
	}
	return ut
}

func (s *Service) lookup(userID string) *userTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets[userID]
}

// drop tira ut do mapa. Exige ut.mu travado.
func (s *Service) drop(userID string, ut *userTicket) {
	ut.t.Clear()
	ut.dropped = true
	s.mu.Lock()
	if s.tickets[userID] == ut {
		delete(s.tickets, userID)
	}
	s.mu.Unlock()
}

// Add valida a entrada contra o mercado relido agora e a anexa ao bilhete.
func (s *Service) Add(ctx context.Context, userID string, req AddRequest) (betting.BetEntry, error) {
	entry, err := s.validate(ctx, userID, req)
	if err != nil {
		kind := betting.KindOf(err)
		s.Log.Debug("entry rejected", zap.String("userId", userID), zap.Stringer("kind", kind), zap.Error(err))
		if s.OnRejected != nil {
			s.OnRejected(kind.String())
		}
		return betting.BetEntry{}, err
	}

	for {
		ut := s.ticket(userID)
		ut.mu.Lock()
		if ut.dropped {
			ut.mu.Unlock()
			continue
		}
		ut.t.Add(entry)
		ut.mu.Unlock()
		break
	}

	if s.OnAdded != nil {
		s.OnAdded()
	}
	return entry, nil
}

func (s *Service) validate(ctx context.Context, userID string, req AddRequest) (betting.BetEntry, error) {
	user, ok, err := session.LoadUser(ctx, s.Store, userID)
	if err != nil {
		return betting.BetEntry{}, err
	}
	if !ok {
		return betting.BetEntry{}, betting.NewError(betting.KindInvalidRequest, msgLoginRequired)
	}

	bt, err := s.resolveBetType(ctx, userID, req.BetTypeID)
	if err != nil {
		return betting.BetEntry{}, err
	}
	market, err := s.resolveMarket(ctx, userID, req.MarketID)
	if err != nil {
		return betting.BetEntry{}, err
	}

	sess, ok := betting.ParseSession(req.Session)
	if !ok {
		return betting.BetEntry{}, betting.NewError(betting.KindMissingSession, msgInvalidSession)
	}

	return betting.ValidateEntry(betting.Input{
		Number:  req.Number,
		Amount:  req.Amount,
		BetType: bt,
		Session: sess,
		Market:  market,
		Wallet:  user.WalletSnapshot(),
		User:    userID,
	})
}

func (s *Service) resolveBetType(ctx context.Context, userID string, id int) (betting.BetType, error) {
	if id != 0 {
		bt, ok := betting.LookupBetType(betting.BetTypeID(id))
		if !ok {
			return betting.BetType{}, betting.NewError(betting.KindInvalidRequest, msgSelectBetType)
		}
		return bt, nil
	}
	stored, ok, err := session.LoadBetType(ctx, s.Store, userID)
	if err != nil {
		return betting.BetType{}, err
	}
	if !ok {
		return betting.BetType{}, betting.NewError(betting.KindInvalidRequest, msgSelectBetType)
	}
	// multiplicador vem sempre do catálogo, não do snapshot da sessão
	bt, ok := betting.LookupBetType(stored.ID)
	if !ok {
		return betting.BetType{}, betting.NewError(betting.KindInvalidRequest, msgSelectBetType)
	}
	return bt, nil
}

func (s *Service) resolveMarket(ctx context.Context, userID, id string) (betting.Market, error) {
	if id == "" {
		selected, ok, err := session.LoadSelectedMarket(ctx, s.Store, userID)
		if err != nil {
			return betting.Market{}, err
		}
		if !ok {
			return betting.Market{}, betting.NewError(betting.KindInvalidRequest, msgSelectMarket)
		}
		id = selected.ID
	}
	m, err := s.Markets.Get(ctx, id)
	if errors.Is(err, markets.ErrNotFound) {
		return betting.Market{}, betting.WrapError(betting.KindInvalidRequest, msgMarketNotFound, err)
	}
	if err != nil {
		return betting.Market{}, backend.Classify(err, msgLoadMarkets)
	}
	return m, nil
}

func (s *Service) Remove(userID string, index int) error {
	ut := s.lookup(userID)
	if ut == nil {
		return betting.WrapError(betting.KindInvalidRequest, msgInvalidIndex, betting.ErrIndexOutOfRange)
	}
	ut.mu.Lock()
	defer ut.mu.Unlock()
	if err := ut.t.Remove(index); err != nil {
		return betting.WrapError(betting.KindInvalidRequest, msgInvalidIndex, err)
	}
	return nil
}

func (s *Service) Entries(userID string) []betting.BetEntry {
	ut := s.lookup(userID)
	if ut == nil {
		return []betting.BetEntry{}
	}
	ut.mu.Lock()
	defer ut.mu.Unlock()
	return ut.t.Entries()
}

// Summary devolve as entradas e o resumo contra a carteira em cache. Com saldo
// projetado negativo o resumo vem junto do erro InsufficientBalance.
func (s *Service) Summary(ctx context.Context, userID string) ([]betting.BetEntry, betting.Summary, error) {
	entries := s.Entries(userID)
	user, ok, err := session.LoadUser(ctx, s.Store, userID)
	if err != nil {
		return entries, betting.Summary{}, err
	}
	if !ok {
		return entries, betting.Summary{}, betting.NewError(betting.KindInvalidRequest, msgLoginRequired)
	}
	sum, err := betting.Summarize(entries, user.WalletSnapshot())
	return entries, sum, err
}

// Discard descarta o bilhete (usuário saiu da tela). Espera um Confirm em curso.
func (s *Service) Discard(userID string) {
	ut := s.lookup(userID)
	if ut == nil {
		return
	}
	ut.mu.Lock()
	defer ut.mu.Unlock()
	s.drop(userID, ut)
}

// Confirm grava o bilhete no backend. O resumo é refeito contra o saldo relido do
// backend, não o da sessão. Só depois do sucesso o bilhete é limpo e a carteira em
// cache vira o saldo projetado. Em qualquer falha o bilhete fica intacto.
func (s *Service) Confirm(ctx context.Context, userID string) (Result, error) {
	ut := s.lookup(userID)
	if ut == nil {
		s.confirmed("empty")
		return Result{}, betting.NewError(betting.KindEmptyTicket, msgEmptyTicket)
	}
	ut.mu.Lock()
	defer ut.mu.Unlock()

	entries := ut.t.Entries()
	if len(entries) == 0 {
		s.confirmed("empty")
		return Result{}, betting.NewError(betting.KindEmptyTicket, msgEmptyTicket)
	}

	user, ok, err := session.LoadUser(ctx, s.Store, userID)
	if err != nil {
		s.confirmed("error")
		return Result{}, err
	}
	if !ok {
		s.confirmed("error")
		return Result{}, betting.NewError(betting.KindInvalidRequest, msgLoginRequired)
	}

	fresh, err := s.Backend.GetUser(ctx, userID)
	if err != nil {
		return Result{}, s.confirmFailed(userID, err)
	}
	if fresh.ID == "" {
		fresh.ID = userID
	}
	if !user.Wallet.Equal(fresh.Wallet.Decimal) {
		user.Wallet = fresh.Wallet.Decimal
		s.saveUser(ctx, user)
	}

	sum, err := betting.Summarize(entries, betting.Wallet{Balance: fresh.Wallet.Decimal})
	if err != nil {
		s.confirmed("insufficient_balance")
		return Result{Entries: entries, Summary: sum}, err
	}

	now := s.Now()
	added := make([]betting.BetRecord, 0, len(entries))
	for _, e := range entries {
		placed := now
		added = append(added, betting.BetRecord{BetEntry: e, BetPlacedTiming: &placed})
	}

	if err := s.Backend.CommitBets(ctx, fresh, added, sum.ProjectedBalance); err != nil {
		return Result{}, s.confirmFailed(userID, err)
	}

	s.drop(userID, ut)
	user.Wallet = sum.ProjectedBalance
	s.saveUser(ctx, user)

	res := Result{TicketID: uuid.NewString(), Entries: entries, Summary: sum}
	s.publish(ctx, userID, user, res, now)
	s.confirmed("ok")

	s.Log.Info("ticket confirmed",
		zap.String("userId", userID),
		zap.String("ticketId", res.TicketID),
		zap.Int("entries", len(entries)),
		zap.String("totalStake", sum.TotalStake.String()),
	)
	return res, nil
}

func (s *Service) saveUser(ctx context.Context, user session.UserData) {
	if err := session.SaveUser(ctx, s.Store, user); err != nil {
		s.Log.Warn("wallet cache update failed", zap.String("userId", user.ID), zap.Error(err))
	}
}

func (s *Service) confirmFailed(userID string, err error) error {
	cerr := backend.Classify(err, msgConfirmFallback)
	kind := betting.KindOf(cerr)
	s.Log.Warn("ticket confirm failed", zap.String("userId", userID), zap.Stringer("kind", kind), zap.Error(err))
	s.confirmed(kind.String())
	return cerr
}

func (s *Service) publish(ctx context.Context, userID string, user session.UserData, res Result, at time.Time) {
	if s.Pub == nil {
		return
	}
	ev := events.TicketConfirmed{
		TicketID:         res.TicketID,
		UserID:           userID,
		Entries:          make([]events.TicketEntry, 0, len(res.Entries)),
		TotalStake:       res.Summary.TotalStake,
		PreviousBalance:  res.Summary.ProjectedBalance.Add(res.Summary.TotalStake),
		ProjectedBalance: res.Summary.ProjectedBalance,
		ConfirmedAt:      at.UTC(),
	}
	for _, e := range res.Entries {
		ev.Entries = append(ev.Entries, events.TicketEntry{
			Number:     e.Number,
			BetTypeID:  int(e.BetType.ID),
			Category:   e.BetType.Category,
			Session:    string(e.Session),
			Amount:     e.Amount,
			Multiplier: e.BetType.Multiplier,
			MarketID:   e.MarketID,
		})
	}
	// o backend já aceitou; falha aqui só perde a trilha de auditoria
	if err := s.Pub.PublishTicketConfirmed(ctx, ev); err != nil {
		s.Log.Warn("ticket_confirmed publish failed", zap.String("ticketId", res.TicketID), zap.Error(err))
	}
}

func (s *Service) confirmed(result string) {
	if s.OnConfirm != nil {
		s.OnConfirm(result)
	}
}
