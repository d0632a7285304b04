package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/auth"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/backend"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/funds"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/history"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/session"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betslip-service/slip"
	"github.com/sourabh07032000/kalyan-userside-app/internal/betting"
)

const dateLayout = "2006-01-02"

func (a *API) signup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if !decode(w, r, &in) {
		return
	}
	u, err := a.Auth.Signup(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !decode(w, r, &in) {
		return
	}
	ch, err := a.Auth.Login(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	var in auth.VerifyInput
	if !decode(w, r, &in) {
		return
	}
	u, err := a.Auth.Verify(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	a.Tickets.Discard(userID)
	if err := a.Auth.Logout(r.Context(), sessionToken(r), userID); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type marketView struct {
	betting.Market
	IsOpen bool `json:"isOpen"`
}

// listMarkets devolve os mercados com a checagem de horário já aplicada
func (a *API) listMarkets(w http.ResponseWriter, r *http.Request) {
	ms, err := a.Markets.List(r.Context())
	if err != nil {
		a.writeError(w, r, backend.Classify(err, "Failed to load markets"))
		return
	}
	now := a.Now()
	out := make([]marketView, 0, len(ms))
	for _, m := range ms {
		out = append(out, marketView{Market: m, IsOpen: betting.IsWindowOpen(m, now, a.Location)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) listBetTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, betting.Catalog())
}

type selectionRequest struct {
	MarketID  string `json:"marketId,omitempty"`
	BetTypeID int    `json:"betTypeId,omitempty"`
}

type selectionResponse struct {
	Market  *betting.Market  `json:"selectedMarket,omitempty"`
	BetType *betting.BetType `json:"matkaBetType,omitempty"`
}

// putSelection grava o mercado e/ou a modalidade escolhidos na sessão
func (a *API) putSelection(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	var in selectionRequest
	if !decode(w, r, &in) {
		return
	}
	if in.MarketID == "" && in.BetTypeID == 0 {
		badRequest(w, "marketId or betTypeId is required")
		return
	}

	var out selectionResponse
	if in.BetTypeID != 0 {
		bt, ok := betting.LookupBetType(betting.BetTypeID(in.BetTypeID))
		if !ok {
			badRequest(w, "Unknown bet type")
			return
		}
		if err := session.SaveBetType(r.Context(), a.Store, userID, bt); err != nil {
			a.writeError(w, r, err)
			return
		}
		out.BetType = &bt
	}
	if in.MarketID != "" {
		ms, err := a.Markets.List(r.Context())
		if err != nil {
			a.writeError(w, r, backend.Classify(err, "Failed to load markets"))
			return
		}
		var found *betting.Market
		for i := range ms {
			if ms[i].ID == in.MarketID {
				found = &ms[i]
				break
			}
		}
		if found == nil {
			writeJSON(w, http.StatusNotFound, errorBody{Error: betting.KindInvalidRequest.String(), Message: "Market not found"})
			return
		}
		if err := session.SaveSelectedMarket(r.Context(), a.Store, userID, *found); err != nil {
			a.writeError(w, r, err)
			return
		}
		out.Market = found
	}
	writeJSON(w, http.StatusOK, out)
}

// getWallet relê o saldo no backend e atualiza o cache da sessão
func (a *API) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	cached, ok, err := session.LoadUser(r.Context(), a.Store, userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !ok {
		a.writeError(w, r, betting.NewError(betting.KindUnauthorized, msgLoginAgain))
		return
	}

	u, err := a.Users.GetUser(r.Context(), userID)
	if err != nil {
		a.writeError(w, r, backend.Classify(err, "Failed to load wallet"))
		return
	}
	cached.Wallet = u.Wallet.Decimal
	if err := session.SaveUser(r.Context(), a.Store, cached); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cached.WalletSnapshot())
}

type ticketResponse struct {
	Entries []betting.BetEntry `json:"entries"`
	Summary betting.Summary    `json:"summary"`
	Warning string             `json:"warning,omitempty"`
}

func (a *API) getTicket(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	entries, sum, err := a.Tickets.Summary(r.Context(), userID)
	resp := ticketResponse{Entries: entries, Summary: sum}
	if err != nil {
		// saldo insuficiente não impede exibir o bilhete
		if betting.KindOf(err) != betting.KindInsufficientBalance {
			a.writeError(w, r, err)
			return
		}
		resp.Warning = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) addEntry(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	var in slip.AddRequest
	if !decode(w, r, &in) {
		return
	}
	e, err := a.Tickets.Add(r.Context(), userID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (a *API) removeEntry(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		badRequest(w, "index must be an integer")
		return
	}
	if err := a.Tickets.Remove(userID, idx); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) discardTicket(w http.ResponseWriter, r *http.Request) {
	a.Tickets.Discard(currentUser(r))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) confirmTicket(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	res, err := a.Tickets.Confirm(r.Context(), userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) bids(w http.ResponseWriter, r *http.Request) {
	out, err := a.History.Bids(r.Context(), currentUser(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// wins aceita ?from=YYYY-MM-DD&to=YYYY-MM-DD (dias inteiros, no fuso dos mercados)
func (a *API) wins(w http.ResponseWriter, r *http.Request) {
	var rng history.Range
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := time.ParseInLocation(dateLayout, s, a.Location)
		if err != nil {
			badRequest(w, "from must be YYYY-MM-DD")
			return
		}
		rng.From = d
	}
	if s := r.URL.Query().Get("to"); s != "" {
		d, err := time.ParseInLocation(dateLayout, s, a.Location)
		if err != nil {
			badRequest(w, "to must be YYYY-MM-DD")
			return
		}
		rng.To = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		badRequest(w, "from must not be after to")
		return
	}

	out, err := a.History.Wins(r.Context(), currentUser(r), rng)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) statement(w http.ResponseWriter, r *http.Request) {
	out, err := a.History.Statement(r.Context(), currentUser(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) addFund(w http.ResponseWriter, r *http.Request) {
	var in funds.FundInput
	if !decode(w, r, &in) {
		return
	}
	out, err := a.Funds.AddFund(r.Context(), currentUser(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) withdraw(w http.ResponseWriter, r *http.Request) {
	var in funds.WithdrawalInput
	if !decode(w, r, &in) {
		return
	}
	out, err := a.Funds.Withdraw(r.Context(), currentUser(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in auth.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	u, err := a.Auth.UpdateProfile(r.Context(), currentUser(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// unlock reabre a sessão já logada com o MPIN de 4 dígitos
func (a *API) unlock(w http.ResponseWriter, r *http.Request) {
	var in auth.UnlockInput
	if !decode(w, r, &in) {
		return
	}
	u, err := a.Auth.Unlock(r.Context(), currentUser(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) getBankDetails(w http.ResponseWriter, r *http.Request) {
	bd, ok, err := a.Funds.BankDetails(r.Context(), currentUser(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: betting.KindInvalidRequest.String(), Message: "No bank details submitted"})
		return
	}
	writeJSON(w, http.StatusOK, bd)
}

func (a *API) putBankDetails(w http.ResponseWriter, r *http.Request) {
	var in funds.BankDetailsInput
	if !decode(w, r, &in) {
		return
	}
	bd, err := a.Funds.SaveBankDetails(r.Context(), currentUser(r), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bd)
}
