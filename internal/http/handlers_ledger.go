package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"steward/internal/core"
	"steward/internal/services"
)

type createAccountRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DebitMethod string `json:"debit_method"`
	UserID      string `json:"user_id"`
	GroupID     string `json:"group_id"`
}

type recordBalanceRequest struct {
	Amount string `json:"amount"`
	AsOf   string `json:"as_of"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to, err := parseRange(query, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := services.OverviewQuery{
		From:      from,
		To:        to,
		AccountID: strings.TrimSpace(query.Get("account_id")),
		UserID:    strings.TrimSpace(query.Get("user_id")),
		GroupID:   strings.TrimSpace(query.Get("group_id")),
	}

	key := "overview|" + from.Format(time.RFC3339) + "|" + to.Format(time.RFC3339) +
		"|" + q.AccountID + "|" + q.UserID + "|" + q.GroupID
	if agg, ok := s.overviewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, overviewView(agg))
		return
	}

	agg, err := s.ledger.Overview(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.overviewCache.Set(key, agg)
	writeJSON(w, http.StatusOK, overviewView(agg))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccountsWithBalances(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountView(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	accountType, err := core.ParseAccountType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	debitMethod, err := core.ParseDebitMethod(req.DebitMethod)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := s.ledger.CreateAccount(r.Context(), core.Account{
		Name:        strings.TrimSpace(req.Name),
		Type:        accountType,
		DebitMethod: debitMethod,
		UserID:      strings.TrimSpace(req.UserID),
		GroupID:     strings.TrimSpace(req.GroupID),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, accountJSON{
		ID:          a.ID,
		Name:        a.Name,
		Type:        string(a.Type),
		DebitMethod: string(a.DebitMethod),
		Balance:     core.Money{}.String(),
	})
}

func (s *Server) handleRecordBalance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req recordBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseSignedDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: use a decimal like -12.34")
		return
	}

	var asOf time.Time
	if strings.TrimSpace(req.AsOf) != "" {
		asOf, err = parseDate(req.AsOf, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := s.ledger.RecordBalance(r.Context(), id, core.Money{Cents: cents}, asOf); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAccountBalances(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	from, to, err := parseRange(r.URL.Query(), s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := "balances|" + id + "|" + from.Format(time.RFC3339) + "|" + to.Format(time.RFC3339)
	if ab, ok := s.balancesCache.Get(key); ok {
		writeJSON(w, http.StatusOK, balancesView(ab))
		return
	}

	ab, err := s.ledger.AccountBalances(r.Context(), id, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.balancesCache.Set(key, ab)
	writeJSON(w, http.StatusOK, balancesView(ab))
}
