package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"steward/internal/core"
	"steward/internal/storage"
)

type createTransactionRequest struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	AccountID     string `json:"account_id"`
	ToAccountID   string `json:"to_account_id"`
	SubcategoryID string `json:"subcategory_id"`
	Description   string `json:"description"`
	UserID        string `json:"user_id"`
	GroupID       string `json:"group_id"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to, err := parseRange(query, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.txs.List(r.Context(), storage.TxFilter{
		From:          from,
		To:            to,
		AccountID:     strings.TrimSpace(query.Get("account_id")),
		SubcategoryID: strings.TrimSpace(query.Get("subcategory_id")),
		UserID:        strings.TrimSpace(query.Get("user_id")),
		GroupID:       strings.TrimSpace(query.Get("group_id")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionView(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	txType, err := core.ParseTransactionType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: use a non-negative decimal like 12.34")
		return
	}
	date, err := parseDate(req.Date, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx := core.Transaction{
		Type:          txType,
		Amount:        core.Money{Cents: cents},
		Date:          date,
		AccountID:     strings.TrimSpace(req.AccountID),
		ToAccountID:   strings.TrimSpace(req.ToAccountID),
		SubcategoryID: strings.TrimSpace(req.SubcategoryID),
		Description:   strings.TrimSpace(req.Description),
		UserID:        strings.TrimSpace(req.UserID),
		GroupID:       strings.TrimSpace(req.GroupID),
	}

	id, err := s.txs.Create(r.Context(), tx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	tx.ID = id
	writeJSON(w, http.StatusCreated, transactionView(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.txs.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	w.WriteHeader(http.StatusNoContent)
}
