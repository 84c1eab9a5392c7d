package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"steward/internal/core"
)

type upsertBudgetRequest struct {
	Amount  string `json:"amount"`
	Type    string `json:"type"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
	Label   string `json:"label"`
	GroupID string `json:"group_id"`
}

func (s *Server) handleListBudgetCells(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	year, month, err := parseYearMonth(query, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	groupID := strings.TrimSpace(query.Get("group_id"))

	key := fmt.Sprintf("cells|%d|%d|%s", year, month, groupID)
	if cells, ok := s.cellsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cellViews(cells))
		return
	}

	cells, err := s.budgets.MonthCells(r.Context(), year, month, groupID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.cellsCache.Set(key, cells)
	writeJSON(w, http.StatusOK, cellViews(cells))
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	year, _, err := parseYearMonth(query, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	groupID := strings.TrimSpace(query.Get("group_id"))

	key := fmt.Sprintf("summary|%d|%s", year, groupID)
	if report, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, yearReportView(report))
		return
	}

	report, err := s.budgets.YearReport(r.Context(), year, groupID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.summaryCache.Set(key, report)
	writeJSON(w, http.StatusOK, yearReportView(report))
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	subcategoryID := mux.Vars(r)["subcategoryId"]

	var req upsertBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	budgetType, err := core.ParseBudgetType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: use a non-negative decimal like 100.00")
		return
	}

	b := core.Budget{
		SubcategoryID: subcategoryID,
		Month:         req.Month,
		Year:          req.Year,
		Amount:        core.Money{Cents: cents},
		Type:          budgetType,
		Label:         strings.TrimSpace(req.Label),
		GroupID:       strings.TrimSpace(req.GroupID),
	}
	if err := b.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := s.budgets.Upsert(r.Context(), b)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusOK, budgetView(stored))
}
