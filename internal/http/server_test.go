package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"steward/internal/core"
	"steward/internal/ledger"
	"steward/internal/services"
	"steward/internal/storage"
)

type fakeLedgerViews struct {
	overviewCalls   int
	balanceCalls    int
	agg             ledger.PeriodAggregate
	balances        services.AccountBalances
	createdAccount  core.Account
	recordedBalance core.Money
	err             error
}

func (f *fakeLedgerViews) Overview(context.Context, services.OverviewQuery) (ledger.PeriodAggregate, error) {
	f.overviewCalls++
	return f.agg, f.err
}

func (f *fakeLedgerViews) AccountBalances(_ context.Context, id string, _, _ time.Time) (services.AccountBalances, error) {
	f.balanceCalls++
	if f.err != nil {
		return services.AccountBalances{}, f.err
	}
	if id != f.balances.Account.ID {
		return services.AccountBalances{}, storage.ErrNotFound
	}
	return f.balances, nil
}

func (f *fakeLedgerViews) ListAccountsWithBalances(context.Context) ([]services.AccountBalances, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []services.AccountBalances{f.balances}, nil
}

func (f *fakeLedgerViews) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	if f.err != nil {
		return core.Account{}, f.err
	}
	a.ID = "A-new"
	f.createdAccount = a
	return a, nil
}

func (f *fakeLedgerViews) RecordBalance(_ context.Context, id string, amount core.Money, asOf time.Time) error {
	if f.err != nil {
		return f.err
	}
	if id != f.balances.Account.ID {
		return storage.ErrNotFound
	}
	f.recordedBalance = amount
	return nil
}

type fakeBudgetViews struct {
	cellCalls int
	cells     []ledger.Cell
	report    services.YearReport
	stored    core.Budget
	err       error
}

func (f *fakeBudgetViews) MonthCells(context.Context, int, int, string) ([]ledger.Cell, error) {
	f.cellCalls++
	return f.cells, f.err
}

func (f *fakeBudgetViews) YearReport(context.Context, int, string) (services.YearReport, error) {
	return f.report, f.err
}

func (f *fakeBudgetViews) Upsert(_ context.Context, b core.Budget) (core.Budget, error) {
	if f.err != nil {
		return core.Budget{}, f.err
	}
	f.stored = b
	f.stored.ID = "B1"
	return f.stored, nil
}

type fakeTxWriter struct {
	created []core.Transaction
	deleted []string
	listed  []core.Transaction
	err     error
}

func (f *fakeTxWriter) Create(_ context.Context, tx core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, tx)
	return "T1", nil
}

func (f *fakeTxWriter) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTxWriter) List(context.Context, storage.TxFilter) ([]core.Transaction, error) {
	return f.listed, f.err
}

func newTestServer(t *testing.T, lv *fakeLedgerViews, bv *fakeBudgetViews, tw *fakeTxWriter) *Server {
	t.Helper()
	s := NewServer(":0", lv, bv, tw, time.UTC, Options{CacheTTL: time.Minute, CacheSize: 16})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &fakeLedgerViews{}, &fakeBudgetViews{}, &fakeTxWriter{})

	rec := doRequest(s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}
}

func TestOverviewCaches(t *testing.T) {
	lv := &fakeLedgerViews{agg: ledger.PeriodAggregate{
		TotalIncome: core.Money{Cents: 20000}, Net: core.Money{Cents: 20000},
	}}
	s := newTestServer(t, lv, &fakeBudgetViews{}, &fakeTxWriter{})

	for i := 0; i < 2; i++ {
		rec := doRequest(s, http.MethodGet, "/api/overview?from=2026-04-01&to=2026-04-30", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"total_income":"200.00"`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	}
	if lv.overviewCalls != 1 {
		t.Fatalf("expected 1 service call, got %d", lv.overviewCalls)
	}
}

func TestOverviewRejectsBadRange(t *testing.T) {
	s := newTestServer(t, &fakeLedgerViews{}, &fakeBudgetViews{}, &fakeTxWriter{})

	rec := doRequest(s, http.MethodGet, "/api/overview?from=2026-04-30&to=2026-04-01", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = doRequest(s, http.MethodGet, "/api/overview?from=not-a-date", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountBalancesNotFound(t *testing.T) {
	lv := &fakeLedgerViews{balances: services.AccountBalances{
		Account: core.Account{ID: "cash", Name: "Offering Box", Type: core.AccountCash},
	}}
	s := newTestServer(t, lv, &fakeBudgetViews{}, &fakeTxWriter{})

	rec := doRequest(s, http.MethodGet, "/api/accounts/ghost/balances", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/accounts/cash/balances", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAccount(t *testing.T) {
	lv := &fakeLedgerViews{}
	s := newTestServer(t, lv, &fakeBudgetViews{}, &fakeTxWriter{})

	body := `{"name":"Parish Card","type":"credit","debit_method":"invoice"}`
	rec := doRequest(s, http.MethodPost, "/api/accounts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if lv.createdAccount.Type != core.AccountCredit || lv.createdAccount.DebitMethod != core.DebitInvoice {
		t.Fatalf("unexpected account: %+v", lv.createdAccount)
	}
	if !strings.Contains(rec.Body.String(), `"id":"A-new"`) ||
		!strings.Contains(rec.Body.String(), `"balance":"0.00"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	s := newTestServer(t, &fakeLedgerViews{}, &fakeBudgetViews{}, &fakeTxWriter{})

	rec := doRequest(s, http.MethodPost, "/api/accounts", `{"name":"X","type":"crypto"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRecordBalance(t *testing.T) {
	lv := &fakeLedgerViews{balances: services.AccountBalances{
		Account: core.Account{ID: "cash", Name: "Offering Box", Type: core.AccountCash},
	}}
	s := newTestServer(t, lv, &fakeBudgetViews{}, &fakeTxWriter{})

	rec := doRequest(s, http.MethodPut, "/api/accounts/cash/balance", `{"amount":"-42.50"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d %s", rec.Code, rec.Body.String())
	}
	if lv.recordedBalance.Cents != -4250 {
		t.Fatalf("expected -4250 cents, got %d", lv.recordedBalance.Cents)
	}

	rec = doRequest(s, http.MethodPut, "/api/accounts/ghost/balance", `{"amount":"1.00"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	tw := &fakeTxWriter{}
	s := newTestServer(t, &fakeLedgerViews{}, &fakeBudgetViews{}, tw)

	body := `{"type":"expense","amount":"12.34","date":"2026-04-07","account_id":"cash","subcategory_id":"missions"}`
	rec := doRequest(s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if len(tw.created) != 1 {
		t.Fatalf("expected 1 create, got %d", len(tw.created))
	}
	got := tw.created[0]
	if got.Type != core.TxExpense || got.Amount.Cents != 1234 || got.AccountID != "cash" {
		t.Fatalf("unexpected created transaction: %+v", got)
	}
	if !strings.Contains(rec.Body.String(), `"id":"T1"`) {
		t.Fatalf("response missing assigned id: %s", rec.Body.String())
	}
}

func TestCreateTransactionRejectsBadAmount(t *testing.T) {
	tw := &fakeTxWriter{}
	s := newTestServer(t, &fakeLedgerViews{}, &fakeBudgetViews{}, tw)

	for _, amount := range []string{"-5", "abc", ""} {
		body := `{"type":"EXPENSE","amount":"` + amount + `","date":"2026-04-07","account_id":"cash","subcategory_id":"m"}`
		rec := doRequest(s, http.MethodPost, "/api/transactions", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("amount %q: expected 400, got %d", amount, rec.Code)
		}
	}
	if len(tw.created) != 0 {
		t.Fatalf("nothing should reach the writer")
	}
}

func TestCreateInvalidatesCaches(t *testing.T) {
	lv := &fakeLedgerViews{}
	s := newTestServer(t, lv, &fakeBudgetViews{}, &fakeTxWriter{})

	doRequest(s, http.MethodGet, "/api/overview", "")
	doRequest(s, http.MethodGet, "/api/overview", "")
	if lv.overviewCalls != 1 {
		t.Fatalf("expected cached overview, got %d calls", lv.overviewCalls)
	}

	body := `{"type":"INCOME","amount":"5.00","date":"2026-04-07","account_id":"cash","subcategory_id":"tithes"}`
	if rec := doRequest(s, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}

	doRequest(s, http.MethodGet, "/api/overview", "")
	if lv.overviewCalls != 2 {
		t.Fatalf("expected cache purge after write, got %d calls", lv.overviewCalls)
	}
}

func TestDeleteTransaction(t *testing.T) {
	tw := &fakeTxWriter{}
	s := newTestServer(t, &fakeLedgerViews{}, &fakeBudgetViews{}, tw)

	rec := doRequest(s, http.MethodDelete, "/api/transactions/T1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(tw.deleted) != 1 || tw.deleted[0] != "T1" {
		t.Fatalf("unexpected deletes: %v", tw.deleted)
	}
}

func TestDeleteUnknownTransaction(t *testing.T) {
	tw := &fakeTxWriter{err: storage.ErrNotFound}
	s := newTestServer(t, &fakeLedgerViews{}, &fakeBudgetViews{}, tw)

	rec := doRequest(s, http.MethodDelete, "/api/transactions/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpsertBudget(t *testing.T) {
	bv := &fakeBudgetViews{}
	s := newTestServer(t, &fakeLedgerViews{}, bv, &fakeTxWriter{})

	body := `{"amount":"250.00","type":"EXPENSE","month":5,"year":2026}`
	rec := doRequest(s, http.MethodPut, "/api/budgets/missions", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if bv.stored.SubcategoryID != "missions" || bv.stored.Amount.Cents != 25000 {
		t.Fatalf("unexpected stored budget: %+v", bv.stored)
	}
	if !strings.Contains(rec.Body.String(), `"amount":"250.00"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUpsertBudgetRejectsBadMonth(t *testing.T) {
	bv := &fakeBudgetViews{}
	s := newTestServer(t, &fakeLedgerViews{}, bv, &fakeTxWriter{})

	body := `{"amount":"250.00","type":"EXPENSE","month":13,"year":2026}`
	rec := doRequest(s, http.MethodPut, "/api/budgets/missions", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBudgetSummary(t *testing.T) {
	bv := &fakeBudgetViews{report: services.YearReport{
		Year: 2026,
		Cells: []ledger.Cell{{
			SubcategoryID: "missions", Month: 4, Year: 2026, Type: core.BudgetExpense,
			Budgeted: core.Money{Cents: 20000}, Actual: core.Money{Cents: 18000},
			Status: core.StatusOnTrack,
		}},
	}}
	s := newTestServer(t, &fakeLedgerViews{}, bv, &fakeTxWriter{})

	rec := doRequest(s, http.MethodGet, "/api/budgets/summary?year=2026", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ON_TRACK"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
