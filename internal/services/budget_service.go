package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"steward/internal/amqp"
	"steward/internal/core"
	"steward/internal/ledger"
	"steward/internal/storage"
)

// BudgetService reconciles persisted budget cells against actuals
// derived from the transaction log, and owns the budget-cell upsert.
type BudgetService struct {
	budgets  BudgetStore
	txs      TransactionLedger
	registry AccountRegistry
	taxonomy Taxonomy
	events   Publisher
	loc      *time.Location
}

func NewBudgetService(budgets BudgetStore, txs TransactionLedger, registry AccountRegistry, taxonomy Taxonomy, events Publisher, loc *time.Location) *BudgetService {
	if loc == nil {
		loc = time.UTC
	}
	return &BudgetService{
		budgets:  budgets,
		txs:      txs,
		registry: registry,
		taxonomy: taxonomy,
		events:   events,
		loc:      loc,
	}
}

// MonthCells reconciles one month's budget cells. Month 0 covers the
// whole year.
func (s *BudgetService) MonthCells(ctx context.Context, year, month int, groupID string) ([]ledger.Cell, error) {
	from, to := s.periodRange(year, month)

	var (
		budgets  []core.Budget
		accounts []core.Account
		txs      []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gctx, storage.BudgetFilter{Year: year, Month: month, GroupID: groupID})
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.registry.ListAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.txs.ListTransactions(gctx, storage.TxFilter{From: from, To: to, GroupID: groupID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch reconciliation snapshot: %w", err)
	}

	actuals, err := ledger.ActualsFromTransactions(txs, ledger.LookupFrom(accounts), s.loc)
	if err != nil {
		return nil, err
	}
	return ledger.Reconcile(budgets, actuals), nil
}

// YearReport is the yearly budget view: all cells, per-subcategory
// totals and averages, and category rollups.
type YearReport struct {
	Year       int
	Cells      []ledger.Cell
	Summaries  []ledger.YearSummary
	Categories []ledger.CategoryCell
}

// YearReport reconciles a full year and folds it into summaries and
// category rollups.
func (s *BudgetService) YearReport(ctx context.Context, year int, groupID string) (YearReport, error) {
	cells, err := s.MonthCells(ctx, year, 0, groupID)
	if err != nil {
		return YearReport{}, err
	}

	subs, err := s.taxonomy.ListSubcategories(ctx)
	if err != nil {
		return YearReport{}, fmt.Errorf("list subcategories: %w", err)
	}
	categoryOf := make(map[string]string, len(subs))
	for _, sub := range subs {
		categoryOf[sub.ID] = sub.CategoryID
	}

	return YearReport{
		Year:       year,
		Cells:      cells,
		Summaries:  ledger.SummarizeYear(cells, year),
		Categories: ledger.RollupByCategory(cells, categoryOf),
	}, nil
}

// Upsert writes one budget cell and publishes a change event. The write
// is last-write-wins at the store; the event is best-effort and never
// fails the request.
func (s *BudgetService) Upsert(ctx context.Context, b core.Budget) (core.Budget, error) {
	stored, err := s.budgets.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	if s.events != nil {
		msg := &amqp.BudgetChangedMessage{
			SubcategoryID: stored.SubcategoryID,
			Month:         stored.Month,
			Year:          stored.Year,
			GroupID:       stored.GroupID,
		}
		if err := s.events.PublishBudgetChanged(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget change event",
				"subcategory_id", stored.SubcategoryID, "error", err)
		}
	}
	return stored, nil
}

// periodRange is [first instant, last instant] of a month, or of the
// whole year when month is 0, in the service's location.
func (s *BudgetService) periodRange(year, month int) (time.Time, time.Time) {
	if month == 0 {
		from := time.Date(year, 1, 1, 0, 0, 0, 0, s.loc)
		return from, from.AddDate(1, 0, 0).Add(-time.Nanosecond)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond)
}
