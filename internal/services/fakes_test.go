package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"steward/internal/amqp"
	"steward/internal/core"
	"steward/internal/storage"
)

// fakeStore is an in-memory stand-in for the SQLite repository.
type fakeStore struct {
	mu       sync.Mutex
	accounts []core.Account
	anchors  map[string]storage.BalanceAnchor
	txs      []core.Transaction
	deleted  map[string]bool
	budgets  []core.Budget
	subs     []core.Subcategory
	cats     []core.Category
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		anchors: make(map[string]storage.BalanceAnchor),
		deleted: make(map[string]bool),
	}
}

func (f *fakeStore) GetAccount(_ context.Context, id string) (core.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Account{}, storage.ErrNotFound
}

func (f *fakeStore) ListAccounts(_ context.Context) ([]core.Account, error) {
	return append([]core.Account(nil), f.accounts...), nil
}

func (f *fakeStore) CreateAccount(_ context.Context, a core.Account) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		f.nextID++
		a.ID = fmt.Sprintf("acct-%d", f.nextID)
	}
	f.accounts = append(f.accounts, a)
	f.anchors[a.ID] = storage.BalanceAnchor{}
	return a.ID, nil
}

func (f *fakeStore) SetCurrentBalance(_ context.Context, accountID string, amount core.Money, asOf time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.anchors[accountID]; !ok {
		return storage.ErrNotFound
	}
	f.anchors[accountID] = storage.BalanceAnchor{Amount: amount, AsOf: asOf}
	return nil
}

func (f *fakeStore) GetCurrentBalance(_ context.Context, accountID string) (storage.BalanceAnchor, error) {
	anchor, ok := f.anchors[accountID]
	if !ok {
		return storage.BalanceAnchor{}, storage.ErrNotFound
	}
	return anchor, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, filter storage.TxFilter) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []core.Transaction
	for _, tx := range f.txs {
		if f.deleted[tx.ID] {
			continue
		}
		if !filter.From.IsZero() && tx.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && tx.Date.After(filter.To) {
			continue
		}
		if filter.AccountID != "" && tx.AccountID != filter.AccountID && tx.ToAccountID != filter.AccountID {
			continue
		}
		if filter.SubcategoryID != "" && tx.SubcategoryID != filter.SubcategoryID {
			continue
		}
		if filter.GroupID != "" && tx.GroupID != filter.GroupID {
			continue
		}
		if filter.UserID != "" && tx.UserID != filter.UserID {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	for _, tx := range f.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx core.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx.ID == "" {
		tx.ID = "fake-tx"
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}
	f.txs = append(f.txs, tx)
	return tx.ID, nil
}

func (f *fakeStore) SoftDeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.txs {
		if tx.ID == id {
			f.deleted[id] = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListBudgets(_ context.Context, filter storage.BudgetFilter) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range f.budgets {
		if b.Year != filter.Year {
			continue
		}
		if filter.Month != 0 && b.Month != filter.Month {
			continue
		}
		if filter.GroupID != "" && b.GroupID != filter.GroupID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	for i, existing := range f.budgets {
		if existing.SubcategoryID == b.SubcategoryID && existing.Month == b.Month &&
			existing.Year == b.Year && existing.GroupID == b.GroupID {
			f.budgets[i].Amount = b.Amount
			f.budgets[i].Type = b.Type
			return f.budgets[i], nil
		}
	}
	if b.Label == "" {
		b.Label = core.DefaultLabel(b.SubcategoryID, b.Month, b.Year)
	}
	b.ID = "fake-budget"
	f.budgets = append(f.budgets, b)
	return b, nil
}

func (f *fakeStore) ListCategories(_ context.Context) ([]core.Category, error) {
	return append([]core.Category(nil), f.cats...), nil
}

func (f *fakeStore) ListSubcategories(_ context.Context) ([]core.Subcategory, error) {
	return append([]core.Subcategory(nil), f.subs...), nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu      sync.Mutex
	ledger  []*amqp.LedgerChangedMessage
	budgets []*amqp.BudgetChangedMessage
}

func (p *fakePublisher) PublishLedgerChanged(_ context.Context, msg *amqp.LedgerChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ledger = append(p.ledger, msg)
	return nil
}

func (p *fakePublisher) PublishBudgetChanged(_ context.Context, msg *amqp.BudgetChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.budgets = append(p.budgets, msg)
	return nil
}
