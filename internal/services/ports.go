// Package services orchestrates the ledger engine over snapshots fetched
// from storage, and owns the two stateful operations in the system:
// transaction writes and budget-cell upserts.
package services

import (
	"context"
	"time"

	"steward/internal/amqp"
	"steward/internal/core"
	"steward/internal/storage"
)

// Ports for the collaborators the engine derives from. The SQLite
// repository implements all of them; tests use in-memory fakes.
type (
	AccountRegistry interface {
		GetAccount(ctx context.Context, id string) (core.Account, error)
		ListAccounts(ctx context.Context) ([]core.Account, error)
		CreateAccount(ctx context.Context, a core.Account) (string, error)
	}

	TransactionLedger interface {
		ListTransactions(ctx context.Context, f storage.TxFilter) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, tx core.Transaction) (string, error)
		SoftDeleteTransaction(ctx context.Context, id string) error
	}

	BalanceSource interface {
		GetCurrentBalance(ctx context.Context, accountID string) (storage.BalanceAnchor, error)
		SetCurrentBalance(ctx context.Context, accountID string, amount core.Money, asOf time.Time) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, f storage.BudgetFilter) ([]core.Budget, error)
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	}

	Taxonomy interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		ListSubcategories(ctx context.Context) ([]core.Subcategory, error)
	}

	// Publisher emits change events for the report worker. A nil Publisher
	// disables eventing; publish failures never fail the write that
	// triggered them.
	Publisher interface {
		PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
		PublishBudgetChanged(ctx context.Context, msg *amqp.BudgetChangedMessage) error
	}
)
