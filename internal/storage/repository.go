// Package storage persists accounts, transactions and budgets in SQLite
// and exposes the read models the ledger engine derives from. Derived
// state (effective types, day aggregates, replayed balances, budget
// statuses) is never stored here; only raw records and the per-account
// current-balance anchor are.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"steward/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetAccount resolves one account. ErrNotFound is not fatal to callers:
// the classifier treats unresolved accounts as CASH-like.
func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, debit_method, user_id, group_id
		 FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// ListAccounts returns every account in the registry.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, debit_method, user_id, group_id
		 FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateAccount inserts an account with a zero current balance and
// returns its id.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := a.Validate(); err != nil {
		return "", err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, type, debit_method, user_id, group_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Type), string(a.DebitMethod), a.UserID, a.GroupID)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "id", a.ID, "type", a.Type)
	return a.ID, nil
}

// BalanceAnchor is the externally observed "current balance" for one
// account, the single value every historical balance is replayed from.
type BalanceAnchor struct {
	Amount core.Money
	AsOf   time.Time
}

// GetCurrentBalance returns the account's balance anchor.
func (r *SQLiteRepository) GetCurrentBalance(ctx context.Context, accountID string) (BalanceAnchor, error) {
	var (
		cents int64
		asOf  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT current_balance_cents, balance_as_of FROM accounts WHERE id = ?`,
		accountID).Scan(&cents, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return BalanceAnchor{}, ErrNotFound
	}
	if err != nil {
		return BalanceAnchor{}, fmt.Errorf("get current balance: %w", err)
	}
	return BalanceAnchor{Amount: core.Money{Cents: cents}, AsOf: asOf.Time}, nil
}

// SetCurrentBalance records a newly observed balance for the account.
func (r *SQLiteRepository) SetCurrentBalance(ctx context.Context, accountID string, amount core.Money, asOf time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET current_balance_cents = ?, balance_as_of = ? WHERE id = ?`,
		amount.Cents, asOf, accountID)
	if err != nil {
		return fmt.Errorf("set current balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a           core.Account
		typ, method string
	)
	err := row.Scan(&a.ID, &a.Name, &typ, &method, &a.UserID, &a.GroupID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	if a.Type, err = core.ParseAccountType(typ); err != nil {
		return core.Account{}, err
	}
	if a.DebitMethod, err = core.ParseDebitMethod(method); err != nil {
		return core.Account{}, err
	}
	return a, nil
}
