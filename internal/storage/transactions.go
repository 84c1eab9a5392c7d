package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"steward/internal/core"
)

// TxFilter narrows a transaction listing. Zero values mean "no filter".
// AccountID matches either leg of a transfer so an account's full
// history, incoming legs included, can be fetched in one pass.
type TxFilter struct {
	From          time.Time
	To            time.Time
	AccountID     string
	SubcategoryID string
	UserID        string
	GroupID       string
}

// ListTransactions returns non-deleted transactions matching the filter,
// newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TxFilter) ([]core.Transaction, error) {
	var (
		where = []string{"deleted_at IS NULL"}
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "occurred_at <= ?")
		args = append(args, f.To)
	}
	if f.AccountID != "" {
		where = append(where, "(account_id = ? OR to_account_id = ?)")
		args = append(args, f.AccountID, f.AccountID)
	}
	if f.SubcategoryID != "" {
		where = append(where, "subcategory_id = ?")
		args = append(args, f.SubcategoryID)
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, f.GroupID)
	}

	query := `SELECT id, type, amount_cents, occurred_at, account_id, to_account_id,
	       subcategory_id, description, user_id, group_id
	  FROM transactions WHERE ` + strings.Join(where, " AND ") + `
	  ORDER BY occurred_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// GetTransaction returns one transaction by id, deleted or not.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, amount_cents, occurred_at, account_id, to_account_id,
		        subcategory_id, description, user_id, group_id
		   FROM transactions WHERE id = ?`, id)
	return scanTransaction(row)
}

// CreateTransaction validates and inserts a transaction, assigning an id
// when none is given. Returns the stored id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return "", err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, type, amount_cents, occurred_at, account_id,
		        to_account_id, subcategory_id, description, user_id, group_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), tx.Amount.Cents, tx.Date, tx.AccountID,
		tx.ToAccountID, tx.SubcategoryID, tx.Description, tx.UserID, tx.GroupID)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"account_id", tx.AccountID)
	return tx.ID, nil
}

// SoftDeleteTransaction marks a transaction deleted without losing it.
func (r *SQLiteRepository) SoftDeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction soft deleted", "id", id)
	return nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx    core.Transaction
		typ   string
		cents int64
	)
	err := row.Scan(&tx.ID, &typ, &cents, &tx.Date, &tx.AccountID, &tx.ToAccountID,
		&tx.SubcategoryID, &tx.Description, &tx.UserID, &tx.GroupID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	if tx.Type, err = core.ParseTransactionType(typ); err != nil {
		return core.Transaction{}, err
	}
	tx.Amount = core.Money{Cents: cents}
	return tx, nil
}
