package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"steward/internal/core"
)

// BudgetFilter narrows a budget listing. Month 0 means the whole year.
type BudgetFilter struct {
	Year    int
	Month   int
	GroupID string
}

// ListBudgets returns budget cells for a year, optionally narrowed to a
// month and group.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, f BudgetFilter) ([]core.Budget, error) {
	var (
		where = []string{"year = ?"}
		args  = []any{f.Year}
	)
	if f.Month != 0 {
		where = append(where, "month = ?")
		args = append(args, f.Month)
	}
	if f.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, f.GroupID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, subcategory_id, month, year, amount_cents, type, label, group_id
		   FROM budgets WHERE `+strings.Join(where, " AND ")+`
		  ORDER BY year, month, subcategory_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var (
			b     core.Budget
			typ   string
			cents int64
		)
		if err := rows.Scan(&b.ID, &b.SubcategoryID, &b.Month, &b.Year, &cents, &typ, &b.Label, &b.GroupID); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Type, err = core.ParseBudgetType(typ); err != nil {
			return nil, err
		}
		b.Amount = core.Money{Cents: cents}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// UpsertBudget updates the (subcategory, month, year, group) cell's
// amount, or creates the cell with a derived default label when no row
// exists. Last write wins; there is no conflict detection at this layer.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if b.Label == "" {
		var subName string
		err := r.db.QueryRowContext(ctx,
			`SELECT name FROM subcategories WHERE id = ?`, b.SubcategoryID).Scan(&subName)
		if errors.Is(err, sql.ErrNoRows) {
			subName = b.SubcategoryID
		} else if err != nil {
			return core.Budget{}, fmt.Errorf("resolve subcategory name: %w", err)
		}
		b.Label = core.DefaultLabel(subName, b.Month, b.Year)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, subcategory_id, month, year, amount_cents, type, label, group_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (subcategory_id, month, year, group_id)
		 DO UPDATE SET amount_cents = excluded.amount_cents,
		               type = excluded.type,
		               updated_at = CURRENT_TIMESTAMP`,
		b.ID, b.SubcategoryID, b.Month, b.Year, b.Amount.Cents, string(b.Type), b.Label, b.GroupID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	// Re-read so the caller sees the stored row, id and label included.
	row := r.db.QueryRowContext(ctx,
		`SELECT id, subcategory_id, month, year, amount_cents, type, label, group_id
		   FROM budgets WHERE subcategory_id = ? AND month = ? AND year = ? AND group_id = ?`,
		b.SubcategoryID, b.Month, b.Year, b.GroupID)

	var (
		stored core.Budget
		typ    string
		cents  int64
	)
	if err := row.Scan(&stored.ID, &stored.SubcategoryID, &stored.Month, &stored.Year,
		&cents, &typ, &stored.Label, &stored.GroupID); err != nil {
		return core.Budget{}, fmt.Errorf("read back budget: %w", err)
	}
	if stored.Type, err = core.ParseBudgetType(typ); err != nil {
		return core.Budget{}, err
	}
	stored.Amount = core.Money{Cents: cents}

	slog.InfoContext(ctx, "Budget cell upserted",
		"subcategory_id", stored.SubcategoryID,
		"month", stored.Month,
		"year", stored.Year,
		"amount_cents", stored.Amount.Cents)
	return stored, nil
}
