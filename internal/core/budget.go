package core

import (
	"fmt"
	"strings"
)

const (
	BudgetIncome  BudgetType = "INCOME"
	BudgetExpense BudgetType = "EXPENSE"
)

// Budget status tiers, derived and never persisted.
const (
	StatusNone    BudgetStatus = "NONE"
	StatusOnTrack BudgetStatus = "ON_TRACK"
	StatusWarning BudgetStatus = "WARNING"
	StatusOver    BudgetStatus = "OVER"
)

type (
	BudgetType   string
	BudgetStatus string

	// Budget is a persisted monthly target for one subcategory. A missing
	// row for a (subcategory, month, year) key means budgeted = 0, not an
	// error.
	Budget struct {
		ID            string
		SubcategoryID string
		Month         int // 1-12
		Year          int
		Amount        Money
		Type          BudgetType
		Label         string
		GroupID       string
	}
)

// ParseBudgetType maps a stored string onto the closed BudgetType set.
func ParseBudgetType(s string) (BudgetType, error) {
	switch BudgetType(strings.ToUpper(strings.TrimSpace(s))) {
	case BudgetIncome:
		return BudgetIncome, nil
	case BudgetExpense:
		return BudgetExpense, nil
	}
	return "", fmt.Errorf("unrecognized budget type: %q", s)
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.SubcategoryID) == "" {
		return ErrEmptySubcategory
	}
	if b.Month < 1 || b.Month > 12 {
		return fmt.Errorf("invalid month %d", b.Month)
	}
	if b.Year < 1 {
		return fmt.Errorf("invalid year %d", b.Year)
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if _, err := ParseBudgetType(string(b.Type)); err != nil {
		return err
	}
	return nil
}

// DefaultLabel is the label given to a budget cell created through the
// upsert path when no label was supplied.
func DefaultLabel(subcategoryName string, month, year int) string {
	return fmt.Sprintf("%s - %d/%d", subcategoryName, month, year)
}
