package http

import (
	"time"

	"steward/internal/core"
	"steward/internal/ledger"
	"steward/internal/services"
)

// JSON shapes for the API. Amounts are decimal strings at the boundary;
// cents never leak into responses.

type accountJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	DebitMethod string `json:"debit_method,omitempty"`
	Balance     string `json:"balance"`
	BalanceAsOf string `json:"balance_as_of,omitempty"`
}

type transactionJSON struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	AccountID     string `json:"account_id"`
	ToAccountID   string `json:"to_account_id,omitempty"`
	SubcategoryID string `json:"subcategory_id,omitempty"`
	Description   string `json:"description,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	GroupID       string `json:"group_id,omitempty"`
}

type dayJSON struct {
	Date         string            `json:"date"`
	TotalIncome  string            `json:"total_income"`
	TotalExpense string            `json:"total_expense"`
	Net          string            `json:"net"`
	Transactions []transactionJSON `json:"transactions"`
}

type overviewJSON struct {
	TotalIncome  string    `json:"total_income"`
	TotalExpense string    `json:"total_expense"`
	Net          string    `json:"net"`
	Days         []dayJSON `json:"days"`
}

type balanceEntryJSON struct {
	Transaction  transactionJSON `json:"transaction"`
	BalanceAfter string          `json:"balance_after"`
}

type accountBalancesJSON struct {
	Account accountJSON        `json:"account"`
	Entries []balanceEntryJSON `json:"entries"`
}

type cellJSON struct {
	SubcategoryID string `json:"subcategory_id"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	Type          string `json:"type"`
	Budgeted      string `json:"budgeted"`
	Actual        string `json:"actual"`
	Status        string `json:"status"`
}

type yearSummaryJSON struct {
	SubcategoryID string `json:"subcategory_id"`
	Year          int    `json:"year"`
	Type          string `json:"type"`
	TotalBudgeted string `json:"total_budgeted"`
	TotalActual   string `json:"total_actual"`
	AvgBudgeted   string `json:"avg_budgeted"`
	AvgActual     string `json:"avg_actual"`
}

type categoryCellJSON struct {
	CategoryID string `json:"category_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Type       string `json:"type"`
	Budgeted   string `json:"budgeted"`
	Actual     string `json:"actual"`
	Status     string `json:"status"`
}

type yearReportJSON struct {
	Year       int                `json:"year"`
	Cells      []cellJSON         `json:"cells"`
	Summaries  []yearSummaryJSON  `json:"summaries"`
	Categories []categoryCellJSON `json:"categories"`
}

type budgetJSON struct {
	ID            string `json:"id"`
	SubcategoryID string `json:"subcategory_id"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	Label         string `json:"label,omitempty"`
	GroupID       string `json:"group_id,omitempty"`
}

func transactionView(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:            tx.ID,
		Type:          string(tx.Type),
		Amount:        tx.Amount.String(),
		Date:          tx.Date.Format(time.RFC3339),
		AccountID:     tx.AccountID,
		ToAccountID:   tx.ToAccountID,
		SubcategoryID: tx.SubcategoryID,
		Description:   tx.Description,
		UserID:        tx.UserID,
		GroupID:       tx.GroupID,
	}
}

func accountView(ab services.AccountBalances) accountJSON {
	out := accountJSON{
		ID:          ab.Account.ID,
		Name:        ab.Account.Name,
		Type:        string(ab.Account.Type),
		DebitMethod: string(ab.Account.DebitMethod),
		Balance:     ab.Current.Amount.String(),
	}
	if !ab.Current.AsOf.IsZero() {
		out.BalanceAsOf = ab.Current.AsOf.Format(time.RFC3339)
	}
	return out
}

func overviewView(agg ledger.PeriodAggregate) overviewJSON {
	out := overviewJSON{
		TotalIncome:  agg.TotalIncome.String(),
		TotalExpense: agg.TotalExpense.String(),
		Net:          agg.Net.String(),
		Days:         make([]dayJSON, 0, len(agg.Days)),
	}
	for _, d := range agg.Days {
		day := dayJSON{
			Date:         d.Date.Format("2006-01-02"),
			TotalIncome:  d.TotalIncome.String(),
			TotalExpense: d.TotalExpense.String(),
			Net:          d.Net.String(),
			Transactions: make([]transactionJSON, 0, len(d.Transactions)),
		}
		for _, tx := range d.Transactions {
			day.Transactions = append(day.Transactions, transactionView(tx))
		}
		out.Days = append(out.Days, day)
	}
	return out
}

func balancesView(ab services.AccountBalances) accountBalancesJSON {
	out := accountBalancesJSON{
		Account: accountView(ab),
		Entries: make([]balanceEntryJSON, 0, len(ab.Entries)),
	}
	for _, e := range ab.Entries {
		out.Entries = append(out.Entries, balanceEntryJSON{
			Transaction:  transactionView(e.Transaction),
			BalanceAfter: e.BalanceAfter.String(),
		})
	}
	return out
}

func cellViews(cells []ledger.Cell) []cellJSON {
	out := make([]cellJSON, 0, len(cells))
	for _, c := range cells {
		out = append(out, cellJSON{
			SubcategoryID: c.SubcategoryID,
			Month:         c.Month,
			Year:          c.Year,
			Type:          string(c.Type),
			Budgeted:      c.Budgeted.String(),
			Actual:        c.Actual.String(),
			Status:        string(c.Status),
		})
	}
	return out
}

func yearReportView(r services.YearReport) yearReportJSON {
	out := yearReportJSON{
		Year:       r.Year,
		Cells:      cellViews(r.Cells),
		Summaries:  make([]yearSummaryJSON, 0, len(r.Summaries)),
		Categories: make([]categoryCellJSON, 0, len(r.Categories)),
	}
	for _, s := range r.Summaries {
		out.Summaries = append(out.Summaries, yearSummaryJSON{
			SubcategoryID: s.SubcategoryID,
			Year:          s.Year,
			Type:          string(s.Type),
			TotalBudgeted: s.TotalBudgeted.String(),
			TotalActual:   s.TotalActual.String(),
			AvgBudgeted:   s.AvgBudgeted.String(),
			AvgActual:     s.AvgActual.String(),
		})
	}
	for _, c := range r.Categories {
		out.Categories = append(out.Categories, categoryCellJSON{
			CategoryID: c.CategoryID,
			Month:      c.Month,
			Year:       c.Year,
			Type:       string(c.Type),
			Budgeted:   c.Budgeted.String(),
			Actual:     c.Actual.String(),
			Status:     string(c.Status),
		})
	}
	return out
}

func budgetView(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:            b.ID,
		SubcategoryID: b.SubcategoryID,
		Month:         b.Month,
		Year:          b.Year,
		Amount:        b.Amount.String(),
		Type:          string(b.Type),
		Label:         b.Label,
		GroupID:       b.GroupID,
	}
}
