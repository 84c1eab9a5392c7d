package ledger

import (
	"sort"
	"time"

	"steward/internal/core"
)

type (
	// ActualRow is one aggregated actual total for a subcategory and
	// month. In shared/group contexts several rows may exist for the same
	// key, one per contributing member; Reconcile sums them.
	ActualRow struct {
		SubcategoryID string
		Month         int
		Year          int
		Type          core.BudgetType
		Total         core.Money
	}

	// Cell is one reconciled budget-vs-actual cell. A missing budget row
	// reconciles as budgeted = 0, never as an error.
	Cell struct {
		SubcategoryID string
		Month         int
		Year          int
		Type          core.BudgetType
		Budgeted      core.Money
		Actual        core.Money
		Status        core.BudgetStatus
	}

	// YearSummary is a subcategory's 12-month totals and averages,
	// computed independently for budgeted and actual amounts.
	YearSummary struct {
		SubcategoryID string
		Year          int
		Type          core.BudgetType
		TotalBudgeted core.Money
		AvgBudgeted   core.Money
		TotalActual   core.Money
		AvgActual     core.Money
	}

	// CategoryCell is a category-level rollup: child subcategory sums with
	// the same status rule applied to the summed amounts.
	CategoryCell struct {
		CategoryID string
		Month      int
		Year       int
		Type       core.BudgetType
		Budgeted   core.Money
		Actual     core.Money
		Status     core.BudgetStatus
	}

	cellKey struct {
		sub   string
		month int
		year  int
	}
)

// StatusFor derives the status tier for one budgeted/actual pair. The
// rule is asymmetric by entity type: income wants to reach the budget,
// expense wants to stay under it.
//
// A zero budgeted amount substitutes 1 currency unit in the percentage
// to avoid dividing by zero, which makes any positive actual against a
// zero budget land in OVER. That matches the historical behavior and is
// kept as-is.
func StatusFor(budgeted, actual core.Money, typ core.BudgetType) core.BudgetStatus {
	if budgeted.Cents == 0 && actual.Cents == 0 {
		return core.StatusNone
	}

	base := budgeted.Units()
	if base == 0 {
		base = 1
	}
	percentage := actual.Units() / base * 100

	if typ == core.BudgetIncome {
		switch {
		case percentage >= 100:
			return core.StatusOnTrack
		case percentage >= 85:
			return core.StatusWarning
		default:
			return core.StatusOver
		}
	}
	switch {
	case percentage <= 100:
		return core.StatusOnTrack
	case percentage < 120:
		return core.StatusWarning
	default:
		return core.StatusOver
	}
}

// Reconcile joins persisted budget cells with aggregated actuals per
// (subcategory, month, year) key and derives each cell's status. The
// output covers the union of both inputs and is sorted by year, month
// and subcategory.
func Reconcile(budgets []core.Budget, actuals []ActualRow) []Cell {
	cells := make(map[cellKey]*Cell)

	for _, b := range budgets {
		key := cellKey{sub: b.SubcategoryID, month: b.Month, year: b.Year}
		c, ok := cells[key]
		if !ok {
			c = &Cell{SubcategoryID: b.SubcategoryID, Month: b.Month, Year: b.Year, Type: b.Type}
			cells[key] = c
		}
		c.Budgeted = c.Budgeted.Add(b.Amount)
		c.Type = b.Type
	}

	for _, a := range actuals {
		key := cellKey{sub: a.SubcategoryID, month: a.Month, year: a.Year}
		c, ok := cells[key]
		if !ok {
			c = &Cell{SubcategoryID: a.SubcategoryID, Month: a.Month, Year: a.Year, Type: a.Type}
			cells[key] = c
		}
		c.Actual = c.Actual.Add(a.Total)
	}

	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		c.Status = StatusFor(c.Budgeted, c.Actual, c.Type)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].SubcategoryID < out[j].SubcategoryID
	})
	return out
}

// SummarizeYear folds one year's cells into per-subcategory totals and
// monthly averages (total / 12, whether or not all 12 months have cells).
func SummarizeYear(cells []Cell, year int) []YearSummary {
	bySub := make(map[string]*YearSummary)
	for _, c := range cells {
		if c.Year != year {
			continue
		}
		s, ok := bySub[c.SubcategoryID]
		if !ok {
			s = &YearSummary{SubcategoryID: c.SubcategoryID, Year: year, Type: c.Type}
			bySub[c.SubcategoryID] = s
		}
		s.TotalBudgeted = s.TotalBudgeted.Add(c.Budgeted)
		s.TotalActual = s.TotalActual.Add(c.Actual)
	}

	out := make([]YearSummary, 0, len(bySub))
	for _, s := range bySub {
		s.AvgBudgeted = core.Money{Cents: s.TotalBudgeted.Cents / 12}
		s.AvgActual = core.Money{Cents: s.TotalActual.Cents / 12}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubcategoryID < out[j].SubcategoryID })
	return out
}

// RollupByCategory sums child subcategory cells into category-level cells
// and applies the status rule to the summed amounts. Cells whose
// subcategory is missing from the mapping are skipped.
func RollupByCategory(cells []Cell, categoryOf map[string]string) []CategoryCell {
	type catKey struct {
		cat   string
		month int
		year  int
	}

	rolled := make(map[catKey]*CategoryCell)
	for _, c := range cells {
		cat, ok := categoryOf[c.SubcategoryID]
		if !ok {
			continue
		}
		key := catKey{cat: cat, month: c.Month, year: c.Year}
		r, ok := rolled[key]
		if !ok {
			r = &CategoryCell{CategoryID: cat, Month: c.Month, Year: c.Year, Type: c.Type}
			rolled[key] = r
		}
		r.Budgeted = r.Budgeted.Add(c.Budgeted)
		r.Actual = r.Actual.Add(c.Actual)
	}

	out := make([]CategoryCell, 0, len(rolled))
	for _, r := range rolled {
		r.Status = StatusFor(r.Budgeted, r.Actual, r.Type)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

// ActualsFromTransactions derives per-subcategory monthly actual rows
// from the transaction log through the classifier, so reconciliation and
// period aggregation agree on what counts as income or expense.
// Transactions without a subcategory and entries whose effective type is
// TRANSFER_LIKE or UPDATE contribute nothing.
func ActualsFromTransactions(txs []core.Transaction, lookup AccountLookup, loc *time.Location) ([]ActualRow, error) {
	if loc == nil {
		loc = time.UTC
	}

	type actKey struct {
		sub   string
		month int
		year  int
	}
	rows := make(map[actKey]*ActualRow)

	for _, tx := range txs {
		if tx.SubcategoryID == "" {
			continue
		}
		eff, err := Classify(tx, lookup)
		if err != nil {
			return nil, err
		}

		var typ core.BudgetType
		switch eff {
		case core.EffectIncome:
			typ = core.BudgetIncome
		case core.EffectExpense:
			typ = core.BudgetExpense
		default:
			continue
		}

		local := tx.Date.In(loc)
		key := actKey{sub: tx.SubcategoryID, month: int(local.Month()), year: local.Year()}
		r, ok := rows[key]
		if !ok {
			r = &ActualRow{SubcategoryID: tx.SubcategoryID, Month: key.month, Year: key.year, Type: typ}
			rows[key] = r
		}
		r.Total = r.Total.Add(tx.Amount)
	}

	out := make([]ActualRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].SubcategoryID < out[j].SubcategoryID
	})
	return out, nil
}
