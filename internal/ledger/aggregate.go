package ledger

import (
	"sort"
	"time"

	"steward/internal/core"
)

type (
	// DayAggregate carries one calendar day's totals plus the unmodified
	// transaction list for that day. TRANSFER_LIKE and UPDATE entries are
	// retained in the list but excluded from both sums.
	DayAggregate struct {
		Date         time.Time // midnight of the day in the aggregation location
		TotalIncome  core.Money
		TotalExpense core.Money
		Net          core.Money
		Transactions []core.Transaction
	}

	// PeriodAggregate is the caller-supplied range's view: day buckets
	// sorted descending by date plus the period totals, which are by
	// construction the sums of the day totals.
	PeriodAggregate struct {
		Days         []DayAggregate
		TotalIncome  core.Money
		TotalExpense core.Money
		Net          core.Money
	}
)

// AggregateByDay buckets transactions by calendar day in loc (UTC when
// nil) and sums amounts by effective type. Bucketing is a pure function
// of the transaction date; no transaction lands in more than one bucket.
// The caller decides the date range by deciding what it passes in.
func AggregateByDay(txs []core.Transaction, lookup AccountLookup, loc *time.Location) (PeriodAggregate, error) {
	if loc == nil {
		loc = time.UTC
	}

	days := make(map[time.Time]*DayAggregate)
	for _, tx := range txs {
		eff, err := Classify(tx, lookup)
		if err != nil {
			return PeriodAggregate{}, err
		}

		local := tx.Date.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		agg, ok := days[day]
		if !ok {
			agg = &DayAggregate{Date: day}
			days[day] = agg
		}

		agg.Transactions = append(agg.Transactions, tx)
		switch eff {
		case core.EffectIncome:
			agg.TotalIncome = agg.TotalIncome.Add(tx.Amount)
		case core.EffectExpense:
			agg.TotalExpense = agg.TotalExpense.Add(tx.Amount)
		}
	}

	out := PeriodAggregate{Days: make([]DayAggregate, 0, len(days))}
	for _, agg := range days {
		agg.Net = agg.TotalIncome.Sub(agg.TotalExpense)
		out.TotalIncome = out.TotalIncome.Add(agg.TotalIncome)
		out.TotalExpense = out.TotalExpense.Add(agg.TotalExpense)
		out.Days = append(out.Days, *agg)
	}
	out.Net = out.TotalIncome.Sub(out.TotalExpense)

	// Newest day first, for display.
	sort.Slice(out.Days, func(i, j int) bool {
		return out.Days[i].Date.After(out.Days[j].Date)
	})
	return out, nil
}
