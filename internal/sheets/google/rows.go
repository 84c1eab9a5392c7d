package google

import (
	"steward/internal/services"
	ports "steward/internal/sheets"
)

// reportRows flattens a year report into spreadsheet rows: the monthly
// cells first, then per-subcategory year totals, then category rollups.
// Sections are separated by a blank row so the sheet stays scannable.
func reportRows(report services.YearReport, names ports.Naming) [][]any {
	rows := [][]any{
		{"Subcategory", "Month", "Type", "Budgeted", "Actual", "Status"},
	}
	for _, c := range report.Cells {
		rows = append(rows, []any{
			names.SubcategoryName(c.SubcategoryID),
			c.Month,
			string(c.Type),
			c.Budgeted.String(),
			c.Actual.String(),
			string(c.Status),
		})
	}

	rows = append(rows, []any{},
		[]any{"Subcategory", "Year", "Type", "Total budgeted", "Total actual", "Monthly avg"})
	for _, s := range report.Summaries {
		rows = append(rows, []any{
			names.SubcategoryName(s.SubcategoryID),
			s.Year,
			string(s.Type),
			s.TotalBudgeted.String(),
			s.TotalActual.String(),
			s.AvgActual.String(),
		})
	}

	rows = append(rows, []any{},
		[]any{"Category", "Month", "Type", "Budgeted", "Actual", "Status"})
	for _, c := range report.Categories {
		rows = append(rows, []any{
			names.CategoryName(c.CategoryID),
			c.Month,
			string(c.Type),
			c.Budgeted.String(),
			c.Actual.String(),
			string(c.Status),
		})
	}
	return rows
}
