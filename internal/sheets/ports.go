// Package sheets defines the outbound report port and hosts its
// adapters. The report worker pushes reconciled yearly budget views
// through a ReportSink; which sink is wired is a deployment choice.
package sheets

import (
	"context"

	"steward/internal/services"
)

// Naming maps taxonomy ids to display names so exported rows stay
// readable outside the application.
type Naming struct {
	Subcategories map[string]string
	Categories    map[string]string
}

// ReportSink receives a fully reconciled year report. Implementations
// must be safe for concurrent use; the worker may export several years
// in one catch-up run.
type ReportSink interface {
	ExportYear(ctx context.Context, report services.YearReport, names Naming) error
}

// SubcategoryName resolves an id, falling back to the id itself when the
// taxonomy has no entry for it.
func (n Naming) SubcategoryName(id string) string {
	if name, ok := n.Subcategories[id]; ok && name != "" {
		return name
	}
	return id
}

// CategoryName resolves an id the same way.
func (n Naming) CategoryName(id string) string {
	if name, ok := n.Categories[id]; ok && name != "" {
		return name
	}
	return id
}
