// Package worker consumes ledger and budget change events and pushes
// rebuilt year reports into the configured sink.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"steward/internal/amqp"
	applog "steward/internal/log"
	"steward/internal/services"
	"steward/internal/sheets"
)

// ReportSource rebuilds one year's reconciled report. The budget
// service implements it.
type ReportSource interface {
	YearReport(ctx context.Context, year int, groupID string) (services.YearReport, error)
}

// ReportWorker rebuilds and exports year reports. Every change event
// names the year it touched; the worker re-derives that whole year
// rather than patching the sheet in place.
type ReportWorker struct {
	reports  ReportSource
	taxonomy services.Taxonomy
	sink     sheets.ReportSink
	loc      *time.Location
	logger   *applog.Logger
}

func NewReportWorker(reports ReportSource, taxonomy services.Taxonomy, sink sheets.ReportSink, loc *time.Location) *ReportWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportWorker{
		reports:  reports,
		taxonomy: taxonomy,
		sink:     sink,
		loc:      loc,
		logger: applog.New(applog.Config{
			Handler:   slog.Default().Handler(),
			Component: applog.ComponentWorker,
		}),
	}
}

// HandleEnvelope processes one change event. Unknown kinds are an
// error so they land in the dead-letter path instead of being dropped
// silently.
func (w *ReportWorker) HandleEnvelope(ctx context.Context, env *amqp.Envelope) error {
	switch env.Kind {
	case amqp.KindLedgerChanged:
		msg, err := env.LedgerChanged()
		if err != nil {
			return fmt.Errorf("decode ledger change: %w", err)
		}
		w.logger.InfoContext(ctx, "Processing ledger change",
			applog.FieldTransactionID, msg.TransactionID, "action", msg.Action,
			applog.FieldYear, msg.Year, applog.FieldMonth, msg.Month)
		return w.ExportYear(ctx, msg.Year, msg.GroupID)

	case amqp.KindBudgetChanged:
		msg, err := env.BudgetChanged()
		if err != nil {
			return fmt.Errorf("decode budget change: %w", err)
		}
		w.logger.InfoContext(ctx, "Processing budget change",
			applog.FieldSubcategoryID, msg.SubcategoryID,
			applog.FieldYear, msg.Year, applog.FieldMonth, msg.Month)
		return w.ExportYear(ctx, msg.Year, msg.GroupID)

	default:
		return fmt.Errorf("unknown message kind: %q", env.Kind)
	}
}

// ExportYear rebuilds one year end to end and pushes it to the sink.
func (w *ReportWorker) ExportYear(ctx context.Context, year int, groupID string) error {
	if year < 1 {
		return fmt.Errorf("invalid year: %d", year)
	}

	report, err := w.reports.YearReport(ctx, year, groupID)
	if err != nil {
		return fmt.Errorf("rebuild year %d: %w", year, err)
	}

	names, err := w.naming(ctx)
	if err != nil {
		return err
	}

	if err := w.sink.ExportYear(ctx, report, names); err != nil {
		return fmt.Errorf("export year %d: %w", year, err)
	}

	w.logger.InfoContext(ctx, "Exported year report",
		applog.FieldYear, year, "cells", len(report.Cells))
	return nil
}

// ExportCurrentYear exports the year it is now in the worker's
// location. Scheduled runs use this.
func (w *ReportWorker) ExportCurrentYear(ctx context.Context, groupID string) error {
	return w.ExportYear(ctx, time.Now().In(w.loc).Year(), groupID)
}

// RunPeriodic re-exports the current year on an interval as a backstop
// for lost messages. Blocks until the context ends.
func (w *ReportWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ExportCurrentYear(ctx, ""); err != nil {
				w.logger.ErrorContext(ctx, "Periodic export failed", applog.FieldError, err)
			}
		}
	}
}

func (w *ReportWorker) naming(ctx context.Context) (sheets.Naming, error) {
	cats, err := w.taxonomy.ListCategories(ctx)
	if err != nil {
		return sheets.Naming{}, fmt.Errorf("list categories: %w", err)
	}
	subs, err := w.taxonomy.ListSubcategories(ctx)
	if err != nil {
		return sheets.Naming{}, fmt.Errorf("list subcategories: %w", err)
	}

	names := sheets.Naming{
		Subcategories: make(map[string]string, len(subs)),
		Categories:    make(map[string]string, len(cats)),
	}
	for _, c := range cats {
		names.Categories[c.ID] = c.Name
	}
	for _, s := range subs {
		names.Subcategories[s.ID] = s.Name
	}
	return names, nil
}
