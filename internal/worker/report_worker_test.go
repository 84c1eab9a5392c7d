package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"steward/internal/amqp"
	"steward/internal/core"
	"steward/internal/ledger"
	"steward/internal/services"
	"steward/internal/sheets"
)

type fakeSource struct {
	reports map[int]services.YearReport
	err     error
	calls   []int
}

func (f *fakeSource) YearReport(_ context.Context, year int, _ string) (services.YearReport, error) {
	f.calls = append(f.calls, year)
	if f.err != nil {
		return services.YearReport{}, f.err
	}
	return f.reports[year], nil
}

type fakeTaxonomy struct{}

func (fakeTaxonomy) ListCategories(context.Context) ([]core.Category, error) {
	return []core.Category{{ID: "cat-1", Name: "Outreach"}}, nil
}

func (fakeTaxonomy) ListSubcategories(context.Context) ([]core.Subcategory, error) {
	return []core.Subcategory{{ID: "sub-1", Name: "Missions", CategoryID: "cat-1"}}, nil
}

type fakeSink struct {
	exported []services.YearReport
	names    []sheets.Naming
	err      error
}

func (f *fakeSink) ExportYear(_ context.Context, r services.YearReport, n sheets.Naming) error {
	if f.err != nil {
		return f.err
	}
	f.exported = append(f.exported, r)
	f.names = append(f.names, n)
	return nil
}

func envelope(t *testing.T, kind string, payload any) *amqp.Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &amqp.Envelope{Kind: kind, Timestamp: time.Now(), Payload: raw}
}

func TestHandleLedgerChanged(t *testing.T) {
	src := &fakeSource{reports: map[int]services.YearReport{
		2026: {Year: 2026, Cells: []ledger.Cell{{SubcategoryID: "sub-1", Month: 4, Year: 2026}}},
	}}
	sink := &fakeSink{}
	w := NewReportWorker(src, fakeTaxonomy{}, sink, time.UTC)

	env := envelope(t, amqp.KindLedgerChanged, amqp.LedgerChangedMessage{
		TransactionID: "T1", Action: "created", Year: 2026, Month: 4,
	})
	if err := w.HandleEnvelope(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.exported) != 1 || sink.exported[0].Year != 2026 {
		t.Fatalf("expected one export for 2026, got %+v", sink.exported)
	}
	if got := sink.names[0].SubcategoryName("sub-1"); got != "Missions" {
		t.Fatalf("naming not resolved: %q", got)
	}
}

func TestHandleBudgetChanged(t *testing.T) {
	src := &fakeSource{reports: map[int]services.YearReport{2025: {Year: 2025}}}
	sink := &fakeSink{}
	w := NewReportWorker(src, fakeTaxonomy{}, sink, time.UTC)

	env := envelope(t, amqp.KindBudgetChanged, amqp.BudgetChangedMessage{
		SubcategoryID: "sub-1", Month: 12, Year: 2025,
	})
	if err := w.HandleEnvelope(context.Background(), env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.calls) != 1 || src.calls[0] != 2025 {
		t.Fatalf("expected rebuild of 2025, got %v", src.calls)
	}
}

func TestHandleUnknownKind(t *testing.T) {
	w := NewReportWorker(&fakeSource{}, fakeTaxonomy{}, &fakeSink{}, time.UTC)

	env := envelope(t, "ledger.truncated", struct{}{})
	if err := w.HandleEnvelope(context.Background(), env); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestExportYearPropagatesSinkError(t *testing.T) {
	src := &fakeSource{reports: map[int]services.YearReport{2026: {Year: 2026}}}
	sink := &fakeSink{err: errors.New("spreadsheet gone")}
	w := NewReportWorker(src, fakeTaxonomy{}, sink, time.UTC)

	if err := w.ExportYear(context.Background(), 2026, ""); err == nil {
		t.Fatalf("expected sink error to propagate")
	}
}

func TestExportYearRejectsInvalidYear(t *testing.T) {
	src := &fakeSource{}
	w := NewReportWorker(src, fakeTaxonomy{}, &fakeSink{}, time.UTC)

	if err := w.ExportYear(context.Background(), 0, ""); err == nil {
		t.Fatalf("expected error for invalid year")
	}
	if len(src.calls) != 0 {
		t.Fatalf("no rebuild expected for invalid year")
	}
}
