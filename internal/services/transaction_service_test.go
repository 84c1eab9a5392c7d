package services

import (
	"context"
	"testing"
	"time"

	"steward/internal/core"
	"steward/internal/storage"
)

func TestCreatePublishesLedgerChange(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, time.UTC)

	id, err := svc.Create(context.Background(), core.Transaction{
		Type: core.TxExpense, Amount: core.Money{Cents: 1200},
		Date: day(7), AccountID: "cash", SubcategoryID: "missions", GroupID: "parish",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatalf("empty transaction id")
	}

	if len(pub.ledger) != 1 {
		t.Fatalf("expected 1 ledger event, got %d", len(pub.ledger))
	}
	msg := pub.ledger[0]
	if msg.TransactionID != id || msg.Action != "created" {
		t.Fatalf("event identity wrong: %+v", msg)
	}
	if msg.Year != 2026 || msg.Month != 4 || msg.GroupID != "parish" {
		t.Fatalf("event period wrong: %+v", msg)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, time.UTC)

	// Expense without a subcategory never reaches storage or the broker.
	_, err := svc.Create(context.Background(), core.Transaction{
		Type: core.TxExpense, Amount: core.Money{Cents: 1200},
		Date: day(7), AccountID: "cash",
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if len(pub.ledger) != 0 {
		t.Fatalf("no event expected on failed create")
	}
}

func TestDeletePublishesLedgerChange(t *testing.T) {
	store := newFakeStore()
	store.txs = []core.Transaction{
		{ID: "T1", Type: core.TxIncome, Amount: core.Money{Cents: 5000},
			Date: day(3), AccountID: "cash", SubcategoryID: "tithes", GroupID: "parish"},
	}
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, time.UTC)

	if err := svc.Delete(context.Background(), "T1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Soft deleted: gone from listings.
	listed, err := svc.List(context.Background(), storage.TxFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("deleted transaction still listed: %+v", listed)
	}

	if len(pub.ledger) != 1 {
		t.Fatalf("expected 1 ledger event, got %d", len(pub.ledger))
	}
	msg := pub.ledger[0]
	if msg.Action != "deleted" || msg.Year != 2026 || msg.Month != 4 {
		t.Fatalf("delete event wrong: %+v", msg)
	}
}

func TestDeleteUnknown(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, time.UTC)

	if err := svc.Delete(context.Background(), "ghost"); err == nil {
		t.Fatalf("expected error for unknown transaction")
	}
	if len(pub.ledger) != 0 {
		t.Fatalf("no event expected on failed delete")
	}
}

func TestEventPeriodUsesLocalTime(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	// Three hours behind UTC: an early-UTC timestamp falls on the
	// previous local day, and here on the previous month.
	svc := NewTransactionService(store, pub, time.FixedZone("W3", -3*3600))

	_, err := svc.Create(context.Background(), core.Transaction{
		Type: core.TxIncome, Amount: core.Money{Cents: 100},
		Date:      time.Date(2026, 5, 1, 1, 0, 0, 0, time.UTC),
		AccountID: "cash", SubcategoryID: "tithes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := pub.ledger[0]
	if msg.Year != 2026 || msg.Month != 4 {
		t.Fatalf("expected local period 2026-04, got %d-%02d", msg.Year, msg.Month)
	}
}
