package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/storage"
)

type brokenStore struct{ storage.MemoryStore }

func (brokenStore) Load(context.Context) (core.Snapshot, bool, error) {
	return core.Snapshot{}, false, errors.New("locked")
}

var today = time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

func TestChangeWorker_ReportsTotals(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	err := store.Save(ctx, core.Snapshot{
		Transactions: []core.Transaction{
			{ID: 2, Description: "Rent", Amount: decimal.NewFromInt(-800), Category: core.Rent, Date: core.NewDate(2025, 3, 1)},
			{ID: 1, Description: "Salary", Amount: decimal.NewFromInt(2000), Category: core.Other, Date: core.NewDate(2025, 3, 1)},
		},
		MonthlyBudget:    decimal.NewFromInt(1000),
		SelectedCurrency: "EUR",
	})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	w := NewChangeWorker(store, &out, func() time.Time { return today }, nil)
	msg := amqp.NewLedgerChangedMessage(amqp.OpTransactionCreated, 2, 5, today)

	if err := w.HandleLedgerChanged(ctx, msg); err != nil {
		t.Fatalf("HandleLedgerChanged: %v", err)
	}
	line := out.String()
	for _, want := range []string{"transaction.created", "rev=5", "balance=€1200.00", "expenses=-€800.00", "budget=80% (warning)"} {
		if !strings.Contains(line, want) {
			t.Errorf("report %q missing %q", line, want)
		}
	}

	out.Reset()
	if err := w.HandleLedgerChanged(ctx, msg); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("duplicate delivery reported again: %q", out.String())
	}
}

func TestChangeWorker_EmptyStore(t *testing.T) {
	var out bytes.Buffer
	w := NewChangeWorker(storage.NewMemoryStore(), &out, func() time.Time { return today }, nil)

	if err := w.HandleLedgerChanged(context.Background(), amqp.NewLedgerChangedMessage(amqp.OpLedgerImported, 0, 1, today)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "balance=$0.00") {
		t.Errorf("unexpected report %q", out.String())
	}
}

func TestChangeWorker_LoadFailureRequeues(t *testing.T) {
	var out bytes.Buffer
	w := NewChangeWorker(&brokenStore{}, &out, func() time.Time { return today }, nil)
	msg := amqp.NewLedgerChangedMessage(amqp.OpBudgetUpdated, 0, 1, today)

	if err := w.HandleLedgerChanged(context.Background(), msg); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	// The redelivery is handled again rather than dropped as a duplicate.
	if err := w.HandleLedgerChanged(context.Background(), msg); err == nil {
		t.Fatal("expected the redelivery to be processed")
	}
}

func TestChangeWorker_SeenIDsAreBounded(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	w := NewChangeWorker(storage.NewMemoryStore(), &out, func() time.Time { return today }, nil)

	first := amqp.NewLedgerChangedMessage(amqp.OpBudgetUpdated, 0, 1, today)
	if err := w.HandleLedgerChanged(ctx, first); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < seenCapacity; i++ {
		if err := w.HandleLedgerChanged(ctx, amqp.NewLedgerChangedMessage(amqp.OpBudgetUpdated, 0, uint64(i+2), today)); err != nil {
			t.Fatal(err)
		}
	}
	if n := w.seen.Size(); n != seenCapacity {
		t.Fatalf("remembered %d ids, want %d", n, seenCapacity)
	}

	out.Reset()
	if err := w.HandleLedgerChanged(ctx, first); err != nil {
		t.Fatal(err)
	}
	if out.Len() == 0 {
		t.Fatal("the oldest id should have been evicted and the message handled again")
	}
}
