package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

func newRecurringLedger(t *testing.T, templates ...core.RecurringTemplate) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	for _, tpl := range templates {
		l.AddTemplate(tpl)
	}
	return l
}

func rentTemplate() core.RecurringTemplate {
	return core.RecurringTemplate{
		ID:          1,
		Description: "Rent",
		Amount:      decimal.NewFromInt(-20),
		Category:    core.Rent,
		Date:        core.NewDate(2025, 2, 10),
		IsRecurring: true,
	}
}

func TestRecurringProcessor_MarchThenApril(t *testing.T) {
	ctx := context.Background()
	p := NewRecurringProcessor(nil)
	l := newRecurringLedger(t, rentTemplate())

	march := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	if got := p.MaterializeDue(ctx, l, march); got != 1 {
		t.Fatalf("first March run created %d, want 1", got)
	}
	txs := l.Transactions()
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	first := txs[0]
	if first.RecurringID == nil || *first.RecurringID != 1 {
		t.Fatalf("expected recurringId 1, got %v", first.RecurringID)
	}
	if first.Date.MonthKey() != "2025-03" {
		t.Fatalf("expected March date, got %s", first.Date)
	}

	if got := p.MaterializeDue(ctx, l, march.AddDate(0, 0, 20)); got != 0 {
		t.Fatalf("second March run created %d, want 0", got)
	}
	if l.Len() != 1 {
		t.Fatalf("expected ledger unchanged, got %d transactions", l.Len())
	}

	april := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	if got := p.MaterializeDue(ctx, l, april); got != 1 {
		t.Fatalf("April run created %d, want 1", got)
	}
	txs = l.Transactions()
	if len(txs) != 2 || txs[0].Date.MonthKey() != "2025-04" {
		t.Fatalf("expected newest April instance first, got %+v", txs)
	}
	if txs[0].ID == txs[1].ID {
		t.Fatal("instances must have distinct ids")
	}
}

func TestRecurringProcessor_InstanceShape(t *testing.T) {
	today := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		tpl      core.RecurringTemplate
		wantDesc string
		wantCat  core.Category
	}{
		{
			name:     "description gets suffix",
			tpl:      rentTemplate(),
			wantDesc: "Rent (Recurring)",
			wantCat:  core.Rent,
		},
		{
			name:     "empty description falls back",
			tpl:      core.RecurringTemplate{ID: 2, Amount: decimal.NewFromInt(1500), Category: core.Other},
			wantDesc: "Recurring (Recurring)",
			wantCat:  core.Other,
		},
		{
			name:     "long description is cut to fit the suffix",
			tpl:      core.RecurringTemplate{ID: 4, Description: strings.Repeat("é", core.MaxDescriptionLen), Amount: decimal.NewFromInt(-9), Category: core.Shopping},
			wantDesc: strings.Repeat("é", core.MaxDescriptionLen-len(" (Recurring)")) + " (Recurring)",
			wantCat:  core.Shopping,
		},
		{
			name:     "unknown category falls back to other",
			tpl:      core.RecurringTemplate{ID: 3, Description: "Gym", Amount: decimal.NewFromInt(-30)},
			wantDesc: "Gym (Recurring)",
			wantCat:  core.Other,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newRecurringLedger(t, tt.tpl)
			if got := NewRecurringProcessor(nil).MaterializeDue(context.Background(), l, today); got != 1 {
				t.Fatalf("created %d, want 1", got)
			}
			tx := l.Transactions()[0]
			if tx.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", tx.Description, tt.wantDesc)
			}
			if tx.Category != tt.wantCat {
				t.Errorf("category = %q, want %q", tx.Category, tt.wantCat)
			}
			if !tx.Amount.Equal(tt.tpl.Amount) {
				t.Errorf("amount = %s, want %s", tx.Amount, tt.tpl.Amount)
			}
			if tx.Kind() != tt.tpl.Kind() {
				t.Errorf("kind = %s, want %s", tx.Kind(), tt.tpl.Kind())
			}
			if !tx.IsRecurring {
				t.Error("instance must be flagged recurring")
			}
			if tx.Date.String() != "2025-03-05" {
				t.Errorf("date = %s, want 2025-03-05", tx.Date)
			}
		})
	}
}

func TestRecurringProcessor_SkipsTemplateWithoutID(t *testing.T) {
	l := newRecurringLedger(t, core.RecurringTemplate{Description: "Broken", Amount: decimal.NewFromInt(-5)}, rentTemplate())

	got := NewRecurringProcessor(nil).MaterializeDue(context.Background(), l, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	if got != 1 {
		t.Fatalf("created %d, want 1", got)
	}
	if l.Transactions()[0].Description != "Rent (Recurring)" {
		t.Fatalf("unexpected instance %+v", l.Transactions()[0])
	}
}

func TestRecurringProcessor_NoBackfill(t *testing.T) {
	l := newRecurringLedger(t, rentTemplate())
	p := NewRecurringProcessor(nil)
	ctx := context.Background()

	p.MaterializeDue(ctx, l, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	p.MaterializeDue(ctx, l, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))

	if l.Len() != 2 {
		t.Fatalf("expected 2 instances without catch-up, got %d", l.Len())
	}
}

func TestRecurringProcessor_LongDescriptionStaysValid(t *testing.T) {
	tpl := rentTemplate()
	tpl.Description = strings.Repeat("x", core.MaxDescriptionLen)
	l := newRecurringLedger(t, tpl)

	if got := NewRecurringProcessor(nil).MaterializeDue(context.Background(), l, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)); got != 1 {
		t.Fatalf("created %d, want 1", got)
	}
	desc := l.Transactions()[0].Description
	if len(desc) > core.MaxDescriptionLen || !strings.HasSuffix(desc, " (Recurring)") {
		t.Fatalf("unexpected description %q", desc)
	}
}
