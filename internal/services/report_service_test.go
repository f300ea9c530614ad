package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/analytics"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/storage"
)

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, storage.NewMemoryStore())
	for _, in := range []core.TransactionInput{
		{Description: "Salary", Amount: "3000", Kind: "income", Category: "other", Date: "2025-03-15"},
		{Description: "Rent", Amount: "700", Category: "rent", Date: "2025-03-15"},
	} {
		if _, err := s.AddTransaction(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SetBudget(ctx, decimal.NewFromInt(1000)); err != nil {
		t.Fatal(err)
	}

	reports := NewReportService(s, cache.NewLRUCache[Dashboard](8, 0), 0, nil)
	d := reports.Dashboard(ctx, march15)

	if !d.Totals.Balance.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("balance = %s, want 2300", d.Totals.Balance)
	}
	if len(d.ByCategory) != 1 || d.ByCategory[0].Category != core.Rent {
		t.Errorf("unexpected breakdown %+v", d.ByCategory)
	}
	if len(d.Months) != 1 || d.Months[0].Month != "2025-03" {
		t.Errorf("unexpected months %+v", d.Months)
	}
	if d.Budget.Severity != core.SeverityWarning || d.Budget.Percentage != 70 {
		t.Errorf("unexpected budget %+v", d.Budget)
	}
	if len(d.Insights) == 0 || d.Insights[0].Kind != analytics.InsightDominantCategory {
		t.Errorf("unexpected insights %+v", d.Insights)
	}
	if d.Currency != "USD" || d.Date != "2025-03-15" {
		t.Errorf("unexpected header %s %s", d.Currency, d.Date)
	}
}

func TestReportService_DashboardIsCachedPerRevision(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, storage.NewMemoryStore())
	dashboards := cache.NewLRUCache[Dashboard](8, 0)
	reports := NewReportService(s, dashboards, 6, nil)

	first := reports.Dashboard(ctx, march15)
	reports.Dashboard(ctx, march15)
	if stats := dashboards.Stats(); stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("expected one miss then one hit, got %+v", stats)
	}

	if _, err := s.AddTransaction(ctx, core.TransactionInput{Description: "Coffee", Amount: "3", Category: "food", Date: "2025-03-15"}); err != nil {
		t.Fatal(err)
	}
	second := reports.Dashboard(ctx, march15)
	if second.Revision == first.Revision {
		t.Fatal("a mutation must invalidate the cached dashboard")
	}
	if len(second.ByCategory) != 1 {
		t.Fatalf("stale dashboard returned: %+v", second.ByCategory)
	}
}

func TestReportService_EmptyLedger(t *testing.T) {
	s := newTestService(t, storage.NewMemoryStore())
	d := NewReportService(s, nil, 0, nil).Dashboard(context.Background(), march15)

	if d.ByCategory == nil || len(d.ByCategory) != 0 {
		t.Errorf("expected empty, non-nil breakdown")
	}
	if d.Budget.Active {
		t.Error("budget must be inactive when unset")
	}
	if len(d.Insights) != 1 || d.Insights[0].Kind != analytics.InsightNotEnoughData {
		t.Errorf("expected placeholder insight, got %+v", d.Insights)
	}
}

func TestReportService_Transactions(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, storage.NewMemoryStore())
	for _, in := range []core.TransactionInput{
		{Description: "Grocery run", Amount: "40", Category: "food", Date: "2025-03-15"},
		{Description: "Flight", Amount: "300", Category: "travel", Date: "2025-03-15"},
		{Description: "grocery delivery", Amount: "15", Category: "food", Date: "2025-03-15"},
	} {
		if _, err := s.AddTransaction(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	reports := NewReportService(s, nil, 0, nil)

	got := reports.Transactions("GROCERY", core.Food)
	if len(got) != 2 || got[0].Description != "grocery delivery" {
		t.Fatalf("unexpected result %+v", got)
	}
	if got := reports.Transactions("boat", ""); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}
