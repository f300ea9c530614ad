package analytics

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func kinds(in []Insight) []InsightKind {
	out := make([]InsightKind, len(in))
	for i, x := range in {
		out[i] = x.Kind
	}
	return out
}

func TestInsightsNotEnoughData(t *testing.T) {
	got := Insights(nil, decimal.Zero, today, "USD")
	if len(got) != 1 || got[0].Kind != InsightNotEnoughData {
		t.Fatalf("expected placeholder insight, got %v", kinds(got))
	}
	if got[0].Message == "" {
		t.Fatal("placeholder must carry a message")
	}

	// Income only: still no data to derive spending insights from.
	got = Insights([]core.Transaction{mk(1, "100", core.Other, "2025-03-01")}, decimal.Zero, today, "USD")
	if len(got) != 1 || got[0].Kind != InsightNotEnoughData {
		t.Fatalf("expected placeholder insight, got %v", kinds(got))
	}
}

func TestDominantCategoryTieFirstWins(t *testing.T) {
	txs := []core.Transaction{
		mk(2, "-50", core.Food, "2025-03-03"),
		mk(1, "-50", core.Rent, "2025-03-02"),
	}

	byCat := ExpensesByCategory(txs)
	if len(byCat) != 2 || !byCat[0].Amount.Equal(dec("50")) || !byCat[1].Amount.Equal(dec("50")) {
		t.Fatalf("unexpected breakdown %+v", byCat)
	}

	got := Insights(txs, decimal.Zero, today, "USD")
	if got[0].Kind != InsightDominantCategory {
		t.Fatalf("expected dominant category first, got %v", kinds(got))
	}
	if got[0].Category != core.Food || got[0].Percent != 50 {
		t.Fatalf("expected food at 50%%, got %s at %d%%", got[0].Category, got[0].Percent)
	}
	if !strings.Contains(got[0].Message, "Food") || !strings.Contains(got[0].Message, "50%") {
		t.Fatalf("unexpected message %q", got[0].Message)
	}
}

func TestDominantCategoryIgnoresOtherMonths(t *testing.T) {
	txs := []core.Transaction{
		mk(3, "-10", core.Travel, "2025-03-05"),
		mk(2, "-30", core.Shopping, "2025-03-04"),
		mk(1, "-900", core.Rent, "2025-02-01"),
	}
	got := Insights(txs, decimal.Zero, today, "USD")
	if got[0].Category != core.Shopping || got[0].Percent != 75 {
		t.Fatalf("expected shopping at 75%%, got %s at %d%%", got[0].Category, got[0].Percent)
	}
}

func TestFoodTrend(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		previous  string
		present   bool
		percent   int64
		direction string
	}{
		{"more", "150", "100", true, 50, "more"},
		{"less", "75", "100", true, 25, "less"},
		{"unchanged reads as less", "100", "100", true, 0, "less"},
		{"rounded", "100", "300", true, 67, "less"},
		{"no previous month", "100", "0", false, 0, ""},
		{"no current month", "0", "100", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []core.Transaction
			if tt.current != "0" {
				txs = append(txs, mk(2, "-"+tt.current, core.Food, "2025-03-02"))
			}
			if tt.previous != "0" {
				txs = append(txs, mk(1, "-"+tt.previous, core.Food, "2025-02-02"))
			}

			var trend *Insight
			for _, in := range Insights(txs, decimal.Zero, today, "USD") {
				if in.Kind == InsightFoodTrend {
					in := in
					trend = &in
				}
			}
			if (trend != nil) != tt.present {
				t.Fatalf("trend present = %v, want %v", trend != nil, tt.present)
			}
			if !tt.present {
				return
			}
			if trend.Percent != tt.percent || trend.Direction != tt.direction {
				t.Fatalf("got %d%% %s, want %d%% %s", trend.Percent, trend.Direction, tt.percent, tt.direction)
			}
		})
	}
}

func TestFoodTrendAcrossYearBoundary(t *testing.T) {
	jan := today.AddDate(0, -2, 0) // 2025-01-15
	txs := []core.Transaction{
		mk(2, "-20", core.Food, "2025-01-03"),
		mk(1, "-10", core.Food, "2024-12-28"),
	}
	found := false
	for _, in := range Insights(txs, decimal.Zero, jan, "USD") {
		if in.Kind == InsightFoodTrend {
			found = true
			if in.Percent != 100 || in.Direction != "more" {
				t.Fatalf("unexpected trend %+v", in)
			}
		}
	}
	if !found {
		t.Fatal("expected December to count as the previous month of January")
	}
}

func TestBudgetOverrun(t *testing.T) {
	txs := []core.Transaction{mk(1, "-1200", core.Rent, "2025-03-01")}

	got := Insights(txs, dec("1000"), today, "EUR")
	var overrun *Insight
	for _, in := range got {
		if in.Kind == InsightBudgetOverrun {
			in := in
			overrun = &in
		}
	}
	if overrun == nil {
		t.Fatalf("expected overrun insight, got %v", kinds(got))
	}
	if !overrun.Amount.Equal(dec("200")) {
		t.Fatalf("overrun = %s, want 200", overrun.Amount)
	}
	if !strings.Contains(overrun.Message, "€200.00") {
		t.Fatalf("unexpected message %q", overrun.Message)
	}

	for _, in := range Insights(txs, dec("1200"), today, "EUR") {
		if in.Kind == InsightBudgetOverrun {
			t.Fatal("spend equal to budget is not an overrun")
		}
	}
}

func TestInsightsAreIndependent(t *testing.T) {
	txs := []core.Transaction{
		mk(3, "-150", core.Food, "2025-03-03"),
		mk(2, "-1000", core.Rent, "2025-03-01"),
		mk(1, "-100", core.Food, "2025-02-03"),
	}
	got := kinds(Insights(txs, dec("500"), today, "USD"))
	want := []InsightKind{InsightDominantCategory, InsightFoodTrend, InsightBudgetOverrun}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
