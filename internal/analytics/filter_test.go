package analytics

import (
	"testing"

	"ledger/internal/core"
)

func TestFilter(t *testing.T) {
	txs := []core.Transaction{
		{ID: 3, Description: "Grocery Store", Category: core.Food},
		{ID: 2, Description: "Monthly rent", Category: core.Rent},
		{ID: 1, Description: "grocery delivery", Category: core.Shopping},
	}

	tests := []struct {
		name     string
		search   string
		category core.Category
		want     []int64
	}{
		{"empty filters match all", "", "", []int64{3, 2, 1}},
		{"case-insensitive search", "GROCERY", "", []int64{3, 1}},
		{"category only", "", core.Rent, []int64{2}},
		{"search and category", "grocery", core.Shopping, []int64{1}},
		{"no match", "flight", "", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(txs, tt.search, tt.category)
			if got == nil {
				t.Fatal("Filter must return an empty slice, not nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("result %d has id %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	txs := []core.Transaction{{ID: 1, Description: "a", Category: core.Food}}
	got := Filter(txs, "", "")
	got[0].Description = "changed"
	if txs[0].Description != "a" {
		t.Fatal("Filter must not share elements with the input")
	}
}
