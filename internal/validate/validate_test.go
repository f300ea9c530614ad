package validate

import (
	"strings"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"USD", false},
		{"EUR", false},
		{"INR", false},
		{"usd", true},
		{"XYZ", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := Currency(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Currency(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestCustomTags(t *testing.T) {
	type sample struct {
		Name     string `validate:"notblank"`
		Category string `validate:"category"`
		Type     string `validate:"omitempty,transaction_type"`
	}

	if err := Get().Struct(sample{Name: "Lunch", Category: "food", Type: "expense"}); err != nil {
		t.Fatalf("expected valid sample, got %v", err)
	}

	err := Get().Struct(sample{Name: " \t", Category: "groceries", Type: "transfer"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := Describe(err)
	for _, want := range []string{"Name failed notblank", "Category failed category", "Type failed transaction_type"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("description %q missing %q", msg, want)
		}
	}
}
