package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, 3, 7))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-07"` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2024-02-29"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("unexpected date %s", d)
	}
	if err := json.Unmarshal([]byte(`"29/02/2024"`), &d); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	for _, in := range []string{"food", " Rent ", "TRAVEL", "shopping", "other"} {
		if _, err := ParseCategory(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	for _, in := range []string{"", "groceries", "foo d"} {
		if _, err := ParseCategory(in); !errors.Is(err, ErrInvalidCategory) {
			t.Fatalf("%q expected ErrInvalidCategory, got %v", in, err)
		}
	}
}

func TestKindFollowsSign(t *testing.T) {
	cases := []struct {
		amount string
		want   Kind
	}{
		{"10", Income},
		{"0", Income},
		{"-0.01", Expense},
	}
	for _, tc := range cases {
		tx := Transaction{Amount: decimal.RequireFromString(tc.amount)}
		if got := tx.Kind(); got != tc.want {
			t.Fatalf("amount %s: expected %s, got %s", tc.amount, tc.want, got)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          1,
		Description: "ok",
		Amount:      decimal.NewFromInt(-5),
		Category:    Food,
		Date:        NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	accented := good
	accented.Description = strings.Repeat("é", MaxDescriptionLen)
	if err := accented.Validate(); err != nil {
		t.Fatalf("length is counted in characters, got %v", err)
	}

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}

	bads := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.ID = 0 }, ErrInvalidID},
		{func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{func(tx *Transaction) { tx.Description = string(long) }, ErrDescriptionTooLong},
		{func(tx *Transaction) { tx.Category = "misc" }, ErrInvalidCategory},
		{func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}
	for i, tc := range bads {
		tx := good
		tc.mutate(&tx)
		if err := tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestTemplateFromCopiesTransaction(t *testing.T) {
	ref := int64(9)
	tx := Transaction{ID: 3, Description: "Gym", Amount: decimal.NewFromInt(-30), Category: Other, Date: NewDate(2025, 1, 2), RecurringID: &ref}
	tpl := TemplateFrom(tx)
	if tpl.ID != tx.ID || !tpl.IsRecurring {
		t.Fatalf("unexpected template %+v", tpl)
	}
	*tx.RecurringID = 10
	if *tpl.RecurringID != 9 {
		t.Fatalf("template shares pointer with source transaction")
	}
}

func TestTransactionInputBuild(t *testing.T) {
	tx, err := TransactionInput{Description: " Lunch ", Amount: "12,50", Kind: "expense", Category: "food", Date: "2025-05-20"}.Build(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID != 7 || tx.Description != "Lunch" || !tx.Amount.Equal(decimal.RequireFromString("-12.5")) {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if tx.Date.String() != "2025-05-20" {
		t.Fatalf("unexpected date %s", tx.Date)
	}

	tx, err = TransactionInput{Description: "Salary", Amount: "-3000", Kind: "income", Category: "other", Date: "2025-05-01"}.Build(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(3000)) || tx.Kind() != Income {
		t.Fatalf("income amount should be positive, got %s", tx.Amount)
	}

	bads := []struct {
		in   TransactionInput
		want error
	}{
		{TransactionInput{Description: "", Amount: "1", Category: "food"}, ErrEmptyDescription},
		{TransactionInput{Description: "a", Amount: "abc", Category: "food"}, ErrInvalidAmount},
		{TransactionInput{Description: "a", Amount: "0", Category: "food"}, ErrInvalidAmount},
		{TransactionInput{Description: "a", Amount: "1", Category: ""}, ErrInvalidCategory},
		{TransactionInput{Description: "a", Amount: "1", Category: "food", Date: "yesterday"}, ErrInvalidDate},
		{TransactionInput{Description: "Lunch", Amount: "12", Kind: "expense", Category: "food"}, ErrInvalidDate},
		{TransactionInput{Description: "Lunch", Amount: "12", Category: "food", Date: "  "}, ErrInvalidDate},
		{TransactionInput{Description: "a", Amount: "1", Category: "food", Kind: "transfer"}, ErrInvalidKind},
	}
	for i, tc := range bads {
		if _, err := tc.in.Build(1); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}
