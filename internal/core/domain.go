package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Food     Category = "food"
	Rent     Category = "rent"
	Travel   Category = "travel"
	Shopping Category = "shopping"
	Other    Category = "other"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// DateLayout is the ISO form used for storage and sorting.
const DateLayout = "2006-01-02"

// DefaultCurrency is used when a snapshot carries no currency.
const DefaultCurrency = "USD"

// MaxDescriptionLen is counted in characters, not bytes.
const MaxDescriptionLen = 200

type (
	Category string

	// Kind classifies a transaction. It is always derived from the amount sign.
	Kind string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int64
		Description string
		Amount      decimal.Decimal
		Category    Category
		Date        Date
		IsRecurring bool
		RecurringID *int64 // set only on instances generated from a template
	}

	// RecurringTemplate is the pattern a monthly instance is generated from.
	// Its Date is the creation date and is never reused for generation.
	RecurringTemplate Transaction

	// Snapshot is the unit of persistence, export and import.
	Snapshot struct {
		Transactions          []Transaction
		RecurringTransactions []RecurringTemplate
		MonthlyBudget         decimal.Decimal
		SelectedCurrency      string
	}
)

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidKind        = errors.New("invalid transaction type")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

var categories = []Category{Food, Rent, Travel, Shopping, Other}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory normalizes s and checks it belongs to the fixed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseKind accepts "income" or "expense".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Income, Expense:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// KindOf classifies an amount: zero and positive amounts are income.
func KindOf(amount decimal.Decimal) Kind {
	if amount.IsNegative() {
		return Expense
	}
	return Income
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket of the date.
func (d Date) MonthKey() MonthKey {
	return MonthKeyOf(d.Time)
}

// MarshalJSON overrides the promoted time.Time encoding with the ISO date form.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Kind derives the income/expense classification from the amount sign.
func (t Transaction) Kind() Kind {
	return KindOf(t.Amount)
}

// IsExpense reports whether the amount is negative.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

func (t Transaction) Validate() error {
	if t.ID == 0 {
		return ErrInvalidID
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone returns a copy that shares no pointers with t.
func (t Transaction) Clone() Transaction {
	if t.RecurringID != nil {
		id := *t.RecurringID
		t.RecurringID = &id
	}
	return t
}

// TemplateFrom snapshots a transaction as a recurring template sharing its id.
func TemplateFrom(t Transaction) RecurringTemplate {
	tpl := RecurringTemplate(t.Clone())
	tpl.IsRecurring = true
	return tpl
}

func (r RecurringTemplate) Kind() Kind {
	return KindOf(r.Amount)
}

// Clone deep-copies every slice of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Transactions:          make([]Transaction, len(s.Transactions)),
		RecurringTransactions: make([]RecurringTemplate, len(s.RecurringTransactions)),
		MonthlyBudget:         s.MonthlyBudget,
		SelectedCurrency:      s.SelectedCurrency,
	}
	for i, t := range s.Transactions {
		out.Transactions[i] = t.Clone()
	}
	for i, r := range s.RecurringTransactions {
		out.RecurringTransactions[i] = RecurringTemplate(Transaction(r).Clone())
	}
	return out
}
