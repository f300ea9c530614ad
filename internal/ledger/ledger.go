// Package ledger holds the aggregate root of the finance ledger: the
// newest-first transaction sequence, the recurring templates and the
// budget/currency settings. It is not safe for concurrent use; callers
// serialize mutations.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

var (
	ErrDuplicateID   = errors.New("duplicate transaction id")
	ErrInvalidBudget = errors.New("budget must not be negative")
	ErrEmptyCurrency = errors.New("empty currency")
)

type Ledger struct {
	transactions []core.Transaction // newest first
	templates    []core.RecurringTemplate
	budget       decimal.Decimal
	currency     string
	revision     uint64
	maxID        int64
}

// New returns an empty ledger using the default currency.
func New() *Ledger {
	return &Ledger{currency: core.DefaultCurrency}
}

// FromSnapshot builds a ledger holding a copy of s.
func FromSnapshot(s core.Snapshot) *Ledger {
	l := New()
	l.ReplaceAll(s)
	l.revision = 0
	return l
}

// Add inserts t at the front of the sequence. Invalid transactions and
// duplicate ids are rejected and leave the ledger unchanged.
func (l *Ledger) Add(t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if l.indexOf(t.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, t.ID)
	}
	l.transactions = append([]core.Transaction{t.Clone()}, l.transactions...)
	l.trackID(t.ID)
	l.revision++
	return nil
}

// AddTemplate registers a recurring template. Templates are never mutated.
func (l *Ledger) AddTemplate(tpl core.RecurringTemplate) {
	l.templates = append(l.templates, core.RecurringTemplate(core.Transaction(tpl).Clone()))
	l.trackID(tpl.ID)
	l.revision++
}

// Remove drops the transaction with the given id. An absent id is a no-op.
func (l *Ledger) Remove(id int64) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	out := make([]core.Transaction, 0, len(l.transactions)-1)
	out = append(out, l.transactions[:i]...)
	out = append(out, l.transactions[i+1:]...)
	l.transactions = out
	l.revision++
	return true
}

// ReplaceAll overwrites the whole state with s. No merge is performed.
func (l *Ledger) ReplaceAll(s core.Snapshot) {
	s = s.Clone()
	l.transactions = s.Transactions
	l.templates = s.RecurringTransactions
	l.budget = s.MonthlyBudget
	if l.budget.IsNegative() {
		l.budget = decimal.Zero
	}
	l.currency = s.SelectedCurrency
	if l.currency == "" {
		l.currency = core.DefaultCurrency
	}
	l.maxID = 0
	for _, t := range l.transactions {
		l.trackID(t.ID)
	}
	for _, tpl := range l.templates {
		l.trackID(tpl.ID)
	}
	l.revision++
}

// Snapshot returns a deep copy of the ledger state.
func (l *Ledger) Snapshot() core.Snapshot {
	return core.Snapshot{
		Transactions:          l.transactions,
		RecurringTransactions: l.templates,
		MonthlyBudget:         l.budget,
		SelectedCurrency:      l.currency,
	}.Clone()
}

// Transactions returns a copy of the sequence, newest first.
func (l *Ledger) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(l.transactions))
	for i, t := range l.transactions {
		out[i] = t.Clone()
	}
	return out
}

// Templates returns a copy of the recurring templates.
func (l *Ledger) Templates() []core.RecurringTemplate {
	out := make([]core.RecurringTemplate, len(l.templates))
	for i, tpl := range l.templates {
		out[i] = core.RecurringTemplate(core.Transaction(tpl).Clone())
	}
	return out
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	return len(l.transactions)
}

// Budget returns the monthly budget; zero means unset.
func (l *Ledger) Budget() decimal.Decimal {
	return l.budget
}

// SetBudget sets the monthly budget. Zero clears it.
func (l *Ledger) SetBudget(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidBudget
	}
	l.budget = amount
	l.revision++
	return nil
}

func (l *Ledger) Currency() string {
	return l.currency
}

// SetCurrency stores the display currency. Callers validate the code.
func (l *Ledger) SetCurrency(code string) error {
	if code == "" {
		return ErrEmptyCurrency
	}
	l.currency = code
	l.revision++
	return nil
}

// Revision increases on every mutation.
func (l *Ledger) Revision() uint64 {
	return l.revision
}

// NextID returns an id that is unique in the ledger: the unix millisecond
// of now, bumped past every id already seen.
func (l *Ledger) NextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= l.maxID {
		id = l.maxID + 1
	}
	l.maxID = id
	return id
}

func (l *Ledger) indexOf(id int64) int {
	for i, t := range l.transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) trackID(id int64) {
	if id > l.maxID {
		l.maxID = id
	}
}
