// Package backup encodes ledger snapshots as portable JSON documents and
// decodes them back with full record validation. The same encoding is the
// blob stored by the persistence layer.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/validate"
)

const fileNamePrefix = "expense-tracker-backup-"

var ErrInvalidBackup = errors.New("invalid backup data")

// DecodeError describes why a document was rejected. Index is the offending
// record position in Section, or -1 when the problem is document-level.
type DecodeError struct {
	Section string
	Index   int
	Reason  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s[%d]: %s", ErrInvalidBackup, e.Section, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidBackup, e.Reason)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidBackup, e.Err}
	}
	return []error{ErrInvalidBackup}
}

// DecodeReport carries non-fatal findings of a successful decode.
type DecodeReport struct {
	// TypeMismatches counts records whose stored type label disagreed with
	// the amount sign. The sign wins.
	TypeMismatches int
}

type document struct {
	Transactions          []record        `json:"transactions"`
	RecurringTransactions []record        `json:"recurringTransactions"`
	MonthlyBudget         decimal.Decimal `json:"monthlyBudget"`
	SelectedCurrency      string          `json:"selectedCurrency" validate:"omitempty,iso4217"`
}

type record struct {
	ID          int64           `json:"id" validate:"required"`
	Description string          `json:"description" validate:"notblank,max=200"`
	Amount      json.RawMessage `json:"amount" validate:"required"`
	Category    string          `json:"category" validate:"category"`
	Date        string          `json:"date,omitempty" validate:"required,datetime=2006-01-02"`
	Type        string          `json:"type,omitempty" validate:"omitempty,transaction_type"`
	IsRecurring bool            `json:"isRecurring"`
	RecurringID *int64          `json:"recurringId,omitempty"`
}

// Encode renders s as an indented JSON document. Every record carries a type
// label derived from its amount sign.
func Encode(s core.Snapshot) ([]byte, error) {
	doc := document{
		Transactions:          make([]record, 0, len(s.Transactions)),
		RecurringTransactions: make([]record, 0, len(s.RecurringTransactions)),
		MonthlyBudget:         s.MonthlyBudget,
		SelectedCurrency:      s.SelectedCurrency,
	}
	if doc.SelectedCurrency == "" {
		doc.SelectedCurrency = core.DefaultCurrency
	}
	for _, t := range s.Transactions {
		doc.Transactions = append(doc.Transactions, recordOf(t))
	}
	for _, tpl := range s.RecurringTransactions {
		doc.RecurringTransactions = append(doc.RecurringTransactions, recordOf(core.Transaction(tpl)))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// Decode parses and validates a document. It is all-or-nothing: any invalid
// record rejects the whole document with a *DecodeError.
func Decode(data []byte) (core.Snapshot, DecodeReport, error) {
	var report DecodeReport

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return core.Snapshot{}, report, &DecodeError{Index: -1, Reason: "not a JSON object", Err: err}
	}
	if root == nil {
		return core.Snapshot{}, report, &DecodeError{Index: -1, Reason: "not a JSON object"}
	}

	rawTxs, ok := root["transactions"]
	if !ok || !isArray(rawTxs) {
		return core.Snapshot{}, report, &DecodeError{Index: -1, Reason: "transactions must be a list"}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.Snapshot{}, report, &DecodeError{Index: -1, Reason: "malformed document", Err: err}
	}
	if raw, ok := root["recurringTransactions"]; ok && !isArray(raw) && !isNull(raw) {
		return core.Snapshot{}, report, &DecodeError{Index: -1, Reason: "recurringTransactions must be a list"}
	}
	if doc.MonthlyBudget.IsNegative() {
		return core.Snapshot{}, report, &DecodeError{Index: -1, Reason: "monthlyBudget must not be negative"}
	}
	if err := validate.Get().StructPartial(doc, "SelectedCurrency"); err != nil {
		return core.Snapshot{}, report, &DecodeError{Index: -1, Reason: validate.Describe(err), Err: err}
	}

	snap := core.Snapshot{
		Transactions:          make([]core.Transaction, 0, len(doc.Transactions)),
		RecurringTransactions: make([]core.RecurringTemplate, 0, len(doc.RecurringTransactions)),
		MonthlyBudget:         doc.MonthlyBudget,
		SelectedCurrency:      doc.SelectedCurrency,
	}
	if snap.SelectedCurrency == "" {
		snap.SelectedCurrency = core.DefaultCurrency
	}

	seen := make(map[int64]struct{}, len(doc.Transactions))
	for i, rec := range doc.Transactions {
		if err := validate.Get().Struct(rec); err != nil {
			return core.Snapshot{}, report, &DecodeError{Section: "transactions", Index: i, Reason: validate.Describe(err), Err: err}
		}
		t, mismatch, err := rec.transaction()
		if err != nil {
			return core.Snapshot{}, report, &DecodeError{Section: "transactions", Index: i, Reason: err.Error(), Err: err}
		}
		if _, dup := seen[t.ID]; dup {
			return core.Snapshot{}, report, &DecodeError{Section: "transactions", Index: i, Reason: fmt.Sprintf("duplicate id %d", t.ID)}
		}
		seen[t.ID] = struct{}{}
		if mismatch {
			report.TypeMismatches++
		}
		snap.Transactions = append(snap.Transactions, t)
	}

	// Templates may lack an id (skipped at materialization), a creation date,
	// a description or a known category. Generation supplies the defaults.
	for i, rec := range doc.RecurringTransactions {
		if err := validate.Get().StructExcept(rec, "ID", "Date", "Description", "Category"); err != nil {
			return core.Snapshot{}, report, &DecodeError{Section: "recurringTransactions", Index: i, Reason: validate.Describe(err), Err: err}
		}
		t, mismatch, err := rec.transaction()
		if err != nil {
			return core.Snapshot{}, report, &DecodeError{Section: "recurringTransactions", Index: i, Reason: err.Error(), Err: err}
		}
		if mismatch {
			report.TypeMismatches++
		}
		snap.RecurringTransactions = append(snap.RecurringTransactions, core.RecurringTemplate(t))
	}

	return snap, report, nil
}

// FileName is the suggested name for a backup taken on today.
func FileName(today time.Time) string {
	return fileNamePrefix + core.DateOf(today).String() + ".json"
}

func recordOf(t core.Transaction) record {
	rec := record{
		ID:          t.ID,
		Description: t.Description,
		Amount:      json.RawMessage(t.Amount.String()),
		Category:    t.Category.String(),
		Type:        string(t.Kind()),
		IsRecurring: t.IsRecurring,
	}
	if !t.Date.IsZero() {
		rec.Date = t.Date.String()
	}
	if t.RecurringID != nil {
		id := *t.RecurringID
		rec.RecurringID = &id
	}
	return rec
}

// transaction converts a validated record. The amount must be a JSON number;
// quoted numbers are rejected.
func (rec record) transaction() (core.Transaction, bool, error) {
	raw := bytes.TrimSpace(rec.Amount)
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return core.Transaction{}, false, fmt.Errorf("%w: amount must be a number", core.ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("%w: %s", core.ErrInvalidAmount, raw)
	}

	t := core.Transaction{
		ID:          rec.ID,
		Description: rec.Description,
		Amount:      amount,
		Category:    core.Category(rec.Category),
		IsRecurring: rec.IsRecurring,
	}
	if rec.Date != "" {
		if t.Date, err = core.ParseDate(rec.Date); err != nil {
			return core.Transaction{}, false, err
		}
	}
	if rec.RecurringID != nil {
		id := *rec.RecurringID
		t.RecurringID = &id
	}

	mismatch := rec.Type != "" && core.Kind(rec.Type) != t.Kind()
	return t, mismatch, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
