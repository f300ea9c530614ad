package core

import (
	"fmt"
	"strings"
)

// TransactionInput is the raw form of an add request, before validation.
type TransactionInput struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Kind        string `json:"type"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Recurring   bool   `json:"isRecurring"`
}

// Build parses and validates the input into a Transaction with the given id.
// An empty Kind defaults to expense. The date is required.
// The sign of the entered amount is ignored, Kind decides it. Zero is rejected.
func (in TransactionInput) Build(id int64) (Transaction, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return Transaction{}, ErrEmptyDescription
	}

	magnitude, err := ParseAmount(in.Amount)
	if err != nil {
		return Transaction{}, err
	}
	if magnitude.IsZero() {
		return Transaction{}, fmt.Errorf("%w: amount must not be zero", ErrInvalidAmount)
	}

	kind := Expense
	if strings.TrimSpace(in.Kind) != "" {
		if kind, err = ParseKind(in.Kind); err != nil {
			return Transaction{}, err
		}
	}

	category, err := ParseCategory(in.Category)
	if err != nil {
		return Transaction{}, err
	}

	if strings.TrimSpace(in.Date) == "" {
		return Transaction{}, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Transaction{}, err
	}

	t := Transaction{
		ID:          id,
		Description: description,
		Amount:      SignedAmount(magnitude, kind),
		Category:    category,
		Date:        date,
		IsRecurring: in.Recurring,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}
