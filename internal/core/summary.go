package core

import "github.com/shopspring/decimal"

const (
	SeverityNormal  Severity = "normal"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Severity classifies how much of the monthly budget has been used.
type Severity string

// Totals is the fold over the whole ledger. Expenses is signed (<= 0).
type Totals struct {
	Balance  decimal.Decimal `json:"balance"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthSummary is the income/expense/net of one month bucket.
type MonthSummary struct {
	Month    MonthKey        `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// BudgetProgress describes current-month spend against the monthly budget.
// When Active is false no budget is set and the other fields are zero.
type BudgetProgress struct {
	Active     bool            `json:"active"`
	Budget     decimal.Decimal `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	FillWidth  float64         `json:"fillWidth"`
	Severity   Severity        `json:"severity"`
}
