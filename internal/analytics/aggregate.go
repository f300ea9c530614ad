// Package analytics derives totals, summaries, budget progress, insights and
// filtered views from a transaction sequence. Every function is pure: inputs
// are never mutated and the current date is always passed in.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

// DefaultSummaryMonths is how many month buckets MonthlySummary keeps by default.
const DefaultSummaryMonths = 6

const (
	warningPercent = 70
	dangerPercent  = 100
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals folds the whole history into balance, income and signed expenses.
func ComputeTotals(txs []core.Transaction) core.Totals {
	totals := core.Totals{Balance: decimal.Zero, Income: decimal.Zero, Expenses: decimal.Zero}
	for _, t := range txs {
		totals.Balance = totals.Balance.Add(t.Amount)
		if t.Amount.IsPositive() {
			totals.Income = totals.Income.Add(t.Amount)
		} else {
			totals.Expenses = totals.Expenses.Add(t.Amount)
		}
	}
	return totals
}

// ExpensesByCategory sums absolute expense amounts per category over the
// whole history. Categories appear in order of first occurrence.
func ExpensesByCategory(txs []core.Transaction) []core.CategoryAmount {
	return sumByCategory(txs, func(core.Transaction) bool { return true })
}

// MonthExpenses returns the expenses dated in month, in ledger order.
func MonthExpenses(txs []core.Transaction, month core.MonthKey) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if t.IsExpense() && month.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// MonthSpend is the absolute sum of expenses dated in month.
func MonthSpend(txs []core.Transaction, month core.MonthKey) decimal.Decimal {
	spent := decimal.Zero
	for _, t := range MonthExpenses(txs, month) {
		spent = spent.Add(t.Amount.Abs())
	}
	return spent
}

// MonthlySummary groups transactions by month and returns at most limit
// buckets, newest month first. A limit <= 0 uses DefaultSummaryMonths.
func MonthlySummary(txs []core.Transaction, limit int) []core.MonthSummary {
	if limit <= 0 {
		limit = DefaultSummaryMonths
	}

	buckets := make(map[core.MonthKey]*core.MonthSummary)
	for _, t := range txs {
		if t.Date.IsZero() {
			continue
		}
		key := t.Date.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &core.MonthSummary{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
			buckets[key] = b
		}
		if t.Amount.IsPositive() {
			b.Income = b.Income.Add(t.Amount)
		} else {
			b.Expenses = b.Expenses.Add(t.Amount)
		}
	}

	out := make([]core.MonthSummary, 0, len(buckets))
	for _, b := range buckets {
		b.Net = b.Income.Add(b.Expenses)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ComputeBudgetProgress compares the current month's spend with budget.
// A budget <= 0 means no budget is set and the result is inactive.
func ComputeBudgetProgress(txs []core.Transaction, budget decimal.Decimal, today time.Time) core.BudgetProgress {
	if !budget.IsPositive() {
		return core.BudgetProgress{Budget: decimal.Zero, Spent: decimal.Zero, Remaining: decimal.Zero}
	}

	spent := MonthSpend(txs, core.MonthKeyOf(today))
	percentage := spent.Div(budget).Mul(hundred).InexactFloat64()

	remaining := budget.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	fill := percentage
	if fill > dangerPercent {
		fill = dangerPercent
	}

	return core.BudgetProgress{
		Active:     true,
		Budget:     budget,
		Spent:      spent,
		Remaining:  remaining,
		Percentage: percentage,
		FillWidth:  fill,
		Severity:   classify(percentage),
	}
}

func classify(percentage float64) core.Severity {
	switch {
	case percentage >= dangerPercent:
		return core.SeverityDanger
	case percentage >= warningPercent:
		return core.SeverityWarning
	default:
		return core.SeverityNormal
	}
}

func sumByCategory(txs []core.Transaction, keep func(core.Transaction) bool) []core.CategoryAmount {
	var out []core.CategoryAmount
	index := make(map[core.Category]int)
	for _, t := range txs {
		if !t.IsExpense() || !keep(t) {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAmount{Category: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount.Abs())
	}
	return out
}
