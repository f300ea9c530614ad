package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ledger/internal/core"
)

const (
	InsightDominantCategory InsightKind = "dominant-category"
	InsightFoodTrend        InsightKind = "food-trend"
	InsightBudgetOverrun    InsightKind = "budget-overrun"
	InsightNotEnoughData    InsightKind = "not-enough-data"
)

// TrendCategory is the category compared month over month.
const TrendCategory = core.Food

type InsightKind string

// Insight is one derived observation. Only the fields relevant to Kind are set.
type Insight struct {
	Kind      InsightKind     `json:"kind"`
	Category  core.Category   `json:"category,omitempty"`
	Percent   int64           `json:"percent,omitempty"`
	Direction string          `json:"direction,omitempty"` // "more" or "less"
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
}

// Insights derives the observations for the month containing today. Each
// rule is independent; when none applies a single not-enough-data insight
// is returned, so the result is never empty.
func Insights(txs []core.Transaction, budget decimal.Decimal, today time.Time, currency string) []Insight {
	current := core.MonthKeyOf(today)
	var out []Insight

	if in, ok := dominantCategory(txs, current); ok {
		out = append(out, in)
	}
	if in, ok := categoryTrend(txs, TrendCategory, current); ok {
		out = append(out, in)
	}
	if in, ok := budgetOverrun(txs, budget, current); ok {
		out = append(out, in)
	}

	if len(out) == 0 {
		out = append(out, Insight{Kind: InsightNotEnoughData, Amount: decimal.Zero})
	}
	for i := range out {
		out[i].Message = out[i].Text(currency)
	}
	return out
}

func dominantCategory(txs []core.Transaction, month core.MonthKey) (Insight, bool) {
	byCategory := sumByCategory(txs, func(t core.Transaction) bool { return month.Contains(t.Date) })
	if len(byCategory) == 0 {
		return Insight{}, false
	}

	total := decimal.Zero
	top := byCategory[0]
	for _, ca := range byCategory {
		total = total.Add(ca.Amount)
		// Strictly greater: the first category reaching the maximum wins.
		if ca.Amount.GreaterThan(top.Amount) {
			top = ca
		}
	}

	percent := int64(0)
	if total.IsPositive() {
		percent = top.Amount.Div(total).Mul(hundred).Round(0).IntPart()
	}
	return Insight{
		Kind:     InsightDominantCategory,
		Category: top.Category,
		Percent:  percent,
		Amount:   top.Amount,
	}, true
}

func categoryTrend(txs []core.Transaction, category core.Category, month core.MonthKey) (Insight, bool) {
	spend := func(m core.MonthKey) decimal.Decimal {
		total := decimal.Zero
		for _, t := range MonthExpenses(txs, m) {
			if t.Category == category {
				total = total.Add(t.Amount.Abs())
			}
		}
		return total
	}

	cur, prev := spend(month), spend(month.Previous())
	if !cur.IsPositive() || !prev.IsPositive() {
		return Insight{}, false
	}

	change := cur.Sub(prev).Div(prev).Mul(hundred)
	direction := "less"
	if change.IsPositive() {
		direction = "more"
	}
	return Insight{
		Kind:      InsightFoodTrend,
		Category:  category,
		Percent:   change.Abs().Round(0).IntPart(),
		Direction: direction,
		Amount:    cur.Sub(prev),
	}, true
}

func budgetOverrun(txs []core.Transaction, budget decimal.Decimal, month core.MonthKey) (Insight, bool) {
	if !budget.IsPositive() {
		return Insight{}, false
	}
	spent := MonthSpend(txs, month)
	if !spent.GreaterThan(budget) {
		return Insight{}, false
	}
	return Insight{
		Kind:   InsightBudgetOverrun,
		Amount: spent.Sub(budget),
	}, true
}

// Text renders the insight as a sentence, formatting money in currency.
func (in Insight) Text(currency string) string {
	switch in.Kind {
	case InsightDominantCategory:
		return fmt.Sprintf("Your biggest expense category this month is %s (%d%% of total).",
			title(in.Category), in.Percent)
	case InsightFoodTrend:
		return fmt.Sprintf("You spent %d%% %s on %s compared to last month.",
			in.Percent, in.Direction, title(in.Category))
	case InsightBudgetOverrun:
		return fmt.Sprintf("You've exceeded your monthly budget by %s.", core.FormatMoney(in.Amount, currency))
	default:
		return "Not enough data for insights yet."
	}
}

// title capitalizes a category name. Casers are stateful, so one is built per call.
func title(c core.Category) string {
	return cases.Title(language.English).String(c.String())
}
