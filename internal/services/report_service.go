package services

import (
	"context"
	"fmt"
	"time"

	"ledger/internal/analytics"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
)

// Dashboard is every derived view of the ledger for one day.
type Dashboard struct {
	Date       string                `json:"date"`
	Currency   string                `json:"currency"`
	Revision   uint64                `json:"revision"`
	Totals     core.Totals           `json:"totals"`
	ByCategory []core.CategoryAmount `json:"byCategory"`
	Months     []core.MonthSummary   `json:"months"`
	Budget     core.BudgetProgress   `json:"budget"`
	Insights   []analytics.Insight   `json:"insights"`
}

// ReportService computes dashboards and filtered listings. Dashboards are
// memoized per ledger revision and day, so repeated reads between mutations
// skip aggregation. Cached dashboards are shared and must not be mutated.
type ReportService struct {
	ledger *LedgerService
	cache  *cache.LRUCache[Dashboard]
	months int
	logger *log.Logger
}

func NewReportService(ls *LedgerService, dashboards *cache.LRUCache[Dashboard], summaryMonths int, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Discard()
	}
	if summaryMonths <= 0 {
		summaryMonths = analytics.DefaultSummaryMonths
	}
	return &ReportService{
		ledger: ls,
		cache:  dashboards,
		months: summaryMonths,
		logger: logger.WithComponent(log.ComponentReport),
	}
}

// Dashboard aggregates the ledger as seen on today.
func (s *ReportService) Dashboard(ctx context.Context, today time.Time) Dashboard {
	var d Dashboard
	s.ledger.View(func(l *ledger.Ledger) {
		key := fmt.Sprintf("%d|%s", l.Revision(), core.DateOf(today))
		if s.cache != nil {
			if cached, ok := s.cache.Get(key); ok {
				d = cached
				return
			}
		}

		d = buildDashboard(l, today, s.months)
		if s.cache != nil {
			s.cache.Set(key, d)
		}
		s.logger.DebugContext(ctx, "Dashboard computed",
			log.FieldRevision, d.Revision,
			log.FieldCount, len(d.Insights))
	})
	return d
}

// Transactions lists the ledger filtered by description substring and
// category, newest first. An empty category matches all.
func (s *ReportService) Transactions(search string, category core.Category) []core.Transaction {
	var out []core.Transaction
	s.ledger.View(func(l *ledger.Ledger) {
		out = analytics.Filter(l.Transactions(), search, category)
	})
	return out
}

func buildDashboard(l *ledger.Ledger, today time.Time, months int) Dashboard {
	txs := l.Transactions()
	currency := l.Currency()
	return Dashboard{
		Date:       core.DateOf(today).String(),
		Currency:   currency,
		Revision:   l.Revision(),
		Totals:     analytics.ComputeTotals(txs),
		ByCategory: nonNil(analytics.ExpensesByCategory(txs)),
		Months:     analytics.MonthlySummary(txs, months),
		Budget:     analytics.ComputeBudgetProgress(txs, l.Budget(), today),
		Insights:   analytics.Insights(txs, l.Budget(), today, currency),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
