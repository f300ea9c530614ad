// Package services orchestrates the ledger: recurring materialization,
// mutations with persistence and notification, and cached reports.
//
// This file holds the dueness strategy for recurring templates. A checker
// decides from the existing ledger whether a template still owes an
// instance for the period containing today.
package services

import (
	"time"

	"ledger/internal/core"
)

// DuenessChecker is the strategy interface for deciding if a template is due.
type DuenessChecker interface {
	// IsDue reports whether tpl has no generated instance in the period
	// containing today.
	IsDue(txs []core.Transaction, tpl core.RecurringTemplate, today time.Time) bool
}

// MonthlyChecker allows at most one instance per template per calendar month.
// Missed months are not backfilled; only today's month is checked.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(txs []core.Transaction, tpl core.RecurringTemplate, today time.Time) bool {
	month := core.MonthKeyOf(today)
	for _, t := range txs {
		if t.RecurringID != nil && *t.RecurringID == tpl.ID && month.Contains(t.Date) {
			return false
		}
	}
	return true
}
