// Package worker reacts to ledger change notifications published by other
// processes sharing the same store.
package worker

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/analytics"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// seenCapacity bounds the message ids kept for duplicate detection.
const seenCapacity = 1024

// ChangeWorker reloads the stored snapshot on every change notification and
// reports the refreshed totals. Duplicate deliveries among the most recent
// seenCapacity messages are ignored.
type ChangeWorker struct {
	store  storage.Store
	out    io.Writer
	clock  func() time.Time
	logger *log.Logger

	mu   sync.Mutex
	seen *cache.LRUCache[struct{}]
}

func NewChangeWorker(store storage.Store, out io.Writer, clock func() time.Time, logger *log.Logger) *ChangeWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if clock == nil {
		clock = time.Now
	}
	return &ChangeWorker{
		store:  store,
		out:    out,
		clock:  clock,
		logger: logger.WithComponent(log.ComponentWatcher),
		seen:   cache.NewLRUCache[struct{}](seenCapacity, 0),
	}
}

// HandleLedgerChanged processes a single change message. A returned error
// makes the consumer requeue the message.
func (w *ChangeWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.mu.Lock()
	_, dup := w.seen.Get(msg.ID)
	if !dup {
		w.seen.Set(msg.ID, struct{}{})
	}
	w.mu.Unlock()
	if dup {
		w.logger.DebugContext(ctx, "Skipping duplicate delivery", log.FieldMessageID, msg.ID)
		return nil
	}

	snap, ok, err := w.store.Load(ctx)
	if err != nil {
		w.forget(msg.ID)
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		snap = core.Snapshot{SelectedCurrency: core.DefaultCurrency}
	}

	today := w.clock()
	totals := analytics.ComputeTotals(snap.Transactions)
	progress := analytics.ComputeBudgetProgress(snap.Transactions, snap.MonthlyBudget, today)

	line := fmt.Sprintf("%s %s rev=%d balance=%s income=%s expenses=%s",
		msg.Timestamp.Format(time.RFC3339), msg.Operation, msg.Revision,
		core.FormatMoney(totals.Balance, snap.SelectedCurrency),
		core.FormatMoney(totals.Income, snap.SelectedCurrency),
		core.FormatMoney(totals.Expenses, snap.SelectedCurrency))
	if progress.Active {
		line += fmt.Sprintf(" budget=%.0f%% (%s)", progress.Percentage, progress.Severity)
	}
	if _, err := fmt.Fprintln(w.out, line); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	w.logger.InfoContext(ctx, "Ledger change processed",
		log.FieldMessageID, msg.ID,
		log.FieldOperation, msg.Operation,
		log.FieldRevision, msg.Revision,
		log.FieldCount, len(snap.Transactions))
	return nil
}

func (w *ChangeWorker) forget(id string) {
	w.mu.Lock()
	w.seen.Delete(id)
	w.mu.Unlock()
}
