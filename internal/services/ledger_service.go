package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/amqp"
	"ledger/internal/backup"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/storage"
	"ledger/internal/validate"
)

// ErrSaveFailed marks a mutation that was applied in memory but not persisted.
var ErrSaveFailed = errors.New("save ledger")

// ChangeNotifier is told about every persisted mutation
type ChangeNotifier interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// LedgerService owns the ledger and serializes every mutation: validate,
// mutate, persist, notify. Reads go through View.
type LedgerService struct {
	mu        sync.RWMutex
	ledger    *ledger.Ledger
	store     storage.Store
	notifier  ChangeNotifier
	recurring *RecurringProcessor
	clock     func() time.Time
	currency  string
	logger    *log.Logger
}

type Option func(*LedgerService)

// WithNotifier publishes change notifications after each persisted mutation
func WithNotifier(n ChangeNotifier) Option {
	return func(s *LedgerService) { s.notifier = n }
}

// WithDefaultCurrency sets the currency of a ledger started without a stored snapshot
func WithDefaultCurrency(code string) Option {
	return func(s *LedgerService) { s.currency = strings.ToUpper(strings.TrimSpace(code)) }
}

// WithClock overrides the source of "today"
func WithClock(clock func() time.Time) Option {
	return func(s *LedgerService) { s.clock = clock }
}

func NewLedgerService(store storage.Store, logger *log.Logger, opts ...Option) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	s := &LedgerService{
		ledger:    ledger.New(),
		store:     store,
		recurring: NewRecurringProcessor(logger),
		clock:     time.Now,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate loads the stored snapshot and materializes recurring instances for
// today. A missing or unreadable snapshot starts an empty ledger. It returns
// the number of recurring instances created.
func (s *LedgerService) Activate(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok, err := s.store.Load(ctx)
	switch {
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to load snapshot, starting with an empty ledger",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err)
		snap = core.Snapshot{}
	case !ok:
		s.logger.InfoContext(ctx, "No stored snapshot, starting with an empty ledger")
	}
	if !ok && s.currency != "" {
		snap.SelectedCurrency = s.currency
	}
	s.ledger.ReplaceAll(snap)

	created := s.recurring.MaterializeDue(ctx, s.ledger, s.clock())
	if created > 0 {
		if err := s.persistLocked(ctx, amqp.OpRecurringCreated, 0); err != nil {
			return created, err
		}
	}

	s.logger.InfoContext(ctx, "Ledger activated",
		log.FieldCount, s.ledger.Len(),
		"recurring_created", created,
		log.FieldCurrency, s.ledger.Currency())
	return created, nil
}

// MaterializeRecurring creates the instances due today on the loaded ledger.
// Long-running processes call it periodically so templates fire when the
// month changes without a restart.
func (s *LedgerService) MaterializeRecurring(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.recurring.MaterializeDue(ctx, s.ledger, s.clock())
	if created == 0 {
		return 0, nil
	}
	return created, s.persistLocked(ctx, amqp.OpRecurringCreated, 0)
}

// AddTransaction validates in and inserts it at the front of the ledger. A
// recurring transaction is also copied into the templates. Invalid input
// leaves the ledger untouched.
func (s *LedgerService) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	t, err := in.Build(s.ledger.NextID(now))
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.ledger.Add(t); err != nil {
		return core.Transaction{}, err
	}
	if t.IsRecurring {
		s.ledger.AddTemplate(core.TemplateFrom(t))
	}

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().
			WithTransaction(t.ID, t.Description, t.Amount, t.Category.String()).
			WithOperation(log.OpCreate).
			ToSlice()...)

	return t, s.persistLocked(ctx, amqp.OpTransactionCreated, t.ID)
}

// DeleteTransaction removes id. An absent id is a silent no-op and reports false.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.Remove(id) {
		return false, nil
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)
	return true, s.persistLocked(ctx, amqp.OpTransactionDeleted, id)
}

// SetBudget stores the monthly budget. Zero clears it.
func (s *LedgerService) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.SetBudget(amount); err != nil {
		return err
	}
	return s.persistLocked(ctx, amqp.OpBudgetUpdated, 0)
}

// SetCurrency stores the display currency after an ISO 4217 check.
func (s *LedgerService) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validate.Currency(code); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.SetCurrency(code); err != nil {
		return err
	}
	return s.persistLocked(ctx, amqp.OpCurrencyUpdated, 0)
}

// Import replaces the whole ledger with the decoded document. Nothing
// changes when decoding fails.
func (s *LedgerService) Import(ctx context.Context, data []byte) (backup.DecodeReport, error) {
	snap, report, err := backup.Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Rejected backup import",
			log.FieldOperation, log.OpImport,
			log.FieldError, err)
		return report, err
	}
	if report.TypeMismatches > 0 {
		s.logger.WarnContext(ctx, "Imported type labels disagree with amount signs, using signs",
			log.FieldCount, report.TypeMismatches)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.ReplaceAll(snap)
	s.logger.InfoContext(ctx, "Backup imported",
		log.FieldOperation, log.OpImport,
		log.FieldCount, s.ledger.Len())
	return report, s.persistLocked(ctx, amqp.OpLedgerImported, 0)
}

// Export encodes the current ledger as a backup document.
func (s *LedgerService) Export(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	snap := s.ledger.Snapshot()
	s.mu.RUnlock()

	data, err := backup.Encode(snap)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Backup exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(snap.Transactions))
	return data, nil
}

// View runs fn with read access to the ledger. fn must not retain or mutate it.
func (s *LedgerService) View(fn func(l *ledger.Ledger)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.ledger)
}

// Now returns the service clock's current time.
func (s *LedgerService) Now() time.Time {
	return s.clock()
}

// persistLocked saves the snapshot and announces the change. A save failure
// is returned; the in-memory mutation stays and the next save persists it.
// Notification failures are only logged.
func (s *LedgerService) persistLocked(ctx context.Context, operation string, transactionID int64) error {
	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save snapshot",
			log.FieldOperation, log.OpSave,
			log.FieldError, err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if s.notifier == nil {
		return nil
	}
	msg := amqp.NewLedgerChangedMessage(operation, transactionID, s.ledger.Revision(), s.clock())
	if err := s.notifier.PublishLedgerChanged(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change",
			log.FieldOperation, operation,
			log.FieldError, err)
	}
	return nil
}
