package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
)

const (
	recurringSuffix      = " (Recurring)"
	recurringDescription = "Recurring"
)

// RecurringProcessor materializes the instances owed by recurring templates.
type RecurringProcessor struct {
	checker DuenessChecker
	logger  *log.Logger
}

// NewRecurringProcessor creates a processor using the monthly dueness rule.
func NewRecurringProcessor(logger *log.Logger) *RecurringProcessor {
	if logger == nil {
		logger = log.Discard()
	}
	return &RecurringProcessor{
		checker: MonthlyChecker{},
		logger:  logger.WithComponent(log.ComponentRecurring),
	}
}

// MaterializeDue inserts one instance for every template that has none in
// today's month and returns how many were created. Callers persist when the
// count is positive. Templates without an id are skipped.
func (p *RecurringProcessor) MaterializeDue(ctx context.Context, l *ledger.Ledger, today time.Time) int {
	templates := l.Templates()
	month := core.MonthKeyOf(today)
	created := 0

	for _, tpl := range templates {
		if tpl.ID == 0 {
			p.logger.DebugContext(ctx, "Skipping recurring template without id",
				log.FieldDescription, tpl.Description)
			continue
		}
		if !p.checker.IsDue(l.Transactions(), tpl, today) {
			continue
		}

		instance := instanceOf(tpl, l.NextID(today), today)
		if err := l.Add(instance); err != nil {
			p.logger.ErrorContext(ctx, "Failed to create transaction from recurring template",
				log.FieldTemplateID, tpl.ID,
				log.FieldDescription, tpl.Description,
				log.FieldError, err)
			continue
		}

		created++
		p.logger.InfoContext(ctx, "Created transaction from recurring template",
			log.FieldTemplateID, tpl.ID,
			log.FieldTransactionID, instance.ID,
			log.FieldAmount, instance.Amount.String(),
			log.FieldMonth, month.String())
	}

	if len(templates) > 0 {
		p.logger.InfoContext(ctx, "Recurring materialization complete",
			log.FieldCount, created,
			"total_checked", len(templates),
			log.FieldMonth, month.String())
	}
	return created
}

// instanceOf builds the dated transaction generated from tpl.
func instanceOf(tpl core.RecurringTemplate, id int64, today time.Time) core.Transaction {
	desc := strings.TrimSpace(tpl.Description)
	if desc == "" {
		desc = recurringDescription
	}
	if r := []rune(desc); len(r)+utf8.RuneCountInString(recurringSuffix) > core.MaxDescriptionLen {
		desc = string(r[:core.MaxDescriptionLen-utf8.RuneCountInString(recurringSuffix)])
	}

	category := tpl.Category
	if !category.Valid() {
		category = core.Other
	}

	templateID := tpl.ID
	return core.Transaction{
		ID:          id,
		Description: desc + recurringSuffix,
		Amount:      tpl.Amount,
		Category:    category,
		Date:        core.DateOf(today),
		IsRecurring: true,
		RecurringID: &templateID,
	}
}
