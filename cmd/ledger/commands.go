package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/backup"
	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/core"
	apphttp "ledger/internal/http"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/worker"
)

var commands = map[string]func(ctx context.Context, a *app, args []string) error{
	"summary":  cmdSummary,
	"list":     cmdList,
	"add":      cmdAdd,
	"delete":   cmdDelete,
	"budget":   cmdBudget,
	"currency": cmdCurrency,
	"export":   cmdExport,
	"import":   cmdImport,
	"serve":    cmdServe,
	"watch":    cmdWatch,
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func cmdSummary(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet(a, "summary"), args); err != nil {
		return err
	}
	d := a.reports.Dashboard(ctx, a.ledger.Now())

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Balance:\t%s\n", core.FormatMoney(d.Totals.Balance, d.Currency))
	fmt.Fprintf(tw, "Income:\t%s\n", core.FormatMoney(d.Totals.Income, d.Currency))
	fmt.Fprintf(tw, "Expenses:\t%s\n", core.FormatMoney(d.Totals.Expenses, d.Currency))

	fmt.Fprintln(tw, "\nExpenses by category:")
	if len(d.ByCategory) == 0 {
		fmt.Fprintln(tw, "  none")
	}
	for _, c := range d.ByCategory {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Category, core.FormatMoney(c.Amount, d.Currency))
	}

	fmt.Fprintln(tw, "\nMonthly summary:")
	if len(d.Months) == 0 {
		fmt.Fprintln(tw, "  none")
	}
	for _, m := range d.Months {
		fmt.Fprintf(tw, "  %s\tincome %s\texpenses %s\tnet %s\n", m.Month,
			core.FormatMoney(m.Income, d.Currency),
			core.FormatMoney(m.Expenses, d.Currency),
			core.FormatMoney(m.Net, d.Currency))
	}

	fmt.Fprintln(tw)
	if d.Budget.Active {
		fmt.Fprintf(tw, "Budget:\t%s of %s (%.0f%%, %s), %s remaining\n",
			core.FormatMoney(d.Budget.Spent, d.Currency),
			core.FormatMoney(d.Budget.Budget, d.Currency),
			d.Budget.Percentage, d.Budget.Severity,
			core.FormatMoney(d.Budget.Remaining, d.Currency))
	} else {
		fmt.Fprintln(tw, "Budget:\tnot set")
	}

	fmt.Fprintln(tw, "\nInsights:")
	for _, in := range d.Insights {
		fmt.Fprintf(tw, "  - %s\n", in.Message)
	}
	return tw.Flush()
}

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "list")
	search := fs.String("q", "", "case-insensitive description search")
	categoryName := fs.String("category", "", "only this category")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var category core.Category
	if *categoryName != "" && !strings.EqualFold(*categoryName, "all") {
		c, err := core.ParseCategory(*categoryName)
		if err != nil {
			return err
		}
		category = c
	}

	var currency string
	a.ledger.View(func(l *ledger.Ledger) { currency = l.Currency() })

	txs := a.reports.Transactions(*search, category)
	if len(txs) == 0 {
		fmt.Fprintln(a.stdout, "No transactions found")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date, t.Kind(), t.Category, core.FormatMoney(t.Amount, currency), t.Description)
	}
	return tw.Flush()
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "add")
	var in core.TransactionInput
	fs.StringVar(&in.Description, "desc", "", "description (required)")
	fs.StringVar(&in.Amount, "amount", "", "amount, dot or comma decimals (required)")
	fs.StringVar(&in.Kind, "type", string(core.Expense), "expense or income")
	fs.StringVar(&in.Category, "category", string(core.Other), "one of "+categoryNames())
	fs.StringVar(&in.Date, "date", "", "YYYY-MM-DD, today when empty")
	fs.BoolVar(&in.Recurring, "recurring", false, "repeat every month")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if in.Date == "" {
		in.Date = core.DateOf(a.ledger.Now()).String()
	}

	t, err := a.ledger.AddTransaction(ctx, in)
	if err != nil {
		return err
	}

	var currency string
	a.ledger.View(func(l *ledger.Ledger) { currency = l.Currency() })
	fmt.Fprintf(a.stdout, "Added %s #%d: %s %s (%s, %s)\n",
		t.Kind(), t.ID, t.Description, core.FormatMoney(t.Amount, currency), t.Category, t.Date)
	return nil
}

func categoryNames() string {
	names := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete takes exactly one id", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrInvalidID, args[0])
	}

	deleted, err := a.ledger.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintf(a.stdout, "No transaction #%d\n", id)
		return nil
	}
	fmt.Fprintf(a.stdout, "Deleted #%d\n", id)
	return nil
}

func cmdBudget(ctx context.Context, a *app, args []string) error {
	switch len(args) {
	case 0:
		var budget, currency string
		a.ledger.View(func(l *ledger.Ledger) {
			currency = l.Currency()
			if l.Budget().IsPositive() {
				budget = core.FormatMoney(l.Budget(), currency)
			}
		})
		if budget == "" {
			fmt.Fprintln(a.stdout, "Monthly budget: not set")
		} else {
			fmt.Fprintf(a.stdout, "Monthly budget: %s\n", budget)
		}
		return nil
	case 1:
		amount, err := core.ParseAmount(args[0])
		if err != nil {
			return err
		}
		if err := a.ledger.SetBudget(ctx, amount); err != nil {
			return err
		}
		if amount.IsZero() {
			fmt.Fprintln(a.stdout, "Monthly budget cleared")
		} else {
			fmt.Fprintf(a.stdout, "Monthly budget set to %s\n", amount.StringFixed(2))
		}
		return nil
	default:
		return fmt.Errorf("%w: budget takes at most one amount", errUsage)
	}
}

func cmdCurrency(ctx context.Context, a *app, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: currency takes at most one code", errUsage)
	}
	if len(args) == 1 {
		if err := a.ledger.SetCurrency(ctx, args[0]); err != nil {
			return err
		}
	}
	var currency string
	a.ledger.View(func(l *ledger.Ledger) { currency = l.Currency() })
	fmt.Fprintf(a.stdout, "Currency: %s\n", currency)
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "export")
	out := fs.String("o", "", "output file or directory; stdout when empty")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	data, err := a.ledger.Export(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err := a.stdout.Write(data)
		return err
	}

	path := *out
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, backup.FileName(a.ledger.Now()))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	fmt.Fprintf(a.stderr, "Backup written to %s\n", path)
	return nil
}

func cmdImport(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import takes exactly one file", errUsage)
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	report, err := a.ledger.Import(ctx, data)
	if err != nil {
		return err
	}

	var transactions, templates int
	a.ledger.View(func(l *ledger.Ledger) {
		transactions = l.Len()
		templates = len(l.Templates())
	})
	fmt.Fprintf(a.stdout, "Imported %d transaction(s) and %d recurring template(s)\n", transactions, templates)
	if report.TypeMismatches > 0 {
		fmt.Fprintf(a.stdout, "%d type label(s) disagreed with the amount sign; the sign was kept\n", report.TypeMismatches)
	}
	return nil
}

func cmdServe(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet(a, "serve"), args); err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(ctx, a.logger)
	defer stop()

	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	srv := apphttp.NewServer(":"+a.cfg.Port, a.ledger, a.reports, limiter, a.logger)

	manager := cache.NewManager(a.logger)
	manager.Register(a.cache)
	manager.Register(limiter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		return manager.Run(gctx, time.Minute)
	})
	g.Go(func() error {
		runRecurring(gctx, a)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// runRecurring materializes due templates on every tick so a server left
// running across a month boundary behaves like a fresh activation.
func runRecurring(ctx context.Context, a *app) {
	ticker := time.NewTicker(a.cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			created, err := a.ledger.MaterializeRecurring(ctx)
			if err != nil {
				a.logger.ErrorContext(ctx, "Periodic recurring processing failed", log.FieldError, err)
				continue
			}
			if created > 0 {
				a.logger.InfoContext(ctx, "Periodic recurring processing complete",
					log.FieldOperation, log.OpMaterialize,
					log.FieldCount, created)
			}
		}
	}
}

func cmdWatch(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet(a, "watch"), args); err != nil {
		return err
	}
	if a.backend.Notifier == nil {
		return errors.New("watch needs a reachable AMQP broker (set AMQP_URL)")
	}

	ctx, stop := cli.SignalContext(ctx, a.logger)
	defer stop()

	w := worker.NewChangeWorker(a.backend.Store, a.stdout, time.Now, a.logger)
	err := a.backend.Notifier.ConsumeLedgerChanged(ctx, w.HandleLedgerChanged)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
