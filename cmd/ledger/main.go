// Command ledger records income and expenses, materializes recurring
// transactions and reports balances, budgets and insights. It can also serve
// the ledger as a JSON API and watch for changes made by other processes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"ledger/internal/backend"
	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
)

const usage = `usage: ledger <command> [flags] [args]

commands:
  summary                          totals, categories, months, budget and insights
  list [-q text] [-category name]  list transactions, newest first
  add -desc d -amount n [-type expense|income] [-category c] [-date YYYY-MM-DD] [-recurring]
  delete <id>                      remove a transaction
  budget [amount]                  show or set the monthly budget (0 clears it)
  currency [code]                  show or set the display currency
  export [-o path]                 write a backup document (stdout by default)
  import <file|->                  replace the ledger with a backup document
  serve                            run the JSON API
  watch                            print a line for every change notification
`

var errUsage = errors.New("invalid usage")

func main() {
	cli.LoadEnvFile()

	err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "ledger:", err)
		os.Exit(1)
	}
}

// app carries everything a subcommand needs for one activation.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	backend *backend.Result
	ledger  *services.LedgerService
	reports *services.ReportService
	cache   *cache.LRUCache[services.Dashboard]
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	name, args := args[0], args[1:]
	if name == "help" || name == "-h" || name == "--help" {
		fmt.Fprint(stdout, usage)
		return nil
	}

	command, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(stderr, cfg.LogLevel)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	a := &app{
		cfg:     cfg,
		logger:  logger,
		backend: res,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}

	if name != "watch" {
		if err := a.activate(ctx); err != nil {
			return err
		}
	}
	return command(ctx, a, args)
}

// activate loads the ledger and materializes due recurring transactions.
func (a *app) activate(ctx context.Context) error {
	opts := []services.Option{services.WithDefaultCurrency(a.cfg.DefaultCurrency)}
	if a.backend.Notifier != nil {
		opts = append(opts, services.WithNotifier(a.backend.Notifier))
	}
	a.ledger = services.NewLedgerService(a.backend.Store, a.logger, opts...)

	created, err := a.ledger.Activate(ctx)
	if err != nil {
		return err
	}
	if created > 0 {
		fmt.Fprintf(a.stderr, "Added %d recurring transaction(s) for this month\n", created)
	}

	a.cache = cache.NewLRUCache[services.Dashboard](a.cfg.ReportCacheSize, 10*time.Minute)
	a.reports = services.NewReportService(a.ledger, a.cache, a.cfg.SummaryMonths, a.logger)
	return nil
}
