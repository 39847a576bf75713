// transaction-api is the local runner: it processes a transaction CSV the
// same way the upload-triggered Lambda does, but against the filesystem, an
// SMTP transport, and an optional sqlite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/radamanthiss/transaction-api/internal/blob"
	"github.com/radamanthiss/transaction-api/internal/config"
	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/email"
	"github.com/radamanthiss/transaction-api/internal/months"
	"github.com/radamanthiss/transaction-api/internal/parser"
	"github.com/radamanthiss/transaction-api/internal/pipeline"
	"github.com/radamanthiss/transaction-api/internal/registrar"
	"github.com/radamanthiss/transaction-api/internal/render"
	"github.com/radamanthiss/transaction-api/internal/store/sqlite"
	"github.com/radamanthiss/transaction-api/internal/summary"
	"github.com/radamanthiss/transaction-api/internal/ui"
)

const version = "0.1.0"

var (
	versionFlag = flag.Bool("version", false, "Show version")

	file       = flag.String("file", "", "Transaction CSV file to process")
	configFile = flag.String("config", "", "YAML config file (default: environment)")
	dbPath     = flag.String("db", "", "Sqlite database for accounts and persisted transactions")
	send       = flag.Bool("send", false, "Send summary emails over SMTP (default: print only)")
	localeFlag = flag.String("locale", "", "Month-name locale, e.g. es_ES (overrides config)")
	register   = flag.String("register", "", "Register an account as id:email and exit (requires -db)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `transaction-api - local transaction summary runner

Usage:
  transaction-api [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Summarize a CSV to the terminal
  transaction-api -file txns.csv

  # Summarize, send over SMTP, and persist to a local db
  transaction-api -file txns.csv -send -db accounts.db

  # Register an account locally
  transaction-api -register 1:jane@example.com -db accounts.db

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("transaction-api version %s\n", version)
		os.Exit(0)
	}

	// Mirror the deployed environment locally when a .env file is present.
	_ = godotenv.Load()

	if *file == "" && *register == "" {
		fmt.Fprintf(os.Stderr, "Error: -file or -register is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if *register != "" {
		return registerAccount(ctx, *register)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	localeTag := cfg.Locale
	if *localeFlag != "" {
		localeTag = *localeFlag
	}
	locale, err := months.Resolve(localeTag)
	if err != nil {
		return err
	}

	ui.Header("Transaction Summary")
	ui.Step(1, 3, fmt.Sprintf("Reading %s", *file))

	raw, err := blob.FSReader{}.Fetch(ctx, "", *file)
	if err != nil {
		return err
	}

	ui.Step(2, 3, "Parsing transactions")
	parsed, err := parser.Parse(raw)
	if err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Parsed %d transactions (%d rows skipped)",
		len(parsed.Transactions), parsed.Skipped))

	groups, order := domain.GroupByAccount(parsed.Transactions)

	ui.Step(3, 3, "Summarizing accounts")
	for _, accountID := range order {
		sum := summary.Summarize(groups[accountID], locale)
		fmt.Printf("\nAccount %s (%d transactions)\n", accountID, len(groups[accountID]))
		ui.Field("Total balance", sum.TotalBalance.StringFixed(2))
		ui.Field("Average credit", sum.AverageCredit.StringFixed(2))
		ui.Field("Average debit", sum.AverageDebit.StringFixed(2))
		for _, mc := range sum.Monthly {
			ui.Field(mc.Month, fmt.Sprintf("%d transactions", mc.Count))
		}
	}

	if !*send && *dbPath == "" {
		return nil
	}
	return runPipeline(ctx, cfg, locale)
}

// runPipeline re-runs the file through the real pipeline so sends and
// persistence behave exactly as deployed.
func runPipeline(ctx context.Context, cfg *config.Config, locale months.Locale) error {
	renderer, err := render.New()
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Blob:       blob.FSReader{},
		Renderer:   renderer,
		Sender:     cfg.SenderEmail,
		Locale:     locale,
		Dispatcher: noopDispatcher{},
		Recipients: pipeline.FixedRecipient(cfg.FallbackRecipient),
	}

	if *send {
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.Dispatcher = email.NewSMTPDispatcher(cfg.SMTP.Email())
	}

	if *dbPath != "" {
		db, err := sqlite.Open(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		p.Transactions = db
		// Prefer registered local accounts over the fallback recipient.
		p.Recipients = fallbackResolver{
			primary:  registrar.New(db),
			fallback: pipeline.FixedRecipient(cfg.FallbackRecipient),
		}
	}

	result, err := p.Run(ctx, "", *file)
	if err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("%d accounts processed, %d emails sent, %d failed, %d transactions persisted",
		result.Accounts, result.EmailsSent, result.EmailsFailed, result.Persisted))
	return nil
}

// loadConfig prefers the YAML file, falling back to the environment with
// local-mode defaults relaxed so a bare `-file` run needs no setup.
func loadConfig() (*config.Config, error) {
	if *configFile != "" {
		return config.Load(*configFile)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Mode = domain.ModeLocal
	return cfg, nil
}

func registerAccount(ctx context.Context, arg string) error {
	if *dbPath == "" {
		return fmt.Errorf("-register requires -db")
	}
	id, addr, ok := strings.Cut(arg, ":")
	if !ok {
		return fmt.Errorf("invalid -register value %q (want id:email)", arg)
	}

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := registrar.New(db).Register(ctx, id, addr); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Registered account %s -> %s", id, addr))
	return nil
}

// noopDispatcher counts a send as done without dispatching; used when the
// user asked for persistence but not sending.
type noopDispatcher struct{}

func (noopDispatcher) Send(ctx context.Context, sender, recipient, subject, htmlBody string) (string, error) {
	return "not-sent", nil
}

// fallbackResolver tries the local account store first and falls back to the
// configured recipient for unregistered accounts.
type fallbackResolver struct {
	primary  pipeline.RecipientResolver
	fallback pipeline.RecipientResolver
}

func (r fallbackResolver) Email(ctx context.Context, accountID string) (string, error) {
	addr, err := r.primary.Email(ctx, accountID)
	if err == nil {
		return addr, nil
	}
	return r.fallback.Email(ctx, accountID)
}
