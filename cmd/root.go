// Package cmd implements the rupee CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/currency"
	"github.com/theirongolddev/rupee/internal/events"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/logging"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagBackend  string
	flagDemo     bool
	flagCurrency string
	flagNoColor  bool
	flagLogLevel string
	flagQuiet    bool
)

var (
	appCfg config.Config
	appLog = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:               "rupee",
	Short:             "Personal finance dashboard",
	Long:              "Track income, expenses, budgets and savings goals from the terminal.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite path or Postgres DSN (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: memory, sqlite or postgres")
	rootCmd.PersistentFlags().BoolVar(&flagDemo, "demo", false, "Use an in-memory ledger seeded with sample data")
	rootCmd.PersistentFlags().StringVar(&flagCurrency, "currency", "", "Display currency ISO code, e.g. INR or USD")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// setup loads .env files and the config, then applies flag overrides.
// It runs before every command.
func setup(_ *cobra.Command, _ []string) error {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "  Warning: reading .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	appCfg = cfg

	appLog = logging.New(logging.Config{Level: cfg.Log.Level})

	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	f, err := currency.NewFormatter(cfg.Currency.Locale, cfg.Currency.Code, cfg.Currency.Symbol)
	if err != nil {
		return err
	}
	cli.SetCurrency(f)
	return nil
}

func applyFlags(cfg *config.Config) {
	if flagBackend != "" {
		cfg.Storage.Backend = config.Backend(strings.ToLower(flagBackend))
	}
	if flagDB != "" {
		if strings.HasPrefix(flagDB, "postgres://") || strings.HasPrefix(flagDB, "postgresql://") {
			cfg.Storage.Backend = config.BackendPostgres
			cfg.Storage.DSN = flagDB
		} else {
			cfg.Storage.Path = flagDB
		}
	}
	if flagDemo {
		cfg.Storage.Backend = config.BackendMemory
	}
	if flagCurrency != "" {
		cfg.Currency.Code = strings.ToUpper(flagCurrency)
		cfg.Currency.Symbol = ""
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
}

// openLedger is the shared data path used by all commands. An empty ledger
// is seeded with the sample data so a first run has something to show.
// The returned func releases the store and the event publisher.
func openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	s, err := store.New(ctx, appCfg, appLog)
	if err != nil {
		return nil, nil, fmt.Errorf("opening ledger: %w", err)
	}
	pub := events.NewPublisher(appCfg.Events.AMQPURL, appCfg.Events.Exchange, appLog)

	l, err := ledger.Open(ctx, s, ledger.WithPublisher(pub), ledger.WithLogger(appLog))
	if err != nil {
		_ = pub.Close()
		_ = s.Close()
		return nil, nil, err
	}

	if flagDemo || (l.Empty() && !config.Exists()) {
		if err := l.Seed(ctx); err != nil {
			_ = pub.Close()
			_ = s.Close()
			return nil, nil, fmt.Errorf("seeding demo data: %w", err)
		}
		appLog.Debug().Msg("seeded ledger with demo data")
	}

	closeFn := func() {
		if err := pub.Close(); err != nil {
			appLog.Warn().Err(err).Msg("closing event publisher")
		}
		if err := s.Close(); err != nil {
			appLog.Warn().Err(err).Msg("closing store")
		}
	}
	return l, closeFn, nil
}

// budgetsOf returns the dataset's budgets, recomputing spend from
// transactions when derive_spent is configured.
func budgetsOf(ds model.Dataset) []model.Budget {
	if appCfg.Budget.DeriveSpent {
		return pipeline.DeriveBudgetSpent(ds.Budgets, ds.Transactions)
	}
	return ds.Budgets
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
