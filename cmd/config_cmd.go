package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/rupee/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting, e.g. `rupee config set currency.code USD`",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Trend months:   %d\n", cfg.General.TrendMonths)
	fmt.Printf("    Recent count:   %d\n", cfg.General.RecentCount)
	if cfg.General.ImportWorkers > 0 {
		fmt.Printf("    Import workers: %d\n", cfg.General.ImportWorkers)
	}
	fmt.Println()

	fmt.Println("  [Currency]")
	fmt.Printf("    Locale: %s\n", cfg.Currency.Locale)
	fmt.Printf("    Code:   %s\n", cfg.Currency.Code)
	if cfg.Currency.Symbol != "" {
		fmt.Printf("    Symbol: %s\n", cfg.Currency.Symbol)
	}
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Backend: %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		fmt.Printf("    Path:    %s\n", cfg.LedgerPath())
	case config.BackendPostgres:
		fmt.Printf("    DSN:     %s\n", maskDSN(cfg.Storage.DSN))
	}
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    Derive spent: %v\n", cfg.Budget.DeriveSpent)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Events]")
	if cfg.Events.AMQPURL != "" {
		fmt.Printf("    AMQP:     %s\n", maskDSN(cfg.Events.AMQPURL))
		fmt.Printf("    Exchange: %s\n", cfg.Events.Exchange)
	} else {
		fmt.Println("    AMQP: not configured")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	if len(cfg.Converter.Rates) > 0 {
		fmt.Println("  [Converter]")
		pairs := make([]string, 0, len(cfg.Converter.Rates))
		for k := range cfg.Converter.Rates {
			pairs = append(pairs, k)
		}
		sort.Strings(pairs)
		for _, k := range pairs {
			fmt.Printf("    %s = %g\n", k, cfg.Converter.Rates[k])
		}
		fmt.Println()
	}

	fmt.Println("  Run `rupee setup` to reconfigure.")
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	// Start from the file, not appCfg, so flag overrides are not persisted.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	key, value := strings.ToLower(args[0]), args[1]

	switch key {
	case "general.trend_months", "general.recent_count", "general.import_workers", "server.events_buffer":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s wants a non-negative number", key)
		}
		switch key {
		case "general.trend_months":
			cfg.General.TrendMonths = n
		case "general.recent_count":
			cfg.General.RecentCount = n
		case "general.import_workers":
			cfg.General.ImportWorkers = n
		default:
			cfg.Server.EventsBuffer = n
		}
	case "currency.locale":
		cfg.Currency.Locale = value
	case "currency.code":
		cfg.Currency.Code = strings.ToUpper(value)
	case "currency.symbol":
		cfg.Currency.Symbol = value
	case "storage.backend":
		cfg.Storage.Backend = config.Backend(strings.ToLower(value))
	case "storage.path":
		cfg.Storage.Path = value
	case "storage.dsn":
		cfg.Storage.DSN = value
	case "budget.derive_spent":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s wants true or false", key)
		}
		cfg.Budget.DeriveSpent = b
	case "server.addr":
		cfg.Server.Addr = value
	case "events.amqp_url":
		cfg.Events.AMQPURL = value
	case "events.exchange":
		cfg.Events.Exchange = value
	case "appearance.theme":
		cfg.Appearance.Theme = value
	case "log.level":
		cfg.Log.Level = value
	default:
		if pair, ok := strings.CutPrefix(key, "converter.rates."); ok {
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil || rate <= 0 {
				return fmt.Errorf("%s wants a positive rate", key)
			}
			if cfg.Converter.Rates == nil {
				cfg.Converter.Rates = make(map[string]float64)
			}
			cfg.Converter.Rates[strings.ToUpper(pair)] = rate
			break
		}
		return fmt.Errorf("unknown config key %q", args[0])
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("  %s = %s\n", key, value)
	return nil
}

// maskDSN hides everything between the scheme and the host, e.g. credentials.
func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return "****"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://****@" + rest[at+1:]
	}
	return dsn
}
