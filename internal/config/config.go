// Package config loads and saves rupee settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all rupee configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Currency   CurrencyConfig   `toml:"currency"`
	Storage    StorageConfig    `toml:"storage"`
	Budget     BudgetConfig     `toml:"budget"`
	Server     ServerConfig     `toml:"server"`
	Events     EventsConfig     `toml:"events"`
	Appearance AppearanceConfig `toml:"appearance"`
	Converter  ConverterConfig  `toml:"converter"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	TrendMonths   int `toml:"trend_months"`
	RecentCount   int `toml:"recent_count"`
	ImportWorkers int `toml:"import_workers,omitempty"`
}

// CurrencyConfig controls how amounts are displayed.
type CurrencyConfig struct {
	Locale string `toml:"locale"`
	Code   string `toml:"code"`
	Symbol string `toml:"symbol,omitempty"`
}

// Backend names a store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// IsValid reports whether b names a known backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendMemory, BackendSQLite, BackendPostgres:
		return true
	}
	return false
}

// StorageConfig selects where the ledger lives.
type StorageConfig struct {
	Backend Backend `toml:"backend"`
	Path    string  `toml:"path,omitempty"` // sqlite file
	DSN     string  `toml:"dsn,omitempty"`  // postgres connection string
}

// BudgetConfig holds budget tracking settings.
type BudgetConfig struct {
	// DeriveSpent recomputes budget spend from expense transactions instead of
	// using the tracked value.
	DeriveSpent bool `toml:"derive_spent"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
	Mode         string `toml:"mode,omitempty"` // gin mode: debug, release, test
}

// EventsConfig enables publishing ledger changes to RabbitMQ.
type EventsConfig struct {
	AMQPURL  string `toml:"amqp_url,omitempty"`
	Exchange string `toml:"exchange"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ConverterConfig overrides built-in exchange rates, keyed "FROM/TO".
type ConverterConfig struct {
	Rates map[string]float64 `toml:"rates,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			TrendMonths: 5,
			RecentCount: 5,
		},
		Currency: CurrencyConfig{
			Locale: "en-IN",
			Code:   "INR",
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
			Mode:         "release",
		},
		Events: EventsConfig{
			Exchange: "rupee",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rupee")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rupee")
}

// DataDir returns the XDG-compliant data directory holding the sqlite ledger.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "rupee")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "rupee")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LedgerPath returns the sqlite path, defaulting into DataDir.
func (c Config) LedgerPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(DataDir(), "ledger.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// ApplyEnv overlays RUPEE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("RUPEE_BACKEND"); v != "" {
		cfg.Storage.Backend = Backend(strings.ToLower(v))
	}
	if v := os.Getenv("RUPEE_DB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("RUPEE_AMQP_URL"); v != "" {
		cfg.Events.AMQPURL = v
	}
	if v := os.Getenv("RUPEE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks settings that would otherwise fail deep inside a command.
func (c Config) Validate() error {
	var errs []error
	if !c.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("storage.backend %q: want memory, sqlite or postgres", c.Storage.Backend))
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.DSN == "" {
		errs = append(errs, errors.New("storage.dsn is required for the postgres backend"))
	}
	if len(c.Currency.Code) != 3 {
		errs = append(errs, fmt.Errorf("currency.code %q: want a 3-letter ISO code", c.Currency.Code))
	}
	if c.Server.EventsBuffer < 0 {
		errs = append(errs, errors.New("server.events_buffer must not be negative"))
	}
	return errors.Join(errs...)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
