package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/rupee/internal/model"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("RUPEE_BACKEND", "")
	t.Setenv("RUPEE_DB_DSN", "")
	t.Setenv("RUPEE_AMQP_URL", "")
	t.Setenv("RUPEE_LOG_LEVEL", "")
	return dir
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	useTempConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Currency.Code != "INR" || cfg.Currency.Locale != "en-IN" {
		t.Errorf("currency = %+v", cfg.Currency)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := useTempConfig(t)
	cfg := DefaultConfig()
	cfg.Appearance.Theme = "tokyo-night"
	cfg.Converter.Rates = map[string]float64{"USD/INR": 84.5}
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dir, "rupee", "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Appearance.Theme != "tokyo-night" || got.Converter.Rates["USD/INR"] != 84.5 {
		t.Errorf("loaded %+v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	useTempConfig(t)
	t.Setenv("RUPEE_BACKEND", "Postgres")
	t.Setenv("RUPEE_DB_DSN", "postgres://localhost/rupee")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != BackendPostgres || cfg.Storage.DSN == "" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "sheets"
	cfg.Currency.Code = "RUPEE"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation errors")
	}

	cfg = DefaultConfig()
	cfg.Storage.Backend = BackendPostgres
	if err := cfg.Validate(); err == nil {
		t.Error("postgres without dsn should fail")
	}
}

func TestSession(t *testing.T) {
	useTempConfig(t)
	if _, ok, err := LoadSession(); ok || err != nil {
		t.Fatalf("fresh session: ok=%v err=%v", ok, err)
	}
	if err := SaveSession(model.User{Name: "Demo User", Email: "demo@example.com"}); err != nil {
		t.Fatal(err)
	}
	u, ok, err := LoadSession()
	if err != nil || !ok || u.Email != "demo@example.com" {
		t.Errorf("loaded %+v ok=%v err=%v", u, ok, err)
	}
	if err := ClearSession(); err != nil {
		t.Fatal(err)
	}
	if err := ClearSession(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}
