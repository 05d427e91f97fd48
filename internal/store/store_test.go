package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/logging"
	"github.com/theirongolddev/rupee/internal/model"
)

func sampleTx(id, desc string, amount int64) model.Transaction {
	return model.Transaction{
		ID:          id,
		Type:        model.Expense,
		Amount:      decimal.NewFromInt(amount),
		Category:    "Food",
		Description: desc,
		Date:        model.NewDate(2025, time.November, 2),
		Emoji:       "🍕",
	}
}

// exerciseStore runs the same contract checks against every backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.PrependTransactions(ctx, sampleTx("a", "first", 10)); err != nil {
		t.Fatal(err)
	}
	if err := s.PrependTransactions(ctx, sampleTx("b", "second", 20), sampleTx("c", "third", 30)); err != nil {
		t.Fatal(err)
	}

	ds, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, tx := range ds.Transactions {
		order = append(order, tx.ID)
	}
	if len(order) != 3 || order[0] != "b" || order[1] != "c" || order[2] != "a" {
		t.Fatalf("order = %v, want [b c a]", order)
	}
	if !ds.Transactions[2].Amount.Equal(decimal.NewFromInt(10)) || ds.Transactions[2].Date.String() != "2025-11-02" {
		t.Errorf("round trip = %+v", ds.Transactions[2])
	}

	edited := sampleTx("a", "edited", 11)
	edited.Recurring = true
	if err := s.UpdateTransaction(ctx, edited); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateTransaction(ctx, sampleTx("zzz", "", 1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTransaction(ctx, "c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: %v", err)
	}

	food := model.Budget{Category: "Food", Limit: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(650), Emoji: "🍕"}
	rent := model.Budget{Category: "Rent", Limit: decimal.NewFromInt(1200), Emoji: "🏠"}
	for _, b := range []model.Budget{food, rent} {
		if err := s.PutBudget(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	food.Spent = decimal.NewFromInt(700)
	if err := s.PutBudget(ctx, food); err != nil {
		t.Fatal(err)
	}

	goal := model.Goal{ID: "g1", Name: "Vacation", Target: decimal.NewFromInt(2000), Current: decimal.NewFromInt(850)}
	if err := s.AppendGoal(ctx, goal); err != nil {
		t.Fatal(err)
	}
	goal.Current = decimal.NewFromInt(900)
	if err := s.UpdateGoal(ctx, goal); err != nil {
		t.Fatal(err)
	}

	if err := s.ReplaceNotifications(ctx, []model.Notification{{ID: "n1", Message: "hi", Kind: model.NotifyInfo}}); err != nil {
		t.Fatal(err)
	}

	ds, err = s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Transactions) != 2 || ds.Transactions[1].Description != "edited" || !ds.Transactions[1].Recurring {
		t.Errorf("transactions = %+v", ds.Transactions)
	}
	if len(ds.Budgets) != 2 || ds.Budgets[0].Category != "Food" || !ds.Budgets[0].Spent.Equal(decimal.NewFromInt(700)) {
		t.Errorf("budgets = %+v", ds.Budgets)
	}
	if len(ds.Goals) != 1 || !ds.Goals[0].Current.Equal(decimal.NewFromInt(900)) || !ds.Goals[0].Deadline.IsZero() {
		t.Errorf("goals = %+v", ds.Goals)
	}
	if len(ds.Notifications) != 1 || ds.Notifications[0].Kind != model.NotifyInfo {
		t.Errorf("notifications = %+v", ds.Notifications)
	}

	if err := s.DeleteBudget(ctx, rent.Key()); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteGoal(ctx, "g1"); err != nil {
		t.Fatal(err)
	}

	if err := s.Replace(ctx, model.Dataset{Transactions: []model.Transaction{sampleTx("x", "only", 1)}}); err != nil {
		t.Fatal(err)
	}
	ds, err = s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Transactions) != 1 || len(ds.Budgets) != 0 || len(ds.Goals) != 0 || len(ds.Notifications) != 0 {
		t.Errorf("after replace = %+v", ds)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PrependTransactions(context.Background(), sampleTx("a", "kept", 5)); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen (migrations must be idempotent): %v", err)
	}
	defer func() { _ = s.Close() }()
	ds, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Transactions) != 1 || ds.Transactions[0].Description != "kept" {
		t.Errorf("reopened = %+v", ds.Transactions)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping integration test")
	}
	s, err := OpenPostgres(context.Background(), PostgresConfig{DSN: dsn}, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Replace(context.Background(), model.Dataset{}); err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = "sheets"
	if _, err := New(context.Background(), cfg, logging.Nop()); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewMemory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.BackendMemory
	s, err := New(context.Background(), cfg, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("got %T, want *Memory", s)
	}
}
