package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/events"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/store"
)

var fixedNow = time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (*Ledger, *store.Memory, *events.Recorder) {
	t.Helper()
	mem := store.NewMemory()
	rec := &events.Recorder{}
	l, err := Open(context.Background(), mem, WithPublisher(rec), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}
	return l, mem, rec
}

func expense(category string, amount int64) model.Transaction {
	return model.Transaction{Type: model.Expense, Category: category, Amount: decimal.NewFromInt(amount)}
}

func TestAddTransactionPrependsAndFillsDefaults(t *testing.T) {
	l, mem, rec := newLedger(t)
	ctx := context.Background()

	first, err := l.AddTransaction(ctx, expense("Food", 25))
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.AddTransaction(ctx, expense("Unknown", 10))
	if err != nil {
		t.Fatal(err)
	}

	if first.ID == "" || first.ID == second.ID {
		t.Errorf("ids should be fresh and unique: %q %q", first.ID, second.ID)
	}
	if first.Emoji != "🍕" || second.Emoji != model.FallbackEmoji {
		t.Errorf("emoji = %q / %q", first.Emoji, second.Emoji)
	}
	if first.Date.String() != "2025-11-15" {
		t.Errorf("date = %s, want today", first.Date)
	}

	txs := l.Transactions()
	if len(txs) != 2 || txs[0].ID != second.ID {
		t.Fatalf("newest should be first: %+v", txs)
	}

	stored, _ := mem.Load(ctx)
	if len(stored.Transactions) != 2 || stored.Transactions[0].ID != second.ID {
		t.Errorf("store order = %+v", stored.Transactions)
	}
	if got := rec.Events(); len(got) != 2 || got[0].RoutingKey() != "ledger.transaction.created" {
		t.Errorf("events = %+v", got)
	}
}

func TestAddTransactionRejectsInvalid(t *testing.T) {
	l, _, _ := newLedger(t)
	_, err := l.AddTransaction(context.Background(), model.Transaction{Type: "transfer", Category: "Food"})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	neg := expense("Food", -5)
	if _, err := l.AddTransaction(context.Background(), neg); !errors.Is(err, ErrInvalid) {
		t.Errorf("negative amount: %v", err)
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()
	tx, _ := l.AddTransaction(ctx, expense("Food", 25))
	_, _ = l.AddTransaction(ctx, expense("Rent", 1200))

	tx.Description = "Pizza Hut"
	tx.Amount = decimal.NewFromInt(30)
	if _, err := l.UpdateTransaction(ctx, tx); err != nil {
		t.Fatal(err)
	}
	got, err := l.Transaction(tx.ID)
	if err != nil || got.Description != "Pizza Hut" {
		t.Errorf("after update = %+v, %v", got, err)
	}
	if txs := l.Transactions(); txs[1].ID != tx.ID {
		t.Error("update must keep position")
	}

	if err := l.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Transaction(tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted lookup = %v", err)
	}
	if err := l.DeleteTransaction(ctx, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete = %v", err)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	l, _, _ := newLedger(t)
	_, _ = l.AddTransaction(context.Background(), expense("Food", 25))

	snap := l.Snapshot()
	snap.Transactions[0].Category = "Changed"
	if l.Transactions()[0].Category != "Food" {
		t.Error("snapshot aliases ledger state")
	}
}

func TestBudgets(t *testing.T) {
	l, _, rec := newLedger(t)
	ctx := context.Background()

	b, err := l.SetBudget(ctx, model.Budget{Category: "Food", Limit: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(650)})
	if err != nil {
		t.Fatal(err)
	}
	if b.Emoji != "🍕" {
		t.Errorf("emoji = %q", b.Emoji)
	}
	b.Spent = decimal.NewFromInt(900)
	if _, err := l.SetBudget(ctx, b); err != nil {
		t.Fatal(err)
	}
	snap := l.Snapshot()
	if len(snap.Budgets) != 1 || !snap.Budgets[0].Spent.Equal(decimal.NewFromInt(900)) {
		t.Errorf("budgets = %+v", snap.Budgets)
	}

	if _, err := l.SetBudget(ctx, model.Budget{Category: "Rent"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("zero limit: %v", err)
	}

	if err := l.DeleteBudget(ctx, "FOOD"); err != nil {
		t.Fatal(err)
	}
	if err := l.DeleteBudget(ctx, "food"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete = %v", err)
	}

	evs := rec.Events()
	if evs[0].Action != events.Created || evs[1].Action != events.Updated || evs[2].Action != events.Deleted {
		t.Errorf("actions = %v %v %v", evs[0].Action, evs[1].Action, evs[2].Action)
	}
}

func TestGoals(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()

	a, err := l.AddGoal(ctx, model.Goal{Name: "Emergency Fund", Target: decimal.NewFromInt(5000), Current: decimal.NewFromInt(3240)})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := l.AddGoal(ctx, model.Goal{Name: "Vacation", Target: decimal.NewFromInt(2000)})
	if a.Emoji != model.DefaultGoalEmoji {
		t.Errorf("emoji = %q", a.Emoji)
	}
	if goals := l.Snapshot().Goals; goals[0].ID != a.ID || goals[1].ID != b.ID {
		t.Error("goals should be appended")
	}

	got, err := l.Contribute(ctx, a.ID, decimal.NewFromInt(1760))
	if err != nil {
		t.Fatal(err)
	}
	if !pipeline.GoalProgress(got).Achieved {
		t.Errorf("goal should be achieved at %s", got.Current)
	}
	if _, err := l.Contribute(ctx, a.ID, decimal.Zero); !errors.Is(err, ErrInvalid) {
		t.Errorf("zero contribution: %v", err)
	}
	if _, err := l.Contribute(ctx, "missing", decimal.NewFromInt(1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing goal: %v", err)
	}

	if err := l.DeleteGoal(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if len(l.Snapshot().Goals) != 1 {
		t.Error("goal not deleted")
	}
}

// slowGoalStore delays goal writes the way a database round-trip would.
type slowGoalStore struct {
	*store.Memory
}

func (s slowGoalStore) UpdateGoal(ctx context.Context, g model.Goal) error {
	time.Sleep(2 * time.Millisecond)
	return s.Memory.UpdateGoal(ctx, g)
}

func TestContributeConcurrent(t *testing.T) {
	mem := store.NewMemory()
	l, err := Open(context.Background(), slowGoalStore{mem})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	g, err := l.AddGoal(ctx, model.Goal{Name: "Laptop", Target: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatal(err)
	}

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Contribute(ctx, g.ID, decimal.NewFromInt(1)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, err := l.Goal(g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Current.Equal(decimal.NewFromInt(n)) {
		t.Errorf("current = %s after %d contributions of 1", got.Current, n)
	}
	ds, err := mem.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ds.Goals[0].Current.Equal(decimal.NewFromInt(n)) {
		t.Errorf("stored current = %s, want %d", ds.Goals[0].Current, n)
	}
}

func TestNotificationsRefreshWarningText(t *testing.T) {
	l, mem, _ := newLedger(t)
	ctx := context.Background()

	b := model.Budget{Category: "Transport", Limit: decimal.NewFromInt(100), Spent: decimal.NewFromInt(85)}
	if _, err := l.SetBudget(ctx, b); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Notifications(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.MarkNotificationsRead(ctx); err != nil {
		t.Fatal(err)
	}

	b.Spent = decimal.NewFromInt(92)
	if _, err := l.SetBudget(ctx, b); err != nil {
		t.Fatal(err)
	}
	ns, err := l.Notifications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ns) != 1 || ns[0].Message != "Transport budget at 92%" || !ns[0].Read {
		t.Fatalf("notifications = %+v", ns)
	}
	ds, err := mem.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Notifications) != 1 || ds.Notifications[0].Message != "Transport budget at 92%" {
		t.Errorf("stored notifications = %+v", ds.Notifications)
	}
}

func TestNotificationsMergeDerivedAlerts(t *testing.T) {
	l, mem, _ := newLedger(t)
	ctx := context.Background()
	if err := l.Replace(ctx, DemoData(fixedNow)); err != nil {
		t.Fatal(err)
	}

	ns, err := l.Notifications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Rent and Transport alerts are already stored; Shopping at 80% is new.
	if len(ns) != 4 || ns[3].ID != "budget:shopping:warning" {
		t.Fatalf("got %d notifications: %+v", len(ns), ns)
	}
	if pipeline.Unread(ns) != 3 {
		t.Errorf("unread = %d, want 3", pipeline.Unread(ns))
	}

	if _, err := l.SetBudget(ctx, model.Budget{Category: "Shopping", Limit: decimal.NewFromInt(400), Spent: decimal.NewFromInt(450)}); err != nil {
		t.Fatal(err)
	}
	ns, _ = l.Notifications(ctx)
	if len(ns) != 5 || ns[4].Message != "Shopping budget exceeded!" {
		t.Errorf("after overspend = %+v", ns)
	}

	if err := l.MarkNotificationsRead(ctx); err != nil {
		t.Fatal(err)
	}
	stored, _ := mem.Load(ctx)
	if pipeline.Unread(stored.Notifications) != 0 {
		t.Error("read flags not persisted")
	}
}

func TestImportTransactionsKeepsBatchOrder(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()
	_, _ = l.AddTransaction(ctx, expense("Food", 1))

	n, err := l.ImportTransactions(ctx, []model.Transaction{expense("Rent", 2), expense("Bills", 3)})
	if err != nil || n != 2 {
		t.Fatalf("import = %d, %v", n, err)
	}
	txs := l.Transactions()
	if txs[0].Category != "Rent" || txs[1].Category != "Bills" || txs[2].Category != "Food" {
		t.Errorf("order = %s %s %s", txs[0].Category, txs[1].Category, txs[2].Category)
	}
}

func TestSubscribe(t *testing.T) {
	l, _, _ := newLedger(t)
	var got []events.Event
	l.Subscribe(func(e events.Event) { got = append(got, e) })
	_, _ = l.AddTransaction(context.Background(), expense("Food", 1))
	if len(got) != 1 || got[0].Kind != events.KindTransaction {
		t.Errorf("listener saw %+v", got)
	}
}

func TestDemoDataShiftsToCurrentMonth(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	ds := DemoData(now)
	if len(ds.Transactions) != 21 || len(ds.Budgets) != 5 || len(ds.Goals) != 3 {
		t.Fatalf("demo sizes: %d tx, %d budgets, %d goals", len(ds.Transactions), len(ds.Budgets), len(ds.Goals))
	}
	if got := ds.Transactions[0].Date.String(); got != "2026-03-02" {
		t.Errorf("first date = %s, want 2026-03-02", got)
	}
	// 2025-10-31 shifted four months lands on the last day of February.
	if got := ds.Transactions[2].Date.String(); got != "2026-02-28" {
		t.Errorf("clamped date = %s, want 2026-02-28", got)
	}

	totals := pipeline.Totals(ds.Transactions[:9])
	if !totals.Income.Equal(decimal.NewFromInt(4200)) || !totals.Expense.Equal(decimal.RequireFromString("1535.5")) {
		t.Errorf("demo totals = %+v", totals)
	}
}

func TestSeedReplacesRecords(t *testing.T) {
	l, mem, rec := newLedger(t)
	ctx := context.Background()
	_, _ = l.AddTransaction(ctx, expense("Food", 1))

	if err := l.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	if l.Empty() {
		t.Fatal("ledger empty after seed")
	}
	stored, _ := mem.Load(ctx)
	if len(stored.Transactions) != 21 || stored.Transactions[0].ID != "1" {
		t.Errorf("stored %d transactions, first %q", len(stored.Transactions), stored.Transactions[0].ID)
	}
	evs := rec.Events()
	if last := evs[len(evs)-1]; last.Action != events.Replaced {
		t.Errorf("last action = %s", last.Action)
	}
}
