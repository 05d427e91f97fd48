package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/rupee/internal/auth"
	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/logging"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/store"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC)

// newTestApp returns a loaded, signed-in dashboard over the demo ledger.
func newTestApp(t *testing.T, signedIn bool) (App, *ledger.Ledger) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Cleanup(func() { theme.SetActive("flexoki-dark") })

	if signedIn {
		if err := config.SaveSession(model.User{Name: "Asha", Email: "asha@example.com"}); err != nil {
			t.Fatal(err)
		}
	}

	l, err := ledger.Open(context.Background(), store.NewMemory(),
		ledger.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Seed(context.Background()); err != nil {
		t.Fatal(err)
	}

	app := NewApp(Options{
		Ledger: l,
		Config: config.DefaultConfig(),
		Logger: logging.Nop(),
		Now:    func() time.Time { return testNow },
	})
	app = update(t, app, tea.WindowSizeMsg{Width: 140, Height: 50})
	app = update(t, app, app.loadDataCmd()())
	return app, l
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		a = update(t, a, msg)
	}
	return a
}

func TestDataLoadedRecomputes(t *testing.T) {
	app, l := newTestApp(t, true)

	if !app.loaded {
		t.Fatal("app not loaded")
	}
	if app.modal != nil {
		t.Fatal("signed-in user should not see the login form")
	}
	if !app.totals.Income.Equal(decimal.NewFromInt(14200)) {
		t.Errorf("income = %s, want 14200", app.totals.Income)
	}
	if got, want := len(app.budgets), len(l.Snapshot().Budgets); got != want {
		t.Errorf("budgets = %d, want %d", got, want)
	}
	if app.unread != 3 {
		t.Errorf("unread = %d, want 3", app.unread)
	}
	if len(app.monthly) != 5 || app.monthly[4].Month != "Nov" {
		t.Errorf("monthly series = %+v", app.monthly)
	}
}

func TestTabKeys(t *testing.T) {
	app, _ := newTestApp(t, true)

	cases := []struct {
		key  string
		want int
	}{
		{"t", tabTransactions},
		{"b", tabBudgets},
		{"g", tabGoals},
		{"y", tabAnalytics},
		{"c", tabConverter},
		{"d", tabDashboard},
		{"s", tabSettings},
	}
	for _, tc := range cases {
		app = press(t, app, tc.key)
		if app.activeTab != tc.want {
			t.Errorf("after %q active tab = %d, want %d", tc.key, app.activeTab, tc.want)
		}
	}
}

func TestTransactionsFilterAndSearch(t *testing.T) {
	app, _ := newTestApp(t, true)
	app = press(t, app, "t", "f")

	if app.txState.filter != model.FilterIncome {
		t.Fatalf("filter = %q, want income", app.txState.filter)
	}
	income := app.visibleTransactions()
	if len(income) != 6 {
		t.Errorf("income rows = %d, want 6", len(income))
	}
	for _, tx := range income {
		if tx.Type != model.Income {
			t.Fatalf("filtered list contains %s", tx.Type)
		}
	}

	app = press(t, app, "f", "f") // back to all
	app = press(t, app, "/", "p", "i", "z", "z", "a", "enter")
	if app.txState.searching {
		t.Fatal("enter should leave search mode")
	}
	got := app.visibleTransactions()
	if app.txState.searchQuery != "pizza" || len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("search %q -> %+v", app.txState.searchQuery, got)
	}

	app = press(t, app, "esc")
	if app.txState.searchQuery != "" {
		t.Error("esc should clear the search")
	}
}

func TestConverterKeys(t *testing.T) {
	app, _ := newTestApp(t, true)
	app = press(t, app, "c")

	q := app.convState.quote()
	if q.From != "USD" || q.To != "INR" || !q.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("initial quote = %+v", q)
	}

	app = press(t, app, "esc", "2", "5")
	if q := app.convState.quote(); !q.Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("amount = %s, want 25", q.Amount)
	}

	app = press(t, app, "s")
	if app.activeTab != tabConverter {
		t.Fatal("s should swap inside the converter, not switch tabs")
	}
	if q := app.convState.quote(); q.From != "INR" || q.To != "USD" {
		t.Errorf("swapped quote = %+v", q)
	}

	before := app.convState.pair
	app = press(t, app, "p")
	if app.convState.pair == before {
		t.Error("p should move to the next pair")
	}
}

func TestMarkAlertsRead(t *testing.T) {
	app, l := newTestApp(t, true)

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if cmd == nil {
		t.Fatal("m with unread alerts should run an action")
	}
	done, ok := cmd().(actionDoneMsg)
	if !ok || done.err != nil {
		t.Fatalf("action result = %+v", done)
	}

	// The ledger listener queues a reload.
	if _, ok := waitForChange(app.changes)().(ledgerChangedMsg); !ok {
		t.Fatal("expected a ledger change")
	}
	app = update(t, m.(App), m.(App).loadDataCmd()())
	if app.unread != 0 {
		t.Errorf("unread = %d after marking read", app.unread)
	}
	ns, err := l.Notifications(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if pipeline.Unread(ns) != 0 {
		t.Error("ledger still has unread notifications")
	}
}

func TestLoginShownWithoutSession(t *testing.T) {
	app, _ := newTestApp(t, false)
	if app.modal == nil || !app.needLogin {
		t.Fatal("login form should open when no session exists")
	}
	if app.modal.cancelable {
		t.Error("login form must not be dismissable with esc")
	}

	app = press(t, app, "esc")
	if app.modal == nil {
		t.Error("esc closed the login form")
	}
}

func TestLoginValues(t *testing.T) {
	v := &loginValues{mode: loginModeSignUp, name: "Asha", email: "asha@example.com", password: "pw", confirm: "pw"}
	u, err := v.submit()
	if err != nil || u.Name != "Asha" {
		t.Fatalf("signup = %+v, %v", u, err)
	}

	v.confirm = "other"
	if _, err := v.submit(); !errors.Is(err, auth.ErrPasswordMismatch) {
		t.Errorf("mismatch err = %v", err)
	}

	v = &loginValues{mode: loginModeSignIn, email: "asha@example.com", password: "pw"}
	if u, err := v.submit(); err != nil || u.Name != auth.DemoName {
		t.Errorf("login = %+v, %v", u, err)
	}
}

func TestFormValues(t *testing.T) {
	tx, err := (&txValues{typ: "expense", amount: "25.50", category: "Food", description: " Pizza ", date: "2025-11-02"}).transaction("abc")
	if err != nil {
		t.Fatal(err)
	}
	if tx.ID != "abc" || tx.Description != "Pizza" || !tx.Amount.Equal(decimal.RequireFromString("25.5")) {
		t.Errorf("transaction = %+v", tx)
	}
	if _, err := (&txValues{typ: "expense", amount: "-1", date: "2025-11-02"}).transaction(""); err == nil {
		t.Error("negative amount accepted")
	}
	if _, err := (&txValues{typ: "transfer", amount: "1", date: "2025-11-02"}).transaction(""); !errors.Is(err, model.ErrInvalidType) {
		t.Errorf("bad type err = %v", err)
	}

	b, err := (&budgetValues{category: "Food", limit: "1000", month: "2025-11"}).budget()
	if err != nil {
		t.Fatal(err)
	}
	if b.Year != 2025 || b.Month != 11 || !b.Spent.IsZero() || b.Emoji != "🍕" {
		t.Errorf("budget = %+v", b)
	}
	if _, err := (&budgetValues{category: "Food", limit: "1000", month: "Nov"}).budget(); err == nil {
		t.Error("malformed month accepted")
	}

	g, err := (&goalValues{name: "Trip", target: "5000", deadline: "2026-06-30"}).goal()
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "Trip" || g.Deadline.String() != "2026-06-30" || !g.Current.IsZero() {
		t.Errorf("goal = %+v", g)
	}
}

func TestLedgerChangeTriggersReload(t *testing.T) {
	app, l := newTestApp(t, true)

	if _, err := l.AddTransaction(context.Background(), model.Transaction{
		Type:     model.Expense,
		Amount:   decimal.NewFromInt(100),
		Category: "Food",
		Date:     model.DateOf(testNow),
	}); err != nil {
		t.Fatal(err)
	}
	msg := waitForChange(app.changes)()
	if _, ok := msg.(ledgerChangedMsg); !ok {
		t.Fatalf("got %T", msg)
	}
	_, cmd := app.Update(msg)
	if cmd == nil {
		t.Fatal("a ledger change should schedule a reload")
	}

	app = update(t, app, app.loadDataCmd()())
	if got := len(app.data.Transactions); got != 22 {
		t.Errorf("transactions = %d, want 22", got)
	}
}

func TestSettingsCycleSavesConfig(t *testing.T) {
	app, _ := newTestApp(t, true)
	app = press(t, app, "s", "enter")

	want := theme.Next("flexoki-dark").Name
	if theme.Active.Name != want || app.cfg.Appearance.Theme != want {
		t.Errorf("theme = %q/%q, want %q", theme.Active.Name, app.cfg.Appearance.Theme, want)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Appearance.Theme != want {
		t.Errorf("saved theme = %q, want %q", cfg.Appearance.Theme, want)
	}

	app = press(t, app, "j", "j", "j", "j", "j", "enter")
	if !app.cfg.Budget.DeriveSpent {
		t.Error("derive spent should toggle on")
	}
}

func TestEveryTabRenders(t *testing.T) {
	app, _ := newTestApp(t, true)

	titles := map[int]string{
		tabDashboard:    "Expenses by Category",
		tabTransactions: "Transactions (21 of 21)",
		tabBudgets:      "Budgets",
		tabGoals:        "Savings Goals",
		tabAnalytics:    "Category Trends",
		tabConverter:    "Currency Converter",
		tabSettings:     "Settings",
	}
	for tab, title := range titles {
		app.activeTab = tab
		out := app.View()
		if !strings.Contains(out, title) {
			t.Errorf("tab %d view lacks %q", tab, title)
		}
	}

	app.width = 60
	if !strings.Contains(app.View(), "Terminal too narrow") {
		t.Error("narrow terminal should show a warning")
	}
}
