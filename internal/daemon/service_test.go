package daemon

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/logging"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/store"
)

var testNow = time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, seed bool) (*Service, *ledger.Ledger) {
	t.Helper()
	l, err := ledger.Open(context.Background(), store.NewMemory(),
		ledger.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatal(err)
	}
	if seed {
		if err := l.Seed(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	s := New(Config{Mode: "test", EventsBuffer: 10, Logger: logging.Nop()}, l)
	s.now = func() time.Time { return testNow }
	return s, l
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Transactions: 10,
		Income:       decimal.NewFromInt(4200),
		Expense:      decimal.RequireFromString("1535.5"),
		Balance:      decimal.RequireFromString("2664.5"),
		Budgets:      5,
		Goals:        3,
		Alerts:       2,
	}
	curr := prev
	curr.Transactions = 11
	curr.Expense = decimal.RequireFromString("1560.5")
	curr.Balance = decimal.RequireFromString("2639.5")
	curr.Alerts = 3

	delta := diffSnapshots(prev, curr)
	if delta.Transactions != 1 {
		t.Fatalf("Transactions delta = %d, want 1", delta.Transactions)
	}
	if !delta.Expense.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("Expense delta = %s, want 25", delta.Expense)
	}
	if !delta.Balance.Equal(decimal.NewFromInt(-25)) {
		t.Fatalf("Balance delta = %s, want -25", delta.Balance)
	}
	if !delta.Income.IsZero() {
		t.Fatalf("Income delta = %s, want 0", delta.Income)
	}
	if delta.Alerts != 1 {
		t.Fatalf("Alerts delta = %d, want 1", delta.Alerts)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should diff to zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestLedgerChangeEmitsDelta(t *testing.T) {
	s, l := newTestService(t, false)

	_, err := l.AddTransaction(context.Background(), model.Transaction{
		Type: model.Expense, Category: "Food", Amount: decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatal(err)
	}

	evs := s.recentEvents()
	if len(evs) != 1 {
		t.Fatalf("events = %d, want 1", len(evs))
	}
	ev := evs[0]
	if ev.Type != "ledger_delta" || ev.ID != 1 {
		t.Errorf("event = %s #%d", ev.Type, ev.ID)
	}
	if ev.Delta.Transactions != 1 || !ev.Delta.Expense.Equal(decimal.NewFromInt(25)) {
		t.Errorf("delta = %+v", ev.Delta)
	}
	if ev.Change == nil || ev.Change.RoutingKey() != "ledger.transaction.created" {
		t.Errorf("change = %+v", ev.Change)
	}

	st := s.snapshotStatus()
	if st.ChangeCount != 1 || st.Summary.Transactions != 1 {
		t.Errorf("status = %+v", st)
	}
}

func TestNoOpChangeIsNotBuffered(t *testing.T) {
	s, l := newTestService(t, true)

	// Marking read changes no dashboard figure tracked by the delta.
	if err := l.MarkNotificationsRead(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(s.recentEvents()); n != 0 {
		t.Errorf("events = %d, want 0", n)
	}
	if s.snapshotStatus().Summary.Unread != 0 {
		t.Error("snapshot should still refresh unread count")
	}
}

func TestStreamSendsSnapshotFirst(t *testing.T) {
	s, _ := newTestService(t, true)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content type = %q", ct)
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if line != "event: snapshot\n" {
		t.Errorf("first line = %q", line)
	}
}

func TestConcurrentChangesKeepEventOrder(t *testing.T) {
	l, err := ledger.Open(context.Background(), store.NewMemory(),
		ledger.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{Mode: "test", EventsBuffer: 100, Logger: logging.Nop()}, l)
	s.now = func() time.Time { return testNow }

	const n = 40
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.AddTransaction(context.Background(), model.Transaction{
				Type: model.Expense, Category: "Food", Amount: decimal.NewFromInt(10),
				Date: model.DateOf(testNow),
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := s.snapshotStatus().Summary.Transactions; got != n {
		t.Fatalf("snapshot transactions = %d, want %d", got, n)
	}

	evs := s.recentEvents()
	total := 0
	for i, ev := range evs {
		total += ev.Delta.Transactions
		if i == 0 {
			continue
		}
		if ev.ID <= evs[i-1].ID {
			t.Errorf("event %d id %d after %d", i, ev.ID, evs[i-1].ID)
		}
		if ev.Snapshot.Transactions <= evs[i-1].Snapshot.Transactions {
			t.Errorf("event %d snapshot went from %d to %d transactions",
				i, evs[i-1].Snapshot.Transactions, ev.Snapshot.Transactions)
		}
	}
	if total != n {
		t.Errorf("deltas add up to %d transactions, want %d", total, n)
	}
}
