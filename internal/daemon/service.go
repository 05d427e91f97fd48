// Package daemon serves the ledger over HTTP and streams dashboard changes
// to subscribers.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/rupee/internal/currency"
	"github.com/theirongolddev/rupee/internal/events"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	// Mode is the gin mode: debug, release or test.
	Mode        string
	TrendMonths int
	DeriveSpent bool
	Converter   *currency.Converter
	Logger      zerolog.Logger
}

// Snapshot is the compact dashboard state carried by status and event payloads.
type Snapshot struct {
	At           time.Time       `json:"at"`
	Transactions int             `json:"transactions"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Balance      decimal.Decimal `json:"balance"`
	SavingsRate  float64         `json:"savings_rate"`
	Budgets      int             `json:"budgets"`
	Goals        int             `json:"goals"`
	Alerts       int             `json:"alerts"`
	Unread       int             `json:"unread"`
}

// Delta captures the change between two snapshots.
type Delta struct {
	Transactions int             `json:"transactions"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Balance      decimal.Decimal `json:"balance"`
	Budgets      int             `json:"budgets"`
	Goals        int             `json:"goals"`
	Alerts       int             `json:"alerts"`
}

func (d Delta) isZero() bool {
	return d.Transactions == 0 &&
		d.Income.IsZero() &&
		d.Expense.IsZero() &&
		d.Balance.IsZero() &&
		d.Budgets == 0 &&
		d.Goals == 0 &&
		d.Alerts == 0
}

// Event is emitted whenever a ledger change alters the dashboard.
type Event struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Change    *events.Event `json:"change,omitempty"`
	Snapshot  Snapshot      `json:"snapshot"`
	Delta     Delta         `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastChangeAt    time.Time `json:"last_change_at,omitzero"`
	ChangeCount     int64     `json:"change_count"`
	Summary         Snapshot  `json:"summary"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the HTTP API and the change stream.
type Service struct {
	cfg    Config
	ledger *ledger.Ledger
	log    zerolog.Logger
	now    func() time.Time

	// changeMu serializes onChange so snapshots are stored and events are
	// numbered in the order the ledger state advanced.
	changeMu sync.Mutex

	mu           sync.RWMutex
	startedAt    time.Time
	lastChangeAt time.Time
	changeCount  int64
	snapshot     Snapshot
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service bound to l. The service subscribes to l so every
// committed change updates the snapshot.
func New(cfg Config, l *ledger.Ledger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.TrendMonths < 1 {
		cfg.TrendMonths = 5
	}
	if cfg.Converter == nil {
		cfg.Converter, _ = currency.NewConverter(nil)
	}

	s := &Service{
		cfg:       cfg,
		ledger:    l,
		log:       cfg.Logger,
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	if l != nil {
		s.snapshot = s.takeSnapshot()
		l.Subscribe(s.onChange)
	}
	return s
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("serving ledger API")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeSubscribers()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Handler returns the gin engine with every route registered.
func (s *Service) Handler() http.Handler {
	if s.cfg.Mode != "" {
		gin.SetMode(s.cfg.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	s.routes(r)
	return r
}

func (s *Service) onChange(change events.Event) {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	now := s.now()
	snap := s.takeSnapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshot
	s.snapshot = snap
	s.lastChangeAt = now
	s.changeCount++

	delta := diffSnapshots(prev, snap)
	if delta.isZero() {
		return
	}
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      "ledger_delta",
		Timestamp: now,
		Change:    &change,
		Snapshot:  snap,
		Delta:     delta,
	}
	s.publishEventLocked(ev)
}

func (s *Service) takeSnapshot() Snapshot {
	ds := s.ledger.Snapshot()
	budgets := s.budgets(ds)
	totals := pipeline.Totals(ds.Transactions)
	return Snapshot{
		At:           s.now(),
		Transactions: len(ds.Transactions),
		Income:       totals.Income,
		Expense:      totals.Expense,
		Balance:      totals.Balance,
		SavingsRate:  totals.SavingsRate,
		Budgets:      len(budgets),
		Goals:        len(ds.Goals),
		Alerts:       len(pipeline.BudgetAlerts(budgets)),
		Unread:       pipeline.Unread(ds.Notifications),
	}
}

// budgets returns the dataset's budgets, derived from transactions when configured.
func (s *Service) budgets(ds model.Dataset) []model.Budget {
	if s.cfg.DeriveSpent {
		return pipeline.DeriveBudgetSpent(ds.Budgets, ds.Transactions)
	}
	return ds.Budgets
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Transactions: curr.Transactions - prev.Transactions,
		Income:       curr.Income.Sub(prev.Income),
		Expense:      curr.Expense.Sub(prev.Expense),
		Balance:      curr.Balance.Sub(prev.Balance),
		Budgets:      curr.Budgets - prev.Budgets,
		Goals:        curr.Goals - prev.Goals,
		Alerts:       curr.Alerts - prev.Alerts,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishEventLocked(ev)
}

// publishEventLocked appends to the ring buffer and fans out. The caller
// holds s.mu.
func (s *Service) publishEventLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastChangeAt:    s.lastChangeAt,
		ChangeCount:     s.changeCount,
		Summary:         s.snapshot,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) recentEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Service) handleStream(c *gin.Context) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	w.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, ev)
			w.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// closeSubscribers ends every open stream so Shutdown does not wait on them.
func (s *Service) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}
