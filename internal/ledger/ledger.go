// Package ledger owns the transaction, budget and goal containers of one user.
// Every mutation writes through to a store and is then announced to an
// events.Publisher; readers take deep-copied snapshots and feed them to the
// pipeline functions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/events"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/store"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid record")
)

// Listener is called after each committed mutation, outside the ledger lock.
type Listener func(events.Event)

// Ledger is the single writer for one record set.
type Ledger struct {
	store     store.Store
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	data      model.Dataset
	listeners []Listener
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher sends committed changes to p.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Open loads every record from s.
func Open(ctx context.Context, s store.Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:     s,
		publisher: events.Nop{},
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	l.data = ds
	return l, nil
}

// Subscribe registers fn for every future change.
func (l *Ledger) Subscribe(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Snapshot returns a deep copy of all records.
func (l *Ledger) Snapshot() model.Dataset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.data.Clone()
}

// Transactions returns the current transactions, newest first.
func (l *Ledger) Transactions() []model.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Transaction(nil), l.data.Transactions...)
}

// Transaction looks up one transaction by id.
func (l *Ledger) Transaction(id string) (model.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.txIndex(id); i >= 0 {
		return l.data.Transactions[i], nil
	}
	return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
}

// Goal looks up one goal by id.
func (l *Ledger) Goal(id string) (model.Goal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.goalIndex(id); i >= 0 {
		return l.data.Goals[i], nil
	}
	return model.Goal{}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
}

// Budget looks up a budget by category, ignoring case. Scoped budgets are
// addressed with their Key.
func (l *Ledger) Budget(key string) (model.Budget, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.budgetIndex(key); i >= 0 {
		return l.data.Budgets[i], nil
	}
	return model.Budget{}, fmt.Errorf("budget %s: %w", key, ErrNotFound)
}

// AddTransaction assigns a fresh id, fills a missing emoji and date, and
// places the record first.
func (l *Ledger) AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	tx.ID = uuid.NewString()
	l.prepare(&tx)
	if err := tx.Validate(); err != nil {
		return tx, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	l.mu.Lock()
	if err := l.store.PrependTransactions(ctx, tx); err != nil {
		l.mu.Unlock()
		return tx, fmt.Errorf("saving transaction: %w", err)
	}
	l.data.Transactions = append([]model.Transaction{tx}, l.data.Transactions...)
	l.mu.Unlock()

	l.emit(ctx, events.KindTransaction, events.Created, tx.ID, tx)
	return tx, nil
}

// ImportTransactions adds a batch ahead of existing records, keeping the
// batch order. Every record gets a fresh id.
func (l *Ledger) ImportTransactions(ctx context.Context, txs []model.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	batch := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		tx.ID = uuid.NewString()
		l.prepare(&tx)
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("%w: row %d: %v", ErrInvalid, i+1, err)
		}
		batch[i] = tx
	}

	l.mu.Lock()
	if err := l.store.PrependTransactions(ctx, batch...); err != nil {
		l.mu.Unlock()
		return 0, fmt.Errorf("saving import: %w", err)
	}
	l.data.Transactions = append(batch, l.data.Transactions...)
	l.mu.Unlock()

	l.emit(ctx, events.KindLedger, events.Created, fmt.Sprintf("%d transactions", len(batch)), nil)
	return len(batch), nil
}

// UpdateTransaction replaces the record with tx.ID in place.
func (l *Ledger) UpdateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	l.prepare(&tx)
	if err := tx.Validate(); err != nil {
		return tx, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	l.mu.Lock()
	i := l.txIndex(tx.ID)
	if i < 0 {
		l.mu.Unlock()
		return tx, fmt.Errorf("transaction %s: %w", tx.ID, ErrNotFound)
	}
	if err := l.store.UpdateTransaction(ctx, tx); err != nil {
		l.mu.Unlock()
		return tx, storeErr("transaction", tx.ID, err)
	}
	l.data.Transactions[i] = tx
	l.mu.Unlock()

	l.emit(ctx, events.KindTransaction, events.Updated, tx.ID, tx)
	return tx, nil
}

// DeleteTransaction removes a transaction by id.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	l.mu.Lock()
	i := l.txIndex(id)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		l.mu.Unlock()
		return storeErr("transaction", id, err)
	}
	l.data.Transactions = append(l.data.Transactions[:i:i], l.data.Transactions[i+1:]...)
	l.mu.Unlock()

	l.emit(ctx, events.KindTransaction, events.Deleted, id, nil)
	return nil
}

// SetBudget inserts or replaces the budget with the same category and period.
func (l *Ledger) SetBudget(ctx context.Context, b model.Budget) (model.Budget, error) {
	b.Category = strings.TrimSpace(b.Category)
	if b.Emoji == "" {
		b.Emoji = model.EmojiFor(model.Expense, b.Category)
	}
	if err := b.Validate(); err != nil {
		return b, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	l.mu.Lock()
	if err := l.store.PutBudget(ctx, b); err != nil {
		l.mu.Unlock()
		return b, fmt.Errorf("saving budget: %w", err)
	}
	action := events.Updated
	if i := l.budgetIndex(b.Key()); i >= 0 {
		l.data.Budgets[i] = b
	} else {
		l.data.Budgets = append(l.data.Budgets, b)
		action = events.Created
	}
	l.mu.Unlock()

	l.emit(ctx, events.KindBudget, action, b.Key(), b)
	return b, nil
}

// DeleteBudget removes a budget by Key.
func (l *Ledger) DeleteBudget(ctx context.Context, key string) error {
	l.mu.Lock()
	i := l.budgetIndex(key)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("budget %s: %w", key, ErrNotFound)
	}
	realKey := l.data.Budgets[i].Key()
	if err := l.store.DeleteBudget(ctx, realKey); err != nil {
		l.mu.Unlock()
		return storeErr("budget", key, err)
	}
	l.data.Budgets = append(l.data.Budgets[:i:i], l.data.Budgets[i+1:]...)
	l.mu.Unlock()

	l.emit(ctx, events.KindBudget, events.Deleted, realKey, nil)
	return nil
}

// AddGoal assigns a fresh id and places the goal last.
func (l *Ledger) AddGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	g.ID = uuid.NewString()
	if g.Emoji == "" {
		g.Emoji = model.DefaultGoalEmoji
	}
	if err := g.Validate(); err != nil {
		return g, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	l.mu.Lock()
	if err := l.store.AppendGoal(ctx, g); err != nil {
		l.mu.Unlock()
		return g, fmt.Errorf("saving goal: %w", err)
	}
	l.data.Goals = append(l.data.Goals, g)
	l.mu.Unlock()

	l.emit(ctx, events.KindGoal, events.Created, g.ID, g)
	return g, nil
}

// UpdateGoal replaces the goal with g.ID in place.
func (l *Ledger) UpdateGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	if g.Emoji == "" {
		g.Emoji = model.DefaultGoalEmoji
	}
	if err := g.Validate(); err != nil {
		return g, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	l.mu.Lock()
	g, err := l.updateGoalLocked(ctx, g.ID, func(model.Goal) model.Goal { return g })
	l.mu.Unlock()
	if err != nil {
		return g, err
	}

	l.emit(ctx, events.KindGoal, events.Updated, g.ID, g)
	return g, nil
}

// Contribute adds amount to a goal's current savings. The read and the
// write happen under one lock so concurrent contributions all count.
func (l *Ledger) Contribute(ctx context.Context, id string, amount decimal.Decimal) (model.Goal, error) {
	if !amount.IsPositive() {
		return model.Goal{}, fmt.Errorf("%w: contribution must be positive", ErrInvalid)
	}

	l.mu.Lock()
	g, err := l.updateGoalLocked(ctx, id, func(cur model.Goal) model.Goal {
		cur.Current = cur.Current.Add(amount)
		return cur
	})
	l.mu.Unlock()
	if err != nil {
		return g, err
	}

	l.emit(ctx, events.KindGoal, events.Updated, g.ID, g)
	return g, nil
}

// updateGoalLocked applies change to the stored goal, writes it through and
// updates the in-memory copy. The caller holds l.mu.
func (l *Ledger) updateGoalLocked(ctx context.Context, id string, change func(model.Goal) model.Goal) (model.Goal, error) {
	i := l.goalIndex(id)
	if i < 0 {
		return model.Goal{ID: id}, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	g := change(l.data.Goals[i])
	g.ID = id
	if err := l.store.UpdateGoal(ctx, g); err != nil {
		return g, storeErr("goal", id, err)
	}
	l.data.Goals[i] = g
	return g, nil
}

// DeleteGoal removes a goal by id.
func (l *Ledger) DeleteGoal(ctx context.Context, id string) error {
	l.mu.Lock()
	i := l.goalIndex(id)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err := l.store.DeleteGoal(ctx, id); err != nil {
		l.mu.Unlock()
		return storeErr("goal", id, err)
	}
	l.data.Goals = append(l.data.Goals[:i:i], l.data.Goals[i+1:]...)
	l.mu.Unlock()

	l.emit(ctx, events.KindGoal, events.Deleted, id, nil)
	return nil
}

// Notifications merges stored notifications with alerts derived from the
// current budgets and goals. Newly derived alerts are persisted unread and
// changed alert text is written back.
func (l *Ledger) Notifications(ctx context.Context) ([]model.Notification, error) {
	l.mu.Lock()
	merged := pipeline.MergeNotifications(l.data.Notifications,
		pipeline.BudgetAlerts(l.data.Budgets),
		pipeline.GoalMilestones(l.data.Goals),
	)
	if slices.Equal(merged, l.data.Notifications) {
		l.mu.Unlock()
		return merged, nil
	}
	if err := l.store.ReplaceNotifications(ctx, merged); err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("saving notifications: %w", err)
	}
	l.data.Notifications = merged
	l.mu.Unlock()

	l.emit(ctx, events.KindNotification, events.Created, "", nil)
	return append([]model.Notification(nil), merged...), nil
}

// MarkNotificationsRead flags every notification as read.
func (l *Ledger) MarkNotificationsRead(ctx context.Context) error {
	l.mu.Lock()
	ns := append([]model.Notification(nil), l.data.Notifications...)
	for i := range ns {
		ns[i].Read = true
	}
	if err := l.store.ReplaceNotifications(ctx, ns); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("saving notifications: %w", err)
	}
	l.data.Notifications = ns
	l.mu.Unlock()

	l.emit(ctx, events.KindNotification, events.Updated, "", nil)
	return nil
}

// Replace swaps the whole record set, e.g. when loading demo data.
func (l *Ledger) Replace(ctx context.Context, ds model.Dataset) error {
	l.mu.Lock()
	if err := l.store.Replace(ctx, ds); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("replacing ledger: %w", err)
	}
	l.data = ds.Clone()
	l.mu.Unlock()

	l.emit(ctx, events.KindLedger, events.Replaced, "", nil)
	return nil
}

// Empty reports whether the ledger has no records at all.
func (l *Ledger) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.data.Transactions) == 0 && len(l.data.Budgets) == 0 && len(l.data.Goals) == 0
}

func (l *Ledger) prepare(tx *model.Transaction) {
	tx.Category = strings.TrimSpace(tx.Category)
	tx.Description = strings.TrimSpace(tx.Description)
	if tx.Emoji == "" {
		tx.Emoji = model.EmojiFor(tx.Type, tx.Category)
	}
	if tx.Date.IsZero() {
		tx.Date = model.DateOf(l.now())
	}
}

// emit publishes after the lock is released so slow brokers never block readers.
func (l *Ledger) emit(ctx context.Context, kind events.Kind, action events.Action, subject string, payload any) {
	e := events.Event{Kind: kind, Action: action, Subject: subject, At: l.now().UTC(), Payload: payload}
	if err := l.publisher.Publish(ctx, e); err != nil {
		l.log.Warn().Err(err).Str("routing_key", e.RoutingKey()).Msg("publishing ledger event failed")
	}

	l.mu.RLock()
	listeners := append([]Listener(nil), l.listeners...)
	l.mu.RUnlock()
	for _, fn := range listeners {
		fn(e)
	}
}

func (l *Ledger) txIndex(id string) int {
	for i := range l.data.Transactions {
		if l.data.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) goalIndex(id string) int {
	for i := range l.data.Goals {
		if l.data.Goals[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) budgetIndex(key string) int {
	key = strings.ToLower(strings.TrimSpace(key))
	for i := range l.data.Budgets {
		if l.data.Budgets[i].Key() == key {
			return i
		}
	}
	return -1
}

func storeErr(kind, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("saving %s %s: %w", kind, id, err)
}
