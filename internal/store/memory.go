package store

import (
	"context"
	"sync"

	"github.com/theirongolddev/rupee/internal/model"
)

// Memory keeps records in process memory. Data is lost when the process exits.
type Memory struct {
	mu sync.Mutex
	ds model.Dataset
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (model.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ds.Clone(), nil
}

func (m *Memory) Replace(_ context.Context, ds model.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = ds.Clone()
	return nil
}

func (m *Memory) PrependTransactions(_ context.Context, txs ...model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Transaction, 0, len(txs)+len(m.ds.Transactions))
	out = append(out, txs...)
	m.ds.Transactions = append(out, m.ds.Transactions...)
	return nil
}

func (m *Memory) UpdateTransaction(_ context.Context, tx model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ds.Transactions {
		if m.ds.Transactions[i].ID == tx.ID {
			m.ds.Transactions[i] = tx
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ds.Transactions {
		if m.ds.Transactions[i].ID == id {
			m.ds.Transactions = append(m.ds.Transactions[:i:i], m.ds.Transactions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) PutBudget(_ context.Context, b model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ds.Budgets {
		if m.ds.Budgets[i].Key() == b.Key() {
			m.ds.Budgets[i] = b
			return nil
		}
	}
	m.ds.Budgets = append(m.ds.Budgets, b)
	return nil
}

func (m *Memory) DeleteBudget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ds.Budgets {
		if m.ds.Budgets[i].Key() == key {
			m.ds.Budgets = append(m.ds.Budgets[:i:i], m.ds.Budgets[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) AppendGoal(_ context.Context, g model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds.Goals = append(m.ds.Goals, g)
	return nil
}

func (m *Memory) UpdateGoal(_ context.Context, g model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ds.Goals {
		if m.ds.Goals[i].ID == g.ID {
			m.ds.Goals[i] = g
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteGoal(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.ds.Goals {
		if m.ds.Goals[i].ID == id {
			m.ds.Goals = append(m.ds.Goals[:i:i], m.ds.Goals[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) ReplaceNotifications(_ context.Context, ns []model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds.Notifications = append([]model.Notification(nil), ns...)
	return nil
}

func (m *Memory) Close() error { return nil }
