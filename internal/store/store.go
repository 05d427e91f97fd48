// Package store persists ledger records. Backends keep records in ledger
// order: transactions newest-first as inserted, budgets and goals in creation
// order.
package store

import (
	"context"
	"errors"

	"github.com/theirongolddev/rupee/internal/model"
)

// ErrNotFound is returned when an update or delete targets a missing record.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract shared by every backend.
type Store interface {
	// Load returns every record in ledger order.
	Load(ctx context.Context) (model.Dataset, error)
	// Replace discards all records and writes ds in its given order.
	Replace(ctx context.Context, ds model.Dataset) error

	// PrependTransactions inserts txs ahead of existing ones, keeping txs[0] first.
	PrependTransactions(ctx context.Context, txs ...model.Transaction) error
	UpdateTransaction(ctx context.Context, tx model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// PutBudget inserts or replaces the budget with the same Key. New
	// budgets go last.
	PutBudget(ctx context.Context, b model.Budget) error
	DeleteBudget(ctx context.Context, key string) error

	AppendGoal(ctx context.Context, g model.Goal) error
	UpdateGoal(ctx context.Context, g model.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	ReplaceNotifications(ctx context.Context, ns []model.Notification) error

	Close() error
}
