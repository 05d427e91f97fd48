// Package events publishes ledger changes to interested systems.
package events

import (
	"context"
	"sync"
	"time"
)

// Kind is the record type an event is about.
type Kind string

const (
	KindTransaction  Kind = "transaction"
	KindBudget       Kind = "budget"
	KindGoal         Kind = "goal"
	KindNotification Kind = "notification"
	KindLedger       Kind = "ledger"
)

// Action is what happened to the record.
type Action string

const (
	Created  Action = "created"
	Updated  Action = "updated"
	Deleted  Action = "deleted"
	Replaced Action = "replaced"
)

// Event describes one committed ledger mutation.
type Event struct {
	Kind    Kind      `json:"kind"`
	Action  Action    `json:"action"`
	Subject string    `json:"subject"` // record id or budget key
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// RoutingKey is the topic used on the message bus, e.g. ledger.goal.updated.
func (e Event) RoutingKey() string {
	return "ledger." + string(e.Kind) + "." + string(e.Action)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
