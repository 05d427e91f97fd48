package model

// NotificationKind drives the icon and color of an alert.
type NotificationKind string

const (
	NotifyWarning NotificationKind = "warning"
	NotifyInfo    NotificationKind = "info"
	NotifySuccess NotificationKind = "success"
)

// Notification is a user-facing alert.
type Notification struct {
	ID      string           `json:"id"`
	Message string           `json:"message"`
	Kind    NotificationKind `json:"type"`
	Read    bool             `json:"read"`
}

// Dataset is the full record set owned by a ledger.
type Dataset struct {
	Transactions  []Transaction  `json:"transactions"`
	Budgets       []Budget       `json:"budgets"`
	Goals         []Goal         `json:"goals"`
	Notifications []Notification `json:"notifications"`
}

// Clone returns a deep copy so callers can read without holding locks.
func (d Dataset) Clone() Dataset {
	return Dataset{
		Transactions:  append([]Transaction(nil), d.Transactions...),
		Budgets:       append([]Budget(nil), d.Budgets...),
		Goals:         append([]Goal(nil), d.Goals...),
		Notifications: append([]Notification(nil), d.Notifications...),
	}
}
