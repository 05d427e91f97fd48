package store

import "github.com/theirongolddev/rupee/internal/model"

// rows is the subset of *sql.Rows and pgx.Rows the loaders need.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

const (
	selectTransactions  = `SELECT id, type, amount, category, description, date, emoji, recurring, notes FROM transactions ORDER BY pos, id`
	selectBudgets       = `SELECT category, limit_amount, spent, emoji, month, year FROM budgets ORDER BY pos, key`
	selectGoals         = `SELECT id, name, target, current, emoji, deadline FROM goals ORDER BY pos, id`
	selectNotifications = `SELECT id, message, kind, read FROM notifications ORDER BY pos, id`
)

func scanTransactions(r rows) ([]model.Transaction, error) {
	var out []model.Transaction
	for r.Next() {
		var t model.Transaction
		var typ string
		if err := r.Scan(&t.ID, &typ, &t.Amount, &t.Category, &t.Description, &t.Date, &t.Emoji, &t.Recurring, &t.Notes); err != nil {
			return nil, err
		}
		t.Type = model.TxType(typ)
		out = append(out, t)
	}
	return out, r.Err()
}

func scanBudgets(r rows) ([]model.Budget, error) {
	var out []model.Budget
	for r.Next() {
		var b model.Budget
		if err := r.Scan(&b.Category, &b.Limit, &b.Spent, &b.Emoji, &b.Month, &b.Year); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, r.Err()
}

func scanGoals(r rows) ([]model.Goal, error) {
	var out []model.Goal
	for r.Next() {
		var g model.Goal
		if err := r.Scan(&g.ID, &g.Name, &g.Target, &g.Current, &g.Emoji, &g.Deadline); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, r.Err()
}

func scanNotifications(r rows) ([]model.Notification, error) {
	var out []model.Notification
	for r.Next() {
		var n model.Notification
		var kind string
		if err := r.Scan(&n.ID, &n.Message, &kind, &n.Read); err != nil {
			return nil, err
		}
		n.Kind = model.NotificationKind(kind)
		out = append(out, n)
	}
	return out, r.Err()
}
