package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

// seedAnchor is the month the demo data was written for. Demo dates are
// shifted so this month lines up with the current one.
var seedAnchor = time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)

// DemoData returns the sample ledger shown on first run: nine recent
// transactions, three months of history for the trend charts, five budgets,
// three goals and three notifications.
func DemoData(now time.Time) model.Dataset {
	offset := (now.Year()-seedAnchor.Year())*12 + int(now.Month()) - int(seedAnchor.Month())
	d := func(s string) model.Date {
		t, _ := time.Parse(model.DateLayout, s)
		return shiftMonths(t, offset)
	}
	amt := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	tx := func(id string, typ model.TxType, amount, category, desc, date, emoji string) model.Transaction {
		return model.Transaction{
			ID: id, Type: typ, Amount: amt(amount), Category: category,
			Description: desc, Date: d(date), Emoji: emoji,
		}
	}

	txs := []model.Transaction{
		tx("1", model.Expense, "25.50", "Food", "Pizza Hut", "2025-11-02", "🍕"),
		tx("2", model.Income, "3500", "Salary", "Monthly Salary", "2025-11-01", "💼"),
		tx("3", model.Expense, "45", "Transport", "Gas Station", "2025-10-31", "⛽"),
		tx("4", model.Expense, "120", "Shopping", "Clothes", "2025-10-30", "🛍️"),
		tx("5", model.Expense, "1200", "Rent", "Monthly Rent", "2025-11-01", "🏠"),
		tx("6", model.Income, "500", "Freelance", "Web Design Project", "2025-10-28", "💻"),
		tx("7", model.Expense, "85", "Food", "Grocery Shopping", "2025-10-29", "🛒"),
		tx("8", model.Expense, "60", "Entertainment", "Movie Tickets", "2025-10-27", "🎬"),
		tx("9", model.Income, "200", "Investment", "Stock Dividends", "2025-10-26", "📈"),
	}
	txs[4].Recurring = true
	txs[1].Recurring = true

	history := []model.Transaction{
		tx("h1", model.Income, "3300", "Salary", "Monthly Salary", "2025-09-01", "💼"),
		tx("h2", model.Expense, "1200", "Rent", "Monthly Rent", "2025-09-01", "🏠"),
		tx("h3", model.Expense, "950", "Food", "Groceries", "2025-09-14", "🍕"),
		tx("h4", model.Expense, "750", "Transport", "Train Pass", "2025-09-05", "🚗"),
		tx("h5", model.Income, "3500", "Salary", "Monthly Salary", "2025-08-01", "💼"),
		tx("h6", model.Expense, "1200", "Rent", "Monthly Rent", "2025-08-01", "🏠"),
		tx("h7", model.Expense, "1100", "Food", "Groceries", "2025-08-16", "🍕"),
		tx("h8", model.Expense, "800", "Bills", "Electricity", "2025-08-10", "💡"),
		tx("h9", model.Income, "3200", "Salary", "Monthly Salary", "2025-07-01", "💼"),
		tx("h10", model.Expense, "1200", "Rent", "Monthly Rent", "2025-07-01", "🏠"),
		tx("h11", model.Expense, "900", "Food", "Groceries", "2025-07-12", "🍕"),
		tx("h12", model.Expense, "700", "Shopping", "Shoes", "2025-07-20", "🛍️"),
	}

	budget := func(category, limit, spent, emoji string) model.Budget {
		return model.Budget{Category: category, Limit: amt(limit), Spent: amt(spent), Emoji: emoji}
	}
	goal := func(id, name, target, current, emoji, deadline string) model.Goal {
		return model.Goal{ID: id, Name: name, Target: amt(target), Current: amt(current), Emoji: emoji, Deadline: d(deadline)}
	}

	return model.Dataset{
		Transactions: append(txs, history...),
		Budgets: []model.Budget{
			budget("Food", "1000", "650", "🍕"),
			budget("Transport", "500", "460", "🚗"),
			budget("Shopping", "400", "320", "🛍️"),
			budget("Rent", "1200", "1200", "🏠"),
			budget("Entertainment", "300", "60", "🎮"),
		},
		Goals: []model.Goal{
			goal("101", "Emergency Fund", "5000", "3240", "🎯", "2025-12-31"),
			goal("102", "Vacation", "2000", "850", "✈️", "2026-06-30"),
			goal("103", "New Laptop", "1500", "600", "💻", "2026-03-15"),
		},
		Notifications: []model.Notification{
			{ID: "budget:rent:danger", Message: "Rent budget exceeded!", Kind: model.NotifyWarning},
			{ID: "budget:transport:warning", Message: "Transport budget at 92%", Kind: model.NotifyInfo},
			{ID: "welcome", Message: "New goal milestone reached!", Kind: model.NotifySuccess, Read: true},
		},
	}
}

// shiftMonths moves t by n months, clamping the day to the target month's length.
func shiftMonths(t time.Time, n int) model.Date {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return model.NewDate(first.Year(), first.Month(), day)
}

// Seed replaces every record with DemoData for the ledger's current month.
func (l *Ledger) Seed(ctx context.Context) error {
	return l.Replace(ctx, DemoData(l.now()))
}
