// Package pipeline derives dashboard figures from ledger snapshots and loads
// transaction files for import.
package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Totals sums income and expense and derives balance and savings rate.
// SavingsRate is rounded to one decimal place and is zero when there is no income.
func Totals(txs []model.Transaction) model.Totals {
	var t model.Totals
	for _, tx := range txs {
		switch tx.Type {
		case model.Income:
			t.Income = t.Income.Add(tx.Amount)
		case model.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	if t.Income.IsPositive() {
		t.SavingsRate = t.Balance.Div(t.Income).Mul(hundred).Round(1).InexactFloat64()
	}
	return t
}

// ExpenseByCategory groups expenses by category in first-seen order.
// The result is the chart series; it is deliberately not sorted by value.
func ExpenseByCategory(txs []model.Transaction) []model.CategoryTotal {
	index := make(map[string]int)
	var out []model.CategoryTotal
	for _, tx := range txs {
		if tx.Type != model.Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, model.CategoryTotal{Name: tx.Category})
		}
		out[i].Value = out[i].Value.Add(tx.Amount)
	}
	return out
}

// FilterTransactions keeps transactions whose description or category contains
// query (case-insensitive) and whose type passes filter. Order is preserved and
// the input slice is never aliased.
func FilterTransactions(txs []model.Transaction, query string, filter model.TypeFilter) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !matchesType(tx, filter) {
			continue
		}
		if query != "" && !containsIgnoreCase(tx.Description, query) && !containsIgnoreCase(tx.Category, query) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func matchesType(tx model.Transaction, filter model.TypeFilter) bool {
	switch filter {
	case model.FilterIncome:
		return tx.Type == model.Income
	case model.FilterExpense:
		return tx.Type == model.Expense
	default:
		return true
	}
}

// BudgetStatus derives utilization for one budget. Percentage is unclamped;
// BarPercentage is clamped for progress bars. A budget without a positive
// limit reports 0% but is danger (with a full bar) once anything is spent.
func BudgetStatus(b model.Budget) model.BudgetStatus {
	st := model.BudgetStatus{
		Budget:    b,
		Remaining: b.Limit.Sub(b.Spent),
	}
	st.Percentage = percentOf(b.Spent, b.Limit)
	st.BarPercentage = clampPercent(st.Percentage)
	st.Over = st.Remaining.IsNegative()
	switch {
	case !b.Limit.IsPositive() && b.Spent.IsPositive():
		st.Severity = model.SeverityDanger
		st.BarPercentage = 100
	case st.Percentage >= 100:
		st.Severity = model.SeverityDanger
	case st.Percentage >= WarningThreshold:
		st.Severity = model.SeverityWarning
	default:
		st.Severity = model.SeverityNormal
	}
	return st
}

// WarningThreshold is the utilization percentage at which a budget turns amber.
const WarningThreshold = 80.0

// BudgetStatuses maps BudgetStatus over a slice, keeping order.
func BudgetStatuses(budgets []model.Budget) []model.BudgetStatus {
	out := make([]model.BudgetStatus, len(budgets))
	for i, b := range budgets {
		out[i] = BudgetStatus(b)
	}
	return out
}

// GoalProgress derives completion for one goal.
func GoalProgress(g model.Goal) model.GoalProgress {
	p := model.GoalProgress{
		Goal:      g,
		Remaining: g.Target.Sub(g.Current),
	}
	p.Percentage = percentOf(g.Current, g.Target)
	p.BarPercentage = clampPercent(p.Percentage)
	p.Achieved = p.Percentage >= 100
	return p
}

// GoalProgresses maps GoalProgress over a slice, keeping order.
func GoalProgresses(goals []model.Goal) []model.GoalProgress {
	out := make([]model.GoalProgress, len(goals))
	for i, g := range goals {
		out[i] = GoalProgress(g)
	}
	return out
}

// DeriveBudgetSpent returns copies of budgets whose Spent is recomputed from
// matching expense transactions. Budgets scoped to a month only count that month.
func DeriveBudgetSpent(budgets []model.Budget, txs []model.Transaction) []model.Budget {
	out := make([]model.Budget, len(budgets))
	for i, b := range budgets {
		b.Spent = decimal.Zero
		for _, tx := range txs {
			if tx.Type == model.Expense && strings.EqualFold(tx.Category, b.Category) && b.Covers(tx.Date) {
				b.Spent = b.Spent.Add(tx.Amount)
			}
		}
		out[i] = b
	}
	return out
}

// Share is part as a percentage of whole, or zero when whole is not positive.
func Share(part, whole decimal.Decimal) float64 {
	return percentOf(part, whole)
}

// percentOf returns part/whole*100, or zero when whole is not positive.
func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// containsIgnoreCase reports whether substr is in s, case-insensitive.
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
