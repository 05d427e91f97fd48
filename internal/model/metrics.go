package model

import "github.com/shopspring/decimal"

// Totals holds the headline figures across a set of transactions.
type Totals struct {
	Income      decimal.Decimal `json:"totalIncome"`
	Expense     decimal.Decimal `json:"totalExpense"`
	Balance     decimal.Decimal `json:"balance"`
	SavingsRate float64         `json:"savingsRate"`
}

// CategoryTotal is one (name, value) pair of a chart-ready series.
type CategoryTotal struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Severity is the utilization tier of a budget.
type Severity string

const (
	SeverityNormal  Severity = "normal"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// BudgetStatus is the derived view of one budget.
type BudgetStatus struct {
	Budget        Budget          `json:"budget"`
	Percentage    float64         `json:"percentage"`
	BarPercentage float64         `json:"barPercentage"` // clamped to [0,100]
	Remaining     decimal.Decimal `json:"remaining"`
	Severity      Severity        `json:"severity"`
	Over          bool            `json:"over"`
}

// GoalProgress is the derived view of one goal.
type GoalProgress struct {
	Goal          Goal            `json:"goal"`
	Percentage    float64         `json:"percentage"`
	BarPercentage float64         `json:"barPercentage"`
	Remaining     decimal.Decimal `json:"remaining"`
	Achieved      bool            `json:"achieved"`
}

// MonthPoint holds income and expense for one calendar month.
type MonthPoint struct {
	Year    int             `json:"year"`
	Month   string          `json:"month"` // short name, e.g. "Nov"
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Savings decimal.Decimal `json:"savings"`
}

// CategoryTrend compares one expense category across consecutive months.
type CategoryTrend struct {
	Category  string          `json:"category"`
	ThisMonth decimal.Decimal `json:"thisMonth"`
	LastMonth decimal.Decimal `json:"lastMonth"`
	Delta     decimal.Decimal `json:"delta"`
}
