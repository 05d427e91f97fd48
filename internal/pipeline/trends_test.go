package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

func dated(typ model.TxType, category string, amount int64, y int, m time.Month, d int) model.Transaction {
	t := tx(typ, category, "", amount)
	t.Date = model.NewDate(y, m, d)
	return t
}

func TestMonthlySeries(t *testing.T) {
	now := time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		dated(model.Income, "Salary", 3500, 2025, time.November, 1),
		dated(model.Expense, "Rent", 1200, 2025, time.November, 1),
		dated(model.Expense, "Food", 85, 2025, time.October, 29),
		dated(model.Income, "Gift", 999, 2024, time.January, 1),
	}

	got := MonthlySeries(txs, 3, now)
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
	if got[0].Month != "Sep" || got[2].Month != "Nov" {
		t.Errorf("months = %s..%s, want Sep..Nov", got[0].Month, got[2].Month)
	}
	if !got[0].Income.IsZero() || !got[0].Expense.IsZero() {
		t.Errorf("September should be empty, got %+v", got[0])
	}
	if !got[1].Expense.Equal(decimal.NewFromInt(85)) {
		t.Errorf("October expense = %s", got[1].Expense)
	}
	if !got[2].Savings.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("November savings = %s, want 2300", got[2].Savings)
	}
}

func TestMonthlySeries_YearBoundary(t *testing.T) {
	now := time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC)
	txs := []model.Transaction{dated(model.Expense, "Food", 10, 2025, time.December, 31)}
	got := MonthlySeries(txs, 2, now)
	if got[0].Year != 2025 || got[0].Month != "Dec" || !got[0].Expense.Equal(decimal.NewFromInt(10)) {
		t.Errorf("got %+v", got[0])
	}
}

func TestCategoryTrends(t *testing.T) {
	now := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		dated(model.Expense, "Food", 650, 2025, time.November, 2),
		dated(model.Expense, "Food", 720, 2025, time.October, 2),
		dated(model.Expense, "Transport", 460, 2025, time.November, 3),
		dated(model.Expense, "Entertainment", 180, 2025, time.October, 4),
		dated(model.Expense, "Rent", 1200, 2025, time.September, 1),
		dated(model.Income, "Salary", 4000, 2025, time.November, 1),
	}

	got := CategoryTrends(txs, now)
	if len(got) != 3 {
		t.Fatalf("got %d trends, want 3: %+v", len(got), got)
	}
	if got[0].Category != "Food" || !got[0].Delta.Equal(decimal.NewFromInt(-70)) {
		t.Errorf("first = %+v, want Food with delta -70", got[0])
	}
	if got[2].Category != "Entertainment" || !got[2].ThisMonth.IsZero() {
		t.Errorf("last = %+v, want Entertainment with nothing this month", got[2])
	}
}
