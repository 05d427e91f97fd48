package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/rupee/internal/model"
)

// MonthlySeries buckets transactions into the last n calendar months ending at
// now, oldest first. Months with no activity appear as zeros.
func MonthlySeries(txs []model.Transaction, n int, now time.Time) []model.MonthPoint {
	if n < 1 {
		return nil
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)

	points := make([]model.MonthPoint, n)
	for i := range points {
		m := start.AddDate(0, i, 0)
		points[i] = model.MonthPoint{Year: m.Year(), Month: m.Format("Jan")}
	}

	for _, tx := range txs {
		idx := monthIndex(start, tx.Date)
		if idx < 0 || idx >= n {
			continue
		}
		switch tx.Type {
		case model.Income:
			points[idx].Income = points[idx].Income.Add(tx.Amount)
		case model.Expense:
			points[idx].Expense = points[idx].Expense.Add(tx.Amount)
		}
	}
	for i := range points {
		points[i].Savings = points[i].Income.Sub(points[i].Expense)
	}
	return points
}

func monthIndex(start time.Time, d model.Date) int {
	return (d.Year()-start.Year())*12 + int(d.Month()) - int(start.Month())
}

// CategoryTrends compares expense categories in now's month against the month
// before. Rows are sorted by this month's spend, highest first.
func CategoryTrends(txs []model.Transaction, now time.Time) []model.CategoryTrend {
	thisStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastStart := thisStart.AddDate(0, -1, 0)

	byCat := make(map[string]*model.CategoryTrend)
	for _, tx := range txs {
		if tx.Type != model.Expense {
			continue
		}
		var this bool
		switch {
		case tx.Date.SameMonth(thisStart.Year(), thisStart.Month()):
			this = true
		case tx.Date.SameMonth(lastStart.Year(), lastStart.Month()):
		default:
			continue
		}
		ct, ok := byCat[tx.Category]
		if !ok {
			ct = &model.CategoryTrend{Category: tx.Category}
			byCat[tx.Category] = ct
		}
		if this {
			ct.ThisMonth = ct.ThisMonth.Add(tx.Amount)
		} else {
			ct.LastMonth = ct.LastMonth.Add(tx.Amount)
		}
	}

	out := make([]model.CategoryTrend, 0, len(byCat))
	for _, ct := range byCat {
		ct.Delta = ct.ThisMonth.Sub(ct.LastMonth)
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].ThisMonth.Cmp(out[j].ThisMonth); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
