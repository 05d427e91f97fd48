package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderAnalyticsTab(cw int) string {
	t := theme.Active
	months := a.monthly
	var b strings.Builder

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	// Row 1: income against expenses per month
	income := make([]float64, len(months))
	expense := make([]float64, len(months))
	savings := make([]float64, len(months))
	labels := make([]string, len(months))
	for i, m := range months {
		income[i] = m.Income.InexactFloat64()
		expense[i] = m.Expense.InexactFloat64()
		savings[i] = max(m.Savings.InexactFloat64(), 0)
		labels[i] = m.Month
	}

	chartH := 11
	if a.isCompactLayout() {
		chartH = 8
	}
	chart := components.ColumnChart(labels, []components.Series{
		{Name: "Income", Values: income, Color: t.Green},
		{Name: "Expenses", Values: expense, Color: t.Red},
	}, components.CardInnerWidth(cw), chartH)
	b.WriteString(components.ContentCard("Income vs Expenses", chart, cw))
	b.WriteString("\n")

	// Row 2: month table with savings sparkline
	innerW := components.CardInnerWidth(cw)
	const monthW, amtW = 9, 14
	var table strings.Builder
	table.WriteString(headerStyle.Render(fit("Month", monthW) + " " + fitRight("Income", amtW) + " " +
		fitRight("Expenses", amtW) + " " + fitRight("Savings", amtW)))
	table.WriteString("\n")
	table.WriteString(mutedStyle.Render(strings.Repeat("─", min(innerW, monthW+3*amtW+3))))
	table.WriteString("\n")
	for _, m := range months {
		savStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
		if m.Savings.IsNegative() {
			savStyle = savStyle.Foreground(t.Red)
		}
		table.WriteString(rowStyle.Render(fit(fmt.Sprintf("%s %d", m.Month, m.Year%100), monthW) + " " +
			fitRight(cli.FormatCurrency(m.Income), amtW) + " " +
			fitRight(cli.FormatCurrency(m.Expense), amtW) + " "))
		table.WriteString(savStyle.Render(fitRight(cli.FormatDelta(m.Savings), amtW)))
		table.WriteString("\n")
	}
	table.WriteString("\n")
	table.WriteString(mutedStyle.Render("Savings trend "))
	table.WriteString(components.Sparkline(savings, t.Cyan))
	b.WriteString(components.ContentCard(fmt.Sprintf("Monthly Overview (%d months)", len(months)), table.String(), cw))
	b.WriteString("\n")

	// Row 3: category trends, this month vs last
	b.WriteString(components.ContentCard("Category Trends (this month vs last)", a.renderCategoryTrends(innerW), cw))

	return b.String()
}

func (a App) renderCategoryTrends(innerW int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	if len(a.trends) == 0 {
		return mutedStyle.Render("No expenses in the last two months.")
	}

	const amtW = 14
	catW := max(min(innerW-3*amtW-3, 24), 10)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fit("Category", catW) + " " + fitRight("This month", amtW) + " " +
		fitRight("Last month", amtW) + " " + fitRight("Change", amtW)))
	b.WriteString("\n")
	for _, tr := range a.trends {
		// More spending is bad news.
		deltaStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		switch {
		case tr.Delta.IsPositive():
			deltaStyle = deltaStyle.Foreground(t.Red)
		case tr.Delta.IsNegative():
			deltaStyle = deltaStyle.Foreground(t.GreenBright)
		}
		label := model.EmojiFor(model.Expense, tr.Category) + " " + tr.Category
		b.WriteString(rowStyle.Render(fit(label, catW) + " " +
			fitRight(cli.FormatCurrency(tr.ThisMonth), amtW) + " " +
			fitRight(cli.FormatCurrency(tr.LastMonth), amtW) + " "))
		b.WriteString(deltaStyle.Render(fitRight(cli.FormatDelta(tr.Delta), amtW)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
