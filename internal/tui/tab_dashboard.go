package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxDashboardAlerts = 6

func (a App) updateDashboardKey(key string) (App, tea.Cmd, bool) {
	if key != "m" || a.unread == 0 || a.ledger == nil {
		return a, nil, false
	}
	l := a.ledger
	return a, runAction(func(ctx context.Context) (string, error) {
		if err := l.MarkNotificationsRead(ctx); err != nil {
			return "", err
		}
		return "Alerts marked as read", nil
	}), true
}

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	totals := a.totals
	var b strings.Builder

	// Row 1: headline cards
	balanceColor := t.AccentBright
	if totals.Balance.IsNegative() {
		balanceColor = t.Red
	}
	incomeCount, expenseCount := 0, 0
	for _, tx := range a.data.Transactions {
		if tx.Type == model.Income {
			incomeCount++
		} else {
			expenseCount++
		}
	}
	topCategory := ""
	if len(a.byCategory) > 0 {
		topCategory = "top: " + a.byCategory[0].Name
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total Income", Value: cli.FormatCurrency(totals.Income), Delta: fmt.Sprintf("%d transactions", incomeCount), Color: t.GreenBright},
		{Label: "Total Expenses", Value: cli.FormatCurrency(totals.Expense), Delta: fmt.Sprintf("%d transactions", expenseCount), Color: t.Red},
		{Label: "Balance", Value: cli.FormatCurrency(totals.Balance), Delta: topCategory, Color: balanceColor},
		{Label: "Savings Rate", Value: cli.FormatPercent(totals.SavingsRate), Delta: "of income", Color: t.Cyan},
	}, cw))
	b.WriteString("\n")

	// Row 2: category breakdown + recent activity
	var categoryCard, recentCard string
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	bars := make([]components.HBar, 0, len(a.byCategory))
	for _, ct := range a.byCategory {
		share := pipeline.Share(ct.Value, totals.Expense)
		bars = append(bars, components.HBar{
			Label: ct.Name,
			Value: ct.Value.InexactFloat64(),
			Note:  fmt.Sprintf("%s %5.1f%%", cli.FormatCurrency(ct.Value), share),
		})
	}
	categoryBody := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No expenses yet")
	if len(bars) > 0 {
		categoryBody = components.HBarChart(bars, t.Orange, components.CardInnerWidth(halves[0]))
	}
	categoryCard = components.ContentCard("Expenses by Category", categoryBody, halves[0])
	recentCard = components.ContentCard("Recent Transactions", a.renderRecent(components.CardInnerWidth(halves[1])), halves[1])

	if a.isCompactLayout() {
		b.WriteString(categoryCard)
		b.WriteString("\n")
		b.WriteString(recentCard)
	} else {
		b.WriteString(components.CardRow([]string{categoryCard, recentCard}))
	}
	b.WriteString("\n")

	// Row 3: alerts
	title := "Alerts"
	if a.unread > 0 {
		title = fmt.Sprintf("Alerts (%d unread)", a.unread)
	}
	b.WriteString(components.ContentCard(title, a.renderAlerts(components.CardInnerWidth(cw)), cw))

	return b.String()
}

func (a App) recentCount() int {
	if a.cfg.General.RecentCount > 0 {
		return a.cfg.General.RecentCount
	}
	return 5
}

func (a App) renderRecent(innerW int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	n := a.recentCount()
	txs := a.data.Transactions
	if len(txs) > n {
		txs = txs[:n]
	}
	if len(txs) == 0 {
		return mutedStyle.Render("No transactions yet. Press [t] then [a] to add one.")
	}

	amountW := 14
	dateW := 7
	descW := max(innerW-amountW-dateW-2, 8)

	var b strings.Builder
	for i, tx := range txs {
		amtStyle := lipgloss.NewStyle().Foreground(amountColor(tx.Type)).Background(t.Surface).Bold(true)
		b.WriteString(rowStyle.Render(fit(tx.Emoji+" "+tx.Description, descW)))
		b.WriteString(mutedStyle.Render(" " + fit(tx.Date.Format("02 Jan"), dateW)))
		b.WriteString(amtStyle.Render(" " + fitRight(signedAmount(tx), amountW-1)))
		if i < len(txs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderAlerts(innerW int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.notifications) == 0 {
		return mutedStyle.Render("All clear. Budgets are on track.")
	}

	ns := a.notifications
	if len(ns) > maxDashboardAlerts {
		ns = ns[len(ns)-maxDashboardAlerts:]
	}

	var b strings.Builder
	for i := len(ns) - 1; i >= 0; i-- {
		n := ns[i]
		icon, color := notificationIcon(n.Kind)
		iconStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
		msgStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
		if n.Read {
			msgStyle = mutedStyle
		}
		b.WriteString(iconStyle.Render(icon + " "))
		b.WriteString(msgStyle.Render(fit(n.Message, innerW-2)))
		b.WriteString("\n")
	}
	if a.unread > 0 {
		b.WriteString(mutedStyle.Render("[m] mark all read"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func notificationIcon(kind model.NotificationKind) (string, lipgloss.Color) {
	t := theme.Active
	switch kind {
	case model.NotifyWarning:
		return "⚠", t.Orange
	case model.NotifySuccess:
		return "✓", t.GreenBright
	default:
		return "ℹ", t.BlueBright
	}
}
