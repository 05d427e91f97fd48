package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) updateBudgetsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.budgetState.move(1, len(a.budgets))
		return a, nil, true
	case "k", "up":
		a.budgetState.move(-1, len(a.budgets))
		return a, nil, true
	}

	if a.ledger == nil {
		return a, nil, false
	}

	switch key {
	case "a":
		return a, a.openModal(a.newBudgetModal(&budgetValues{spent: "0"}, false)), true
	case "e", "enter":
		if len(a.budgets) == 0 {
			return a, nil, false
		}
		b := a.budgets[a.budgetState.cursor].Budget
		return a, a.openModal(a.newBudgetModal(budgetValuesOf(b), true)), true
	case "x", "delete":
		if len(a.budgets) == 0 {
			return a, nil, false
		}
		b := a.budgets[a.budgetState.cursor].Budget
		l := a.ledger
		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete the %s budget?", b.Category)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed),
		))
		return a, a.openModal(&modal{
			form:       form,
			cancelable: true,
			onSubmit: func(*App) tea.Cmd {
				if !confirmed {
					return nil
				}
				return runAction(func(ctx context.Context) (string, error) {
					if err := l.DeleteBudget(ctx, b.Key()); err != nil {
						return "", err
					}
					return b.Category + " budget deleted", nil
				})
			},
		}), true
	}
	return a, nil, false
}

// budgetValues backs the set-budget form.
type budgetValues struct {
	category string
	limit    string
	spent    string
	month    string // YYYY-MM or blank for every month
}

func budgetValuesOf(b model.Budget) *budgetValues {
	v := &budgetValues{category: b.Category, limit: b.Limit.String(), spent: b.Spent.String()}
	if b.Month != 0 {
		v.month = fmt.Sprintf("%04d-%02d", b.Year, b.Month)
	}
	return v
}

func (v *budgetValues) budget() (model.Budget, error) {
	limit, err := parseAmount(v.limit)
	if err != nil {
		return model.Budget{}, err
	}
	spent := decimal.Zero
	if strings.TrimSpace(v.spent) != "" {
		if spent, err = parseAmount(v.spent); err != nil {
			return model.Budget{}, err
		}
	}
	b := model.Budget{
		Category: v.category,
		Limit:    limit,
		Spent:    spent,
		Emoji:    model.EmojiFor(model.Expense, v.category),
	}
	if m := strings.TrimSpace(v.month); m != "" {
		ts, err := time.Parse("2006-01", m)
		if err != nil {
			return model.Budget{}, fmt.Errorf("month %q: use YYYY-MM", m)
		}
		b.Year, b.Month = ts.Year(), int(ts.Month())
	}
	return b, nil
}

func validateMonth(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse("2006-01", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM")
	}
	return nil
}

func (a App) newBudgetModal(v *budgetValues, editing bool) *modal {
	category := huh.NewSelect[string]().
		Title("Category").
		Options(categoryOptions(model.Expense)...).
		Value(&v.category)
	if editing {
		category = category.Description("Changing the category creates a new budget")
	}

	form := huh.NewForm(
		huh.NewGroup(
			category,
			huh.NewInput().Title("Monthly limit").Value(&v.limit).Validate(validateAmount),
			huh.NewInput().Title("Spent so far").Value(&v.spent).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				return validateAmount(s)
			}),
			huh.NewInput().Title("Month").Description("YYYY-MM, blank for every month").Value(&v.month).Validate(validateMonth),
		),
	)

	l := a.ledger
	return &modal{
		form:       form,
		cancelable: true,
		onSubmit: func(*App) tea.Cmd {
			return runAction(func(ctx context.Context) (string, error) {
				b, err := v.budget()
				if err != nil {
					return "", err
				}
				saved, err := l.SetBudget(ctx, b)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s budget set to %s", saved.Category, cli.FormatCurrency(saved.Limit)), nil
			})
		},
	}
}

func (a App) renderBudgetsTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	if len(a.budgets) == 0 {
		body := mutedStyle.Render("No budgets yet. Press [a] to set one.")
		return components.ContentCard("Budgets", body, cw)
	}

	const labelW = 20
	noteW := 34
	if a.isCompactLayout() {
		noteW = 24
	}
	barW := max(innerW-2-labelW-1-6-2-noteW, 8)

	var body strings.Builder
	limitTotal, spentTotal := decimal.Zero, decimal.Zero
	for i, bs := range a.budgets {
		b := bs.Budget
		limitTotal = limitTotal.Add(b.Limit)
		spentTotal = spentTotal.Add(b.Spent)

		if i == a.budgetState.cursor {
			body.WriteString(markerStyle.Render("▸ "))
		} else {
			body.WriteString(spaceStyle.Render("  "))
		}

		label := b.Emoji + " " + b.Category
		if b.Month != 0 {
			label += " " + time.Month(b.Month).String()[:3]
		}
		note := fmt.Sprintf("%s / %s", cli.FormatCurrency(b.Spent), cli.FormatCurrency(b.Limit))
		body.WriteString(components.LabeledBar(label, bs.Percentage,
			t.SeverityColor(string(bs.Severity)), labelW, barW, note))
		body.WriteString("\n")

		remStyle := mutedStyle
		if bs.Over {
			remStyle = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		}
		body.WriteString(spaceStyle.Render(strings.Repeat(" ", labelW+3)))
		body.WriteString(remStyle.Render(cli.FormatRemaining(bs.Remaining)))
		body.WriteString("\n")
	}

	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")
	overall := 0.0
	if limitTotal.IsPositive() {
		overall = spentTotal.Div(limitTotal).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	body.WriteString(headerStyle.Render(fmt.Sprintf("Total  %s of %s  (%s)",
		cli.FormatCurrency(spentTotal), cli.FormatCurrency(limitTotal), strconv.FormatFloat(overall, 'f', 1, 64)+"%")))
	body.WriteString("\n\n")
	body.WriteString(mutedStyle.Render("[a] set budget  [e] edit  [x] delete  [j/k] move"))

	title := "Budgets"
	if a.cfg.Budget.DeriveSpent {
		title += " (spent derived from transactions)"
	}
	return components.ContentCard(title, body.String(), cw)
}
