package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) updateGoalsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.goalState.move(1, len(a.goals))
		return a, nil, true
	case "k", "up":
		a.goalState.move(-1, len(a.goals))
		return a, nil, true
	}

	if a.ledger == nil {
		return a, nil, false
	}

	switch key {
	case "a":
		return a, a.openModal(a.newGoalModal(&goalValues{current: "0"})), true
	case "enter", "+":
		if len(a.goals) == 0 {
			return a, nil, false
		}
		return a, a.openModal(a.newContributeModal(a.goals[a.goalState.cursor].Goal)), true
	case "x", "delete":
		if len(a.goals) == 0 {
			return a, nil, false
		}
		g := a.goals[a.goalState.cursor].Goal
		l := a.ledger
		confirmed := false
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete the goal %q?", g.Name)).
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
					if err := l.DeleteGoal(ctx, g.ID); err != nil {
						return "", err
					}
					return "Goal deleted", nil
				})
			},
		}), true
	}
	return a, nil, false
}

// goalValues backs the add-goal form.
type goalValues struct {
	name     string
	target   string
	current  string
	deadline string
	emoji    string
}

func (v *goalValues) goal() (model.Goal, error) {
	target, err := parseAmount(v.target)
	if err != nil {
		return model.Goal{}, err
	}
	current := decimal.Zero
	if strings.TrimSpace(v.current) != "" {
		if current, err = parseAmount(v.current); err != nil {
			return model.Goal{}, err
		}
	}
	g := model.Goal{
		Name:    strings.TrimSpace(v.name),
		Target:  target,
		Current: current,
		Emoji:   strings.TrimSpace(v.emoji),
	}
	if d := strings.TrimSpace(v.deadline); d != "" {
		if g.Deadline, err = model.ParseDate(d); err != nil {
			return model.Goal{}, err
		}
	}
	return g, nil
}

func (a App) newGoalModal(v *goalValues) *modal {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New savings goal").
				Placeholder("Emergency Fund").
				Value(&v.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("give the goal a name")
					}
					return nil
				}),
			huh.NewInput().Title("Target amount").Value(&v.target).Validate(validateAmount),
			huh.NewInput().Title("Saved so far").Value(&v.current).Validate(validateAmount),
			huh.NewInput().
				Title("Deadline").
				Placeholder("YYYY-MM-DD").
				Value(&v.deadline).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					return validateDate(s)
				}),
			huh.NewInput().
				Title("Emoji").
				Placeholder(model.DefaultGoalEmoji).
				CharLimit(8).
				Value(&v.emoji),
		),
	)

	l := a.ledger
	return &modal{
		form:       form,
		cancelable: true,
		onSubmit: func(*App) tea.Cmd {
			return runAction(func(ctx context.Context) (string, error) {
				g, err := v.goal()
				if err != nil {
					return "", err
				}
				saved, err := l.AddGoal(ctx, g)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Goal %q added", saved.Name), nil
			})
		},
	}
}

func (a App) newContributeModal(g model.Goal) *modal {
	amount := ""
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Contribute to %s %s", g.Emoji, g.Name)).
				Description(fmt.Sprintf("%s of %s saved", cli.FormatCurrency(g.Current), cli.FormatCurrency(g.Target))).
				Value(&amount).
				Validate(validateAmount),
		),
	)

	l := a.ledger
	return &modal{
		form:       form,
		cancelable: true,
		onSubmit: func(*App) tea.Cmd {
			return runAction(func(ctx context.Context) (string, error) {
				d, err := parseAmount(amount)
				if err != nil {
					return "", err
				}
				updated, err := l.Contribute(ctx, g.ID, d)
				if err != nil {
					return "", err
				}
				if updated.Current.GreaterThanOrEqual(updated.Target) {
					return fmt.Sprintf("🎉 %s reached!", updated.Name), nil
				}
				return fmt.Sprintf("Added %s to %s", cli.FormatCurrency(d), updated.Name), nil
			})
		},
	}
}

func (a App) renderGoalsTab(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	achievedStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	if len(a.goals) == 0 {
		return components.ContentCard("Savings Goals", mutedStyle.Render("No goals yet. Press [a] to add one."), cw)
	}

	noteW := 30
	barW := max(innerW-2-1-6-2-noteW, 8)
	today := model.DateOf(a.now())

	var body strings.Builder
	saved, target := decimal.Zero, decimal.Zero
	for i, gp := range a.goals {
		g := gp.Goal
		saved = saved.Add(g.Current)
		target = target.Add(g.Target)

		marker := spaceStyle.Render("  ")
		if i == a.goalState.cursor {
			marker = markerStyle.Render("▸ ")
		}

		body.WriteString(marker)
		body.WriteString(nameStyle.Render(g.Emoji + " " + g.Name))
		switch {
		case gp.Achieved:
			body.WriteString(achievedStyle.Render("  ✓ achieved"))
		case !g.Deadline.IsZero():
			due := "due " + cli.FormatDate(g.Deadline)
			if g.Deadline.Before(today.Time) {
				due = "overdue since " + cli.FormatDate(g.Deadline)
			}
			body.WriteString(mutedStyle.Render("  " + due))
		}
		body.WriteString("\n")

		color := t.Accent
		if gp.Achieved {
			color = t.GreenBright
		}
		note := fmt.Sprintf("%s of %s", cli.FormatCurrency(g.Current), cli.FormatCurrency(g.Target))
		body.WriteString(spaceStyle.Render("  "))
		body.WriteString(components.LabeledBar("", gp.Percentage, color, 0, barW, note))
		body.WriteString("\n")
		if !gp.Achieved {
			body.WriteString(spaceStyle.Render("  "))
			body.WriteString(mutedStyle.Render(cli.FormatCurrency(gp.Remaining) + " to go"))
			body.WriteString("\n")
		}
		body.WriteString("\n")
	}

	body.WriteString(mutedStyle.Render(fmt.Sprintf("Saved %s of %s across %d goals",
		cli.FormatCurrency(saved), cli.FormatCurrency(target), len(a.goals))))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render("[a] add goal  [enter] contribute  [x] delete  [j/k] move"))

	return components.ContentCard("Savings Goals", body.String(), cw)
}
