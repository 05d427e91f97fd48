package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// transactionsState holds the transactions tab state.
type transactionsState struct {
	cursor int

	filter      model.TypeFilter
	searching   bool
	searchInput textinput.Model
	searchQuery string
}

func newTransactionsState() transactionsState {
	return transactionsState{filter: model.FilterAll, searchInput: newSearchInput()}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "description or category"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (s *transactionsState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (s *transactionsState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// visibleTransactions applies the search query and type filter.
func (a App) visibleTransactions() []model.Transaction {
	return pipeline.FilterTransactions(a.data.Transactions, a.txState.searchQuery, a.txState.filter)
}

func (a App) selectedTransaction() (model.Transaction, bool) {
	txs := a.visibleTransactions()
	if a.txState.cursor < 0 || a.txState.cursor >= len(txs) {
		return model.Transaction{}, false
	}
	return txs[a.txState.cursor], true
}

func (a App) updateTransactionsKey(key string) (App, tea.Cmd, bool) {
	n := len(a.visibleTransactions())

	switch key {
	case "/":
		a.txState.searching = true
		a.txState.searchInput = newSearchInput()
		a.txState.searchInput.SetValue(a.txState.searchQuery)
		a.txState.searchInput.Focus()
		return a, a.txState.searchInput.Cursor.BlinkCmd(), true
	case "f":
		a.txState.filter = a.txState.filter.Next()
		a.txState.cursor = 0
		return a, nil, true
	case "esc":
		if a.txState.searchQuery == "" {
			return a, nil, false
		}
		a.txState.searchQuery = ""
		a.txState.cursor = 0
		return a, nil, true
	case "j", "down":
		a.txState.move(1, n)
		return a, nil, true
	case "k", "up":
		a.txState.move(-1, n)
		return a, nil, true
	case "home":
		a.txState.cursor = 0
		return a, nil, true
	case "end":
		a.txState.cursor = n - 1
		a.txState.clamp(n)
		return a, nil, true
	case "ctrl+d":
		a.txState.move(halfPage(a.height), n)
		return a, nil, true
	case "ctrl+u":
		a.txState.move(-halfPage(a.height), n)
		return a, nil, true
	case "a":
		if a.ledger == nil {
			return a, nil, false
		}
		v := &txValues{typ: string(model.Expense), date: model.DateOf(a.now()).String()}
		return a, a.openModal(a.newTransactionModal(v, "")), true
	case "e", "enter":
		tx, ok := a.selectedTransaction()
		if !ok || a.ledger == nil {
			return a, nil, false
		}
		return a, a.openModal(a.newTransactionModal(txValuesOf(tx), tx.ID)), true
	case "x", "delete":
		tx, ok := a.selectedTransaction()
		if !ok || a.ledger == nil {
			return a, nil, false
		}
		return a, a.openModal(a.newDeleteTransactionModal(tx)), true
	}
	return a, nil, false
}

// updateTransactionsSearch handles key events while in search mode.
func (a App) updateTransactionsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.txState.searchQuery = strings.TrimSpace(a.txState.searchInput.Value())
		a.txState.searching = false
		a.txState.cursor = 0
		return a, nil
	case "esc":
		a.txState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.txState.searchInput, cmd = a.txState.searchInput.Update(msg)
	return a, cmd
}

// ─── Forms ──────────────────────────────────────────────────────

// txValues backs the add/edit form. Amount and date stay strings so the
// inputs can validate them as typed.
type txValues struct {
	typ         string
	amount      string
	category    string
	description string
	date        string
	emoji       string
	notes       string
	recurring   bool
}

func txValuesOf(tx model.Transaction) *txValues {
	return &txValues{
		typ:         string(tx.Type),
		amount:      tx.Amount.String(),
		category:    tx.Category,
		description: tx.Description,
		date:        tx.Date.String(),
		emoji:       tx.Emoji,
		notes:       tx.Notes,
		recurring:   tx.Recurring,
	}
}

func (v *txValues) transaction(id string) (model.Transaction, error) {
	typ, err := model.ParseTxType(v.typ)
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := parseAmount(v.amount)
	if err != nil {
		return model.Transaction{}, err
	}
	date, err := model.ParseDate(v.date)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		ID:          id,
		Type:        typ,
		Amount:      amount,
		Category:    v.category,
		Description: strings.TrimSpace(v.description),
		Date:        date,
		Emoji:       strings.TrimSpace(v.emoji),
		Notes:       strings.TrimSpace(v.notes),
		Recurring:   v.recurring,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.New("enter a number, e.g. 250 or 99.50")
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("amount cannot be negative")
	}
	return d, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}

func validateDate(s string) error {
	if _, err := model.ParseDate(s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func categoryOptions(typ model.TxType) []huh.Option[string] {
	cats := model.Categories(typ)
	opts := make([]huh.Option[string], 0, len(cats))
	for _, c := range cats {
		opts = append(opts, huh.NewOption(c.Emoji+" "+c.Name, c.Name))
	}
	return opts
}

// newTransactionModal adds a transaction when id is empty and edits it otherwise.
func (a App) newTransactionModal(v *txValues, id string) *modal {
	title := "Add Transaction"
	if id != "" {
		title = "Edit Transaction"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(
					huh.NewOption("Expense", string(model.Expense)),
					huh.NewOption("Income", string(model.Income)),
				).
				Value(&v.typ),
			huh.NewInput().
				Title("Amount").
				Placeholder("0.00").
				Value(&v.amount).
				Validate(validateAmount),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				OptionsFunc(func() []huh.Option[string] {
					return categoryOptions(model.TxType(v.typ))
				}, &v.typ).
				Value(&v.category),
			huh.NewInput().
				Title("Description").
				Value(&v.description),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&v.date).
				Validate(validateDate),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Emoji").
				Description("Leave blank to use the category's").
				CharLimit(8).
				Value(&v.emoji),
			huh.NewText().
				Title("Notes").
				Lines(3).
				Value(&v.notes),
			huh.NewConfirm().
				Title("Recurring?").
				Value(&v.recurring),
		),
	)

	l := a.ledger
	return &modal{
		form:       form,
		cancelable: true,
		onSubmit: func(*App) tea.Cmd {
			return runAction(func(ctx context.Context) (string, error) {
				tx, err := v.transaction(id)
				if err != nil {
					return "", err
				}
				if id == "" {
					saved, err := l.AddTransaction(ctx, tx)
					if err != nil {
						return "", err
					}
					return fmt.Sprintf("Added %s %s", saved.Description, cli.FormatCurrency(saved.Amount)), nil
				}
				if _, err := l.UpdateTransaction(ctx, tx); err != nil {
					return "", err
				}
				return "Transaction updated", nil
			})
		},
	}
}

func (a App) newDeleteTransactionModal(tx model.Transaction) *modal {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s %s?", tx.Description, cli.FormatCurrency(tx.Amount))).
				Description(fmt.Sprintf("%s · %s · %s", tx.Category, tx.Type, cli.FormatDate(tx.Date))).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed),
		),
	)

	l := a.ledger
	return &modal{
		form:       form,
		cancelable: true,
		onSubmit: func(*App) tea.Cmd {
			if !confirmed {
				return nil
			}
			return runAction(func(ctx context.Context) (string, error) {
				if err := l.DeleteTransaction(ctx, tx.ID); err != nil {
					return "", err
				}
				return "Transaction deleted", nil
			})
		},
	}
}

// ─── Rendering ──────────────────────────────────────────────────

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active
	ts := a.txState
	txs := a.visibleTransactions()
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pillStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pillActiveStyle := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true)

	var body strings.Builder

	// Filter pills + search
	for _, f := range []model.TypeFilter{model.FilterAll, model.FilterIncome, model.FilterExpense} {
		label := " " + strings.ToUpper(string(f[:1])) + string(f[1:]) + " "
		if f == ts.filter {
			body.WriteString(pillActiveStyle.Render(label))
		} else {
			body.WriteString(pillStyle.Render(label))
		}
		body.WriteString(pillStyle.Render(" "))
	}
	switch {
	case ts.searching:
		body.WriteString(pillStyle.Render(" "))
		body.WriteString(ts.searchInput.View())
	case ts.searchQuery != "":
		body.WriteString(mutedStyle.Render(fmt.Sprintf(" search: %q  [esc] clear", ts.searchQuery)))
	}
	body.WriteString("\n\n")

	const dateW, typeW, amountW = 11, 8, 14
	catW := 14
	descW := innerW - dateW - typeW - amountW - catW - 4
	if a.isCompactLayout() {
		catW = 0
		descW = innerW - dateW - typeW - amountW - 3
	}

	header := fit("Date", dateW) + " " + fit("Description", descW) + " "
	if catW > 0 {
		header += fit("Category", catW) + " "
	}
	header += fit("Type", typeW) + " " + fitRight("Amount", amountW)
	body.WriteString(headerStyle.Render(header))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n")

	if len(txs) == 0 {
		msg := "No transactions yet. Press [a] to add one."
		if ts.searchQuery != "" || ts.filter != model.FilterAll {
			msg = "No transactions match the current filter."
		}
		body.WriteString(mutedStyle.Render(msg))
		return components.ContentCard(fmt.Sprintf("Transactions (%d)", 0), body.String(), cw)
	}

	visible := max(h-10, 3) // card border, pills, header, detail and hints
	offset := 0
	if ts.cursor >= visible {
		offset = ts.cursor - visible + 1
	}
	end := min(offset+visible, len(txs))

	for i := offset; i < end; i++ {
		tx := txs[i]
		style := rowStyle
		if i == ts.cursor {
			style = selectedStyle
		}
		amtStyle := style.Foreground(amountColor(tx.Type))

		line := fit(tx.Date.Format("02 Jan 06"), dateW) + " " + fit(tx.Emoji+" "+tx.Description, descW) + " "
		if catW > 0 {
			line += fit(tx.Category, catW) + " "
		}
		line += fit(string(tx.Type), typeW) + " "
		body.WriteString(style.Render(line))
		body.WriteString(amtStyle.Render(fitRight(signedAmount(tx), amountW)))
		body.WriteString("\n")
	}

	// Detail line for the selection
	if sel, ok := a.selectedTransaction(); ok {
		body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
		body.WriteString("\n")
		detail := fmt.Sprintf("%s · %s", shortID(sel.ID), sel.Category)
		if sel.Recurring {
			detail += " · recurring"
		}
		if sel.Notes != "" {
			detail += " · " + sel.Notes
		}
		body.WriteString(mutedStyle.Render(fit(detail, innerW)))
		body.WriteString("\n")
	}

	body.WriteString(mutedStyle.Render("[/] search  [f] filter  [a] add  [e] edit  [x] delete  [j/k] move"))

	title := fmt.Sprintf("Transactions (%d of %d)", len(txs), len(a.data.Transactions))
	return components.ContentCard(title, body.String(), cw)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
