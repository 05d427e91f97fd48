package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/currency"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// converterState holds the converter tab state. The amount input keeps
// focus while the tab is visible; only numeric keys reach it.
type converterState struct {
	input textinput.Model
	pairs []currency.Quote
	pair  int
}

func newConverterState(conv *currency.Converter) converterState {
	q := currency.DefaultQuote()

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 18
	ti.Width = 20
	ti.SetValue(q.Amount.String())
	ti.Focus()

	var pairs []currency.Quote
	start := 0
	for _, from := range conv.Codes() {
		for _, to := range conv.Codes() {
			if from == to {
				continue
			}
			if from == q.From && to == q.To {
				start = len(pairs)
			}
			pairs = append(pairs, currency.Quote{From: from, To: to})
		}
	}
	return converterState{input: ti, pairs: pairs, pair: start}
}

// quote is the current pair with the typed amount. A blank or malformed
// amount converts as zero.
func (s converterState) quote() currency.Quote {
	q := currency.DefaultQuote()
	if len(s.pairs) > 0 {
		q.From, q.To = s.pairs[s.pair].From, s.pairs[s.pair].To
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(s.input.Value()))
	if err != nil {
		amount = decimal.Zero
	}
	q.Amount = amount
	return q
}

func (s *converterState) cycle(delta int) {
	if len(s.pairs) == 0 {
		return
	}
	s.pair = (s.pair + delta + len(s.pairs)) % len(s.pairs)
}

func (s *converterState) swap() {
	swapped := s.quote().Swap()
	for i, p := range s.pairs {
		if p.From == swapped.From && p.To == swapped.To {
			s.pair = i
			return
		}
	}
}

func isAmountKey(key string) bool {
	switch key {
	case "backspace", "delete", "ctrl+h", "home", "end":
		return true
	case ".":
		return true
	}
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}

func (a App) updateConverterKey(msg tea.KeyMsg) (App, tea.Cmd, bool) {
	key := msg.String()
	switch {
	case key == "s":
		a.convState.swap()
		return a, nil, true
	case key == "p" || key == "down":
		a.convState.cycle(1)
		return a, nil, true
	case key == "P" || key == "up":
		a.convState.cycle(-1)
		return a, nil, true
	case key == "esc":
		a.convState.input.SetValue("")
		return a, nil, true
	case isAmountKey(key):
		if key == "." && strings.Contains(a.convState.input.Value(), ".") {
			return a, nil, true
		}
		var cmd tea.Cmd
		a.convState.input, cmd = a.convState.input.Update(msg)
		return a, cmd, true
	}
	return a, nil, false
}

func (a App) renderConverterTab(cw int) string {
	t := theme.Active
	q := a.convState.quote()
	innerW := components.CardInnerWidth(cw)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	inputStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	codeStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	resultStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	var body strings.Builder
	body.WriteString(labelStyle.Render("Amount  "))
	body.WriteString(inputStyle.Render(a.convState.input.View()))
	body.WriteString(labelStyle.Render("  "))
	body.WriteString(codeStyle.Render(q.From))
	body.WriteString(labelStyle.Render("  →  "))
	body.WriteString(codeStyle.Render(q.To))
	body.WriteString("\n\n")

	result, err := a.conv.Convert(q.Amount, q.From, q.To)
	if err != nil {
		body.WriteString(errStyle.Render(err.Error()))
	} else {
		body.WriteString(resultStyle.Render(fmt.Sprintf("%s %s = %s %s",
			currency.SymbolFor(q.From)+q.Amount.StringFixed(2), q.From,
			currency.SymbolFor(q.To)+result.StringFixed(2), q.To)))
		if rate, err := a.conv.Rate(q.From, q.To); err == nil {
			body.WriteString("\n")
			body.WriteString(labelStyle.Render(fmt.Sprintf("1 %s = %s %s", q.From, rate.Round(4).String(), q.To)))
		}
	}
	body.WriteString("\n\n")
	body.WriteString(labelStyle.Render("[0-9 .] amount  [p/P] next/prev pair  [s] swap  [esc] clear"))

	// Same amount into every other currency
	var table strings.Builder
	for _, code := range a.conv.Codes() {
		if code == q.From {
			continue
		}
		v, err := a.conv.Convert(q.Amount, q.From, code)
		if err != nil {
			continue
		}
		line := fit(code, 6) + fitRight(currency.SymbolFor(code)+v.StringFixed(2), 18)
		if code == q.To {
			table.WriteString(resultStyle.Render(line))
		} else {
			table.WriteString(rowStyle.Render(line))
		}
		table.WriteString("\n")
	}

	converter := components.ContentCard("Currency Converter", body.String(), cw)
	if innerW < 40 {
		return converter
	}
	return converter + "\n" + components.ContentCard(
		fmt.Sprintf("%s %s in other currencies", q.Amount.String(), q.From),
		strings.TrimRight(table.String(), "\n"), cw)
}
