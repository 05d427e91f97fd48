package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

// Colors for plain CLI output (Flexoki Dark).
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	incomeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	expenseStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	// RightAlign marks columns to right-align. When nil, every column after
	// the first is right-aligned.
	RightAlign []bool
}

func (t Table) alignRight(col int) bool {
	if t.RightAlign == nil {
		return col > 0
	}
	return col < len(t.RightAlign) && t.RightAlign[col]
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == "---"
}

func padRight(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. A row of exactly {"---"} draws a
// rule, which summary tables use to set off their total line.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	cols := len(t.Headers)
	if cols == 0 {
		cols = len(t.Rows[0])
	}
	widths := t.columnWidths(cols)

	rule := func(left, mid, right string) string {
		segs := make([]string, cols)
		for i, w := range widths {
			segs[i] = strings.Repeat("─", w+2)
		}
		return dimStyle.Render(left+strings.Join(segs, mid)+right) + "\n"
	}
	line := func(cells []string, style lipgloss.Style, align bool) string {
		var b strings.Builder
		b.WriteString(dimStyle.Render("│"))
		for i := range cols {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if align && t.alignRight(i) {
				cell = padLeft(cell, widths[i])
			} else {
				cell = padRight(cell, widths[i])
			}
			b.WriteString(style.Render(" " + cell + " "))
			b.WriteString(dimStyle.Render("│"))
		}
		return b.String() + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, headerStyle, false))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, valueStyle, true))
	}
	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

// columnWidths uses the fixed Widths when set, otherwise the widest cell in
// each column.
func (t Table) columnWidths(cols int) []int {
	widths := make([]int, cols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	measure := func(row []string) {
		for i, cell := range row {
			if i < cols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) {
			measure(row)
		}
	}
	return widths
}

// RenderProgressBar renders a budget or goal bar. pct is clamped to [0,100]
// and the fill is colored by severity.
func RenderProgressBar(pct float64, sev model.Severity, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return SeverityStyle(sev).Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

// SeverityStyle maps budget severity to a foreground color.
func SeverityStyle(sev model.Severity) lipgloss.Style {
	switch sev {
	case model.SeverityDanger:
		return expenseStyle
	case model.SeverityWarning:
		return warnStyle
	default:
		return incomeStyle
	}
}

// RenderAmount colors an amount by transaction direction.
func RenderAmount(typ model.TxType, amount decimal.Decimal) string {
	if typ == model.Income {
		return incomeStyle.Render("+" + FormatCurrency(amount))
	}
	return expenseStyle.Render("-" + FormatCurrency(amount))
}

// RenderMuted renders secondary text.
func RenderMuted(s string) string {
	return mutedStyle.Render(s)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a labelled bar scaled against maxValue.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %s", label)
	}
	barLen := int(value / maxValue * float64(maxWidth))
	if barLen < 0 {
		barLen = 0
	}
	return fmt.Sprintf("  %s %s", label, incomeStyle.Render(strings.Repeat("█", barLen)))
}
