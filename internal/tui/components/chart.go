package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders one block glyph per value, scaled to the largest.
// Negative values draw as the lowest block.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	glyphs := make([]rune, len(values))
	for i, v := range values {
		idx := 1 + int(math.Max(v, 0)/peak*7)
		glyphs[i] = eighths[min(idx, 8)]
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(string(glyphs))
}

// Series is one colored set of values in a ColumnChart. Values line up with
// the chart labels; missing values plot as zero.
type Series struct {
	Name   string
	Values []float64
	Color  lipgloss.Color
}

// ColumnChart draws grouped vertical bars, one group per label and one bar
// per series, over a y axis rounded up to a tick boundary. A legend line
// follows the month labels. Too narrow a width degrades to a sparkline of
// the first series.
func ColumnChart(labels []string, series []Series, width, height int) string {
	n := len(labels)
	if n == 0 || len(series) == 0 {
		return ""
	}
	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	peak := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			peak = max(peak, v)
		}
	}
	if peak <= 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	ceiling := math.Ceil(peak/step) * step

	rows := max(height-3, 3) // axis, labels and legend take three lines
	yW := max(len(formatChartLabel(ceiling)), 3) + 1

	const groupGap = 2
	plotW := width - yW - 1
	groupW := (plotW - (n-1)*groupGap) / n
	if groupW < len(series) {
		return Sparkline(series[0].Values, series[0].Color)
	}
	barW := min(groupW/len(series), 4)
	groupW = barW * len(series)
	axisLen := n*groupW + (n-1)*groupGap

	value := func(s Series, i int) float64 {
		if i < len(s.Values) {
			return math.Max(s.Values[i], 0)
		}
		return 0
	}

	var b strings.Builder
	for r := rows; r >= 1; r-- {
		top := ceiling * float64(r) / float64(rows)
		bottom := ceiling * float64(r-1) / float64(rows)

		label := ""
		switch r {
		case rows:
			label = formatChartLabel(ceiling)
		case (rows + 1) / 2:
			label = formatChartLabel(ceiling / 2)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", yW, label)))

		for i := range labels {
			if i > 0 {
				b.WriteString(bg.Render(strings.Repeat(" ", groupGap)))
			}
			for _, s := range series {
				v := value(s, i)
				cell := ' '
				switch {
				case v >= top:
					cell = '█'
				case v > bottom:
					cell = eighths[max(1, min(8, int((v-bottom)/(top-bottom)*8)))]
				}
				b.WriteString(lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).
					Render(strings.Repeat(string(cell), barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(fmt.Sprintf("%*s└", yW, "0") + strings.Repeat("─", axisLen)))
	b.WriteString("\n")

	var xl strings.Builder
	for i, l := range labels {
		slot := groupW
		if i < n-1 {
			slot += groupGap
		}
		xl.WriteString(fmt.Sprintf("%-*s", slot, truncate(l, slot)))
	}
	b.WriteString(axis.Render(strings.Repeat(" ", yW+1) + xl.String()))
	b.WriteString("\n")

	b.WriteString(bg.Render(strings.Repeat(" ", yW+1)))
	for i, s := range series {
		if i > 0 {
			b.WriteString(bg.Render("   "))
		}
		b.WriteString(lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface).Render("■ "))
		b.WriteString(axis.Render(s.Name))
	}
	return b.String()
}

// HBar is one labeled value of a horizontal bar chart.
type HBar struct {
	Label string
	Value float64
	Note  string // shown after the bar, e.g. a formatted amount
}

// HBarChart renders one bar per row, scaled to the largest value.
func HBarChart(bars []HBar, color lipgloss.Color, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	noteW := 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		noteW = max(noteW, lipgloss.Width(b.Note))
		peak = max(peak, b.Value)
	}
	if labelW > 18 {
		labelW = 18
	}
	if peak == 0 {
		peak = 1
	}

	barW := width - labelW - noteW - 2
	if barW < 4 {
		barW = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, bar := range bars {
		n := int(bar.Value / peak * float64(barW))
		if n < 1 && bar.Value > 0 {
			n = 1
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(bar.Label, labelW))))
		b.WriteString(spaceStyle.Render(" "))
		b.WriteString(barStyle.Render(strings.Repeat("█", n)))
		b.WriteString(spaceStyle.Render(strings.Repeat(" ", barW-n+1)))
		b.WriteString(noteStyle.Render(fmt.Sprintf("%*s", noteW, bar.Note)))
		if i < len(bars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// chartTickStep picks a 1, 2 or 5 times power-of-ten step giving roughly
// five ticks up to maxVal.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	base := math.Pow(10, math.Floor(math.Log10(maxVal/5)))
	for _, m := range []float64{1, 2, 5} {
		if maxVal/(m*base) <= 7.5 {
			return m * base
		}
	}
	return 10 * base
}

// formatChartLabel abbreviates axis values: 2500 -> "2.5k", 3e6 -> "3M".
func formatChartLabel(v float64) string {
	for _, u := range []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "k"}} {
		if v >= u.div {
			return strings.TrimSuffix(fmt.Sprintf("%.1f", v/u.div), ".0") + u.suffix
		}
	}
	if v >= 1 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
