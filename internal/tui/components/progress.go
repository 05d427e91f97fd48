package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a block bar with a trailing percentage. pct is a
// fraction in [0,1].
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clampFraction(pct)
	filled := int(pct * float64(width))

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// LabeledBar renders a fixed-width label, a solid bar, the percentage and a
// trailing note. percent is on a 0-100 scale and may exceed 100; the bar
// itself is clamped.
func LabeledBar(label string, percent float64, color lipgloss.Color, labelW, barWidth int, note string) string {
	t := theme.Active

	if barWidth < 4 {
		barWidth = 4
	}
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	label = truncate(label, labelW)
	if pad := labelW - lipgloss.Width(label); pad > 0 {
		label += strings.Repeat(" ", pad)
	}

	out := labelStyle.Render(label) +
		spaceStyle.Render(" ") +
		bar.ViewAs(clampFraction(percent/100)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", percent))
	if note != "" {
		out += spaceStyle.Render("  ") + noteStyle.Render(note)
	}
	return out
}

func clampFraction(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
