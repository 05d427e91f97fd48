package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar shows besides the key hints.
type StatusInfo struct {
	User     string
	Backend  string
	Unread   int
	Flash    string
	FlashErr bool
}

// RenderStatusBar renders the bottom status bar across the full width.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.SurfaceHover)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	flashStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.SurfaceHover)
	if info.FlashErr {
		flashStyle = flashStyle.Foreground(t.Red)
	}
	alertStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.SurfaceHover).Bold(true)

	left := base.Render(" ") + keyStyle.Render("?") + base.Render(" help  ") +
		keyStyle.Render("q") + base.Render(" quit")
	if info.Flash != "" {
		left += base.Render("  │ ") + flashStyle.Render(info.Flash)
	}

	var right []string
	if info.Unread > 0 {
		right = append(right, alertStyle.Render(fmt.Sprintf("🔔 %d", info.Unread)))
	}
	if info.User != "" {
		right = append(right, base.Render(info.User))
	}
	if info.Backend != "" {
		right = append(right, base.Render(info.Backend))
	}
	rightStr := strings.Join(right, base.Render(" · ")) + base.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return left + base.Render(strings.Repeat(" ", padding)) + rightStr
}
