package components

import (
	"strings"

	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // byte offset of the shortcut letter in Name
}

// Tabs defines all available tabs in display order.
var Tabs = []Tab{
	{Name: "Dashboard", Key: 'd', KeyPos: 0},
	{Name: "Transactions", Key: 't', KeyPos: 0},
	{Name: "Budgets", Key: 'b', KeyPos: 0},
	{Name: "Goals", Key: 'g', KeyPos: 0},
	{Name: "Analytics", Key: 'y', KeyPos: 4},
	{Name: "Converter", Key: 'c', KeyPos: 0},
	{Name: "Settings", Key: 's', KeyPos: 0},
}

// TabVisualWidth is the rendered width of a tab, including its padding.
// Active and inactive tabs are the same width.
func TabVisualWidth(tab Tab) int {
	return lipgloss.Width(tab.Name) + 2
}

// RenderTabBar renders the tab bar with the given active index, padded to width.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.Accent).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true).
		Underline(true)

	sepStyle := lipgloss.NewStyle().
		Foreground(t.Border).
		Background(t.Surface)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		before := tab.Name[:tab.KeyPos]
		key := tab.Name[tab.KeyPos : tab.KeyPos+1]
		after := tab.Name[tab.KeyPos+1:]
		parts = append(parts, inactiveStyle.Render(" "+before)+
			keyStyle.Render(key)+
			inactiveStyle.Render(after+" "))
	}

	row := strings.Join(parts, sepStyle.Render("│"))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
