package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/currency"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldCurrency
	settingsFieldBackend
	settingsFieldTrendMonths
	settingsFieldRecentCount
	settingsFieldDeriveSpent
	settingsFieldAccount
	settingsFieldCount // sentinel
)

var (
	trendMonthOptions  = []int{3, 5, 6, 12}
	recentCountOptions = []int{5, 10, 15}
	backendOptions     = []config.Backend{config.BackendSQLite, config.BackendMemory, config.BackendPostgres}
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor int
}

func (s *settingsState) move(delta int) {
	s.cursor = max(0, min(settingsFieldCount-1, s.cursor+delta))
}

func (a App) updateSettingsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.settings.move(1)
		return a, nil, true
	case "k", "up":
		a.settings.move(-1)
		return a, nil, true
	case "enter", " ":
		if a.settings.cursor == settingsFieldAccount {
			return a, a.signOut(), true
		}
		cmd := a.settingsCycle()
		return a, cmd, true
	}
	return a, nil, false
}

func nextInt(opts []int, cur int) int {
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

// settingsCycle advances the selected field to its next value, applies it to
// the running dashboard and persists it. Flag overrides from the current run
// are not written back.
func (a *App) settingsCycle() tea.Cmd {
	fileCfg, err := config.Load()
	if err != nil {
		return a.setFlash("config: "+err.Error(), true)
	}

	flash := ""
	switch a.settings.cursor {
	case settingsFieldTheme:
		next := theme.Next(a.cfg.Appearance.Theme)
		theme.SetActive(next.Name)
		a.cfg.Appearance.Theme = next.Name
		fileCfg.Appearance.Theme = next.Name
		flash = "Theme: " + next.Name

	case settingsFieldCurrency:
		idx := 0
		for i, p := range currency.Presets {
			if p.Code == a.cfg.Currency.Code {
				idx = (i + 1) % len(currency.Presets)
			}
		}
		p := currency.Presets[idx]
		f, err := currency.NewFormatter(p.Locale, p.Code, "")
		if err != nil {
			return a.setFlash(err.Error(), true)
		}
		cli.SetCurrency(f)
		a.cfg.Currency = config.CurrencyConfig{Locale: p.Locale, Code: p.Code}
		fileCfg.Currency = a.cfg.Currency
		flash = "Currency: " + p.Label

	case settingsFieldBackend:
		cur := fileCfg.Storage.Backend
		next := backendOptions[0]
		for i, b := range backendOptions {
			if b == cur {
				next = backendOptions[(i+1)%len(backendOptions)]
			}
		}
		fileCfg.Storage.Backend = next
		flash = fmt.Sprintf("Backend: %s (applies on next start)", next)

	case settingsFieldTrendMonths:
		a.cfg.General.TrendMonths = nextInt(trendMonthOptions, a.trendMonths())
		fileCfg.General.TrendMonths = a.cfg.General.TrendMonths
		flash = fmt.Sprintf("Trend window: %d months", a.cfg.General.TrendMonths)

	case settingsFieldRecentCount:
		a.cfg.General.RecentCount = nextInt(recentCountOptions, a.recentCount())
		fileCfg.General.RecentCount = a.cfg.General.RecentCount
		flash = fmt.Sprintf("Recent transactions: %d", a.cfg.General.RecentCount)

	case settingsFieldDeriveSpent:
		a.cfg.Budget.DeriveSpent = !a.cfg.Budget.DeriveSpent
		fileCfg.Budget.DeriveSpent = a.cfg.Budget.DeriveSpent
		flash = "Derive budget spend: " + strconv.FormatBool(a.cfg.Budget.DeriveSpent)
	}

	a.recompute()

	if err := fileCfg.Validate(); err != nil {
		return a.setFlash(err.Error(), true)
	}
	if err := config.Save(fileCfg); err != nil {
		return a.setFlash("save failed: "+err.Error(), true)
	}
	return a.setFlash(flash+" · saved", false)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	fileCfg, _ := config.Load()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	account := "(signed out)"
	if a.user.Email != "" {
		account = fmt.Sprintf("%s <%s>  · enter to sign out", a.user.Name, a.user.Email)
	}
	backend := string(fileCfg.Storage.Backend)
	if fileCfg.Storage.Backend != a.cfg.Storage.Backend {
		backend += fmt.Sprintf(" (running: %s)", a.cfg.Storage.Backend)
	}

	fields := []struct{ label, value string }{
		{"Theme", a.cfg.Appearance.Theme},
		{"Currency", currency.PresetFor(a.cfg.Currency.Code).Label + " · " + a.cfg.Currency.Locale},
		{"Storage Backend", backend},
		{"Trend Window", fmt.Sprintf("%d months", a.trendMonths())},
		{"Recent Rows", strconv.Itoa(a.recentCount())},
		{"Derive Budget Spend", strconv.FormatBool(a.cfg.Budget.DeriveSpent)},
		{"Account", account},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			used := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if pad := innerW - used; pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}
	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [enter] change"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.ConfigPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Ledger:        ") + valueStyle.Render(ledgerLocation(a.cfg)) + "\n")
	infoBody.WriteString(labelStyle.Render("Transactions:  ") + valueStyle.Render(cli.FormatNumber(int64(len(a.data.Transactions)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:     ") + valueStyle.Render(a.loadTime.Round(time.Microsecond).String()))

	return components.ContentCard("Settings", formBody.String(), cw) + "\n" +
		components.ContentCard("About", infoBody.String(), cw)
}

func ledgerLocation(cfg config.Config) string {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return "in memory (not saved)"
	case config.BackendPostgres:
		return "postgres"
	default:
		return cfg.LedgerPath()
	}
}
