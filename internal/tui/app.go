// Package tui provides the interactive Bubble Tea dashboard for rupee.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/currency"
	"github.com/theirongolddev/rupee/internal/events"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
	"github.com/theirongolddev/rupee/internal/tui/components"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Options wires the dashboard to an open ledger.
type Options struct {
	Ledger    *ledger.Ledger
	Converter *currency.Converter
	Config    config.Config
	Logger    zerolog.Logger
	Now       func() time.Time
}

// DataLoadedMsg carries a fresh copy of the ledger.
type DataLoadedMsg struct {
	Data          model.Dataset
	Notifications []model.Notification
	LoadTime      time.Duration
	Err           error
}

// ledgerChangedMsg is sent when the ledger reports a mutation.
type ledgerChangedMsg struct{}

// actionDoneMsg reports the outcome of a user action.
type actionDoneMsg struct {
	flash string
	err   error
}

type clearFlashMsg struct{ seq int }

const (
	tabDashboard = iota
	tabTransactions
	tabBudgets
	tabGoals
	tabAnalytics
	tabConverter
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1
	minContentHeight  = 5

	actionTimeout = 15 * time.Second
	flashDuration = 4 * time.Second
)

// modal is a huh form drawn over the dashboard until it completes.
type modal struct {
	form       *huh.Form
	cancelable bool
	onSubmit   func(a *App) tea.Cmd
	onAbort    func(a *App) tea.Cmd
}

// App is the root Bubble Tea model.
type App struct {
	ledger *ledger.Ledger
	conv   *currency.Converter
	cfg    config.Config
	log    zerolog.Logger
	now    func() time.Time

	changes chan struct{} // ledger mutations, coalesced

	// Data
	data          model.Dataset
	notifications []model.Notification
	loaded        bool
	loadTime      time.Duration
	loadErr       error

	// Derived for the current data
	totals     model.Totals
	byCategory []model.CategoryTotal
	budgets    []model.BudgetStatus
	goals      []model.GoalProgress
	monthly    []model.MonthPoint
	trends     []model.CategoryTrend
	unread     int

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model

	flash    string
	flashErr bool
	flashSeq int

	// Signed-in user; empty until login completes
	user      model.User
	needLogin bool

	// Per-tab state
	txState     transactionsState
	budgetState listState
	goalState   listState
	convState   converterState
	settings    settingsState

	modal *modal
}

// NewApp creates a new TUI app model. The ledger listener is registered here
// so no change is missed between construction and the first render.
func NewApp(opts Options) App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	conv := opts.Converter
	if conv == nil {
		conv, _ = currency.NewConverter(nil)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	user, ok, err := config.LoadSession()
	if err != nil {
		opts.Logger.Warn().Err(err).Msg("reading session failed")
	}

	changes := make(chan struct{}, 1)
	if opts.Ledger != nil {
		opts.Ledger.Subscribe(func(events.Event) {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
	}

	return App{
		ledger:    opts.Ledger,
		conv:      conv,
		cfg:       opts.Config,
		log:       opts.Logger,
		now:       now,
		changes:   changes,
		spinner:   sp,
		user:      user,
		needLogin: !ok,
		txState:   newTransactionsState(),
		convState: newConverterState(conv),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.loadDataCmd(),
		waitForChange(a.changes),
		a.spinner.Tick,
	)
}

func (a *App) recompute() {
	txs := a.data.Transactions
	now := a.now()

	a.totals = pipeline.Totals(txs)
	a.byCategory = pipeline.ExpenseByCategory(txs)

	budgets := a.data.Budgets
	if a.cfg.Budget.DeriveSpent {
		budgets = pipeline.DeriveBudgetSpent(budgets, txs)
	}
	a.budgets = pipeline.BudgetStatuses(budgets)
	a.goals = pipeline.GoalProgresses(a.data.Goals)
	a.monthly = pipeline.MonthlySeries(txs, a.trendMonths(), now)
	a.trends = pipeline.CategoryTrends(txs, now)
	a.unread = pipeline.Unread(a.notifications)

	a.txState.clamp(len(a.visibleTransactions()))
	a.budgetState.clamp(len(a.budgets))
	a.goalState.clamp(len(a.goals))
}

func (a App) trendMonths() int {
	if a.cfg.General.TrendMonths > 0 {
		return a.cfg.General.TrendMonths
	}
	return 5
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.modal != nil {
			a.modal.form = a.modal.form.WithWidth(a.modalWidth()).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.modal != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		if a.modal != nil {
			if key == "esc" && a.modal.cancelable {
				a.modal = nil
				return a, nil
			}
			return a.updateModal(msg)
		}

		// Search mode intercepts all keys when active
		if a.activeTab == tabTransactions && a.txState.searching {
			return a.updateTransactionsSearch(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if next, cmd, handled := a.updateTabKey(msg); handled {
			return next, cmd
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			return a, a.loadDataCmd()
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if len(key) == 1 {
				if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
					a.activeTab = idx
				}
			}
		}
		return a, nil

	case DataLoadedMsg:
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.log.Error().Err(msg.Err).Msg("loading ledger failed")
		} else {
			a.loadErr = nil
			a.data = msg.Data
			a.notifications = msg.Notifications
		}
		first := !a.loaded
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.recompute()

		if first && a.needLogin {
			return a, a.openModal(newLoginModal(&loginValues{mode: loginModeSignIn}, nil))
		}
		return a, nil

	case ledgerChangedMsg:
		return a, tea.Batch(a.loadDataCmd(), waitForChange(a.changes))

	case actionDoneMsg:
		if msg.err != nil {
			a.log.Warn().Err(msg.err).Msg("action failed")
			return a, a.setFlash(msg.err.Error(), true)
		}
		if msg.flash != "" {
			return a, a.setFlash(msg.flash, false)
		}
		return a, nil

	case clearFlashMsg:
		if msg.seq == a.flashSeq {
			a.flash = ""
			a.flashErr = false
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the open form (cursor blinks, etc.)
	if a.modal != nil {
		return a.updateModal(msg)
	}

	return a, nil
}

// updateTabKey gives the active tab first refusal on a key press.
func (a App) updateTabKey(msg tea.KeyMsg) (App, tea.Cmd, bool) {
	switch a.activeTab {
	case tabDashboard:
		return a.updateDashboardKey(msg.String())
	case tabTransactions:
		return a.updateTransactionsKey(msg.String())
	case tabBudgets:
		return a.updateBudgetsKey(msg.String())
	case tabGoals:
		return a.updateGoalsKey(msg.String())
	case tabConverter:
		return a.updateConverterKey(msg)
	case tabSettings:
		return a.updateSettingsKey(msg.String())
	}
	return a, nil, false
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabTransactions:
		a.txState.move(delta, len(a.visibleTransactions()))
	case tabBudgets:
		a.budgetState.move(delta, len(a.budgets))
	case tabGoals:
		a.goalState.move(delta, len(a.goals))
	case tabSettings:
		a.settings.move(delta)
	}
}

// openModal shows m sized to the terminal and starts its form.
func (a *App) openModal(m *modal) tea.Cmd {
	m.form = m.form.WithShowHelp(true).WithTheme(huh.ThemeCharm())
	if a.width > 0 {
		m.form = m.form.WithWidth(a.modalWidth()).WithHeight(a.height)
	}
	a.modal = m
	return m.form.Init()
}

func (a App) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	m := a.modal
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		a.modal = nil
		next := m.onSubmit(&a)
		return a, next
	case huh.StateAborted:
		a.modal = nil
		if m.onAbort == nil {
			return a, nil
		}
		next := m.onAbort(&a)
		return a, next
	}
	return a, cmd
}

func (a App) modalWidth() int {
	return min(a.width-4, 72)
}

func (a *App) setFlash(text string, isErr bool) tea.Cmd {
	a.flashSeq++
	a.flash = text
	a.flashErr = isErr
	seq := a.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return clearFlashMsg{seq: seq} })
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.modal != nil {
		return a.viewModal()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  rupee needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ rupee"))
	b.WriteString(subtitleStyle.Render(" · Personal Finance"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Opening ledger..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewModal() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.modal.form.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d t b g y c s", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move selection"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Transactions", []struct{ key, desc string }{
			{"/", "Search"},
			{"f", "Cycle all / income / expense"},
			{"a e x", "Add / Edit / Delete"},
		}},
		{"Budgets & Goals", []struct{ key, desc string }{
			{"a", "Set budget / Add goal"},
			{"e", "Edit budget"},
			{"Enter", "Contribute to goal"},
			{"x", "Delete"},
		}},
		{"General", []struct{ key, desc string }{
			{"m", "Mark alerts read (dashboard)"},
			{"p s", "Next pair / Swap (converter)"},
			{"r", "Reload"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-14s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	flash, flashErr := a.flash, a.flashErr
	if flash == "" && a.loadErr != nil {
		flash, flashErr = "load failed: "+a.loadErr.Error(), true
	}
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		User:     a.user.Email,
		Backend:  string(a.cfg.Storage.Backend),
		Unread:   a.unread,
		Flash:    flash,
		FlashErr: flashErr,
	})

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabTransactions:
		content = a.renderTransactionsTab(cw, contentH)
	case tabBudgets:
		content = a.renderBudgetsTab(cw)
	case tabGoals:
		content = a.renderGoalsTab(cw)
	case tabAnalytics:
		content = a.renderAnalyticsTab(cw)
	case tabConverter:
		content = a.renderConverterTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

// loadDataCmd snapshots the ledger and materializes alerts in the background.
func (a App) loadDataCmd() tea.Cmd {
	l := a.ledger
	return func() tea.Msg {
		start := time.Now()
		if l == nil {
			return DataLoadedMsg{LoadTime: time.Since(start)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		ns, err := l.Notifications(ctx)
		if err != nil {
			return DataLoadedMsg{LoadTime: time.Since(start), Err: err}
		}
		return DataLoadedMsg{
			Data:          l.Snapshot(),
			Notifications: ns,
			LoadTime:      time.Since(start),
		}
	}
}

// waitForChange blocks until the ledger reports a mutation.
func waitForChange(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return ledgerChangedMsg{}
	}
}

// runAction performs a ledger mutation off the UI goroutine. The ledger
// listener triggers the reload; the result only feeds the status bar.
func runAction(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		flash, err := fn(ctx)
		return actionDoneMsg{flash: flash, err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// listState is a cursor over a list of rows.
type listState struct {
	cursor int
}

func (s *listState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (s *listState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func halfPage(height int) int {
	return max((height-scrollOverhead)/2, minHalfPageScroll)
}

// fit truncates or pads s to exactly w terminal cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) > w {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > w {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	if pad := w - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// fitRight is fit with the padding on the left.
func fitRight(s string, w int) string {
	if lipgloss.Width(s) >= w {
		return fit(s, w)
	}
	return strings.Repeat(" ", w-lipgloss.Width(s)) + s
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color
// so gaps between cards are painted.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

func amountColor(typ model.TxType) lipgloss.Color {
	if typ == model.Income {
		return theme.Active.GreenBright
	}
	return theme.Active.Red
}

func signedAmount(tx model.Transaction) string {
	if tx.Type == model.Income {
		return "+" + cli.FormatCurrency(tx.Amount)
	}
	return "-" + cli.FormatCurrency(tx.Amount)
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
