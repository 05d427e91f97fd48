package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/currency"
	"github.com/theirongolddev/rupee/internal/logging"
	"github.com/theirongolddev/rupee/internal/tui"
	"github.com/theirongolddev/rupee/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"dash"},
	Short:   "Launch interactive TUI dashboard",
	RunE:    runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor so background fills render even when lipgloss
	// can't detect the terminal profile.
	if !flagNoColor && os.Getenv("NO_COLOR") == "" {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	// The alt screen owns stderr, so logs go to a file.
	log := appLog
	if err := os.MkdirAll(config.DataDir(), 0o750); err == nil {
		logPath := filepath.Join(config.DataDir(), "rupee-tui.log")
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
			defer func() { _ = f.Close() }()
			log = logging.New(logging.Config{Level: appCfg.Log.Level, JSON: true, Output: f})
		}
	}
	appLog = log

	l, closeLedger, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeLedger()

	conv, err := currency.NewConverter(appCfg.Converter.Rates)
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		Ledger:    l,
		Converter: conv,
		Config:    appCfg,
		Logger:    log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
