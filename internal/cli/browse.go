package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkkoy/internal/config"
	"github.com/nikbrunner/linkkoy/internal/tui"
)

// maxLogFiles is how many TUI log files are kept.
const maxLogFiles = 10

// runTUI opens the interactive browser. Logs go to a file so they do
// not draw over the screen.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logFile, err := config.SetupLogFile(cfg.LogDir(), maxLogFiles)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat, logFile)
	e, cleanup, err := newEnv(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	s, err := e.currentUser()
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.AppParams{
		Repo:        e.bookmarks,
		UserID:      s.UserID,
		Context:     cmd.Context(),
		UndoTimeout: time.Duration(cfg.UndoTimeout),
		Debounce:    time.Duration(cfg.SearchDebounce),
		Logger:      logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if finalApp, ok := final.(tui.App); ok {
		finalApp.Close()
	}
	if err != nil {
		return fmt.Errorf("while running app: %w", err)
	}
	return nil
}
