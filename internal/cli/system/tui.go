package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	model := tui.NewModel(ctx.Tracker, ctx.Config.TimerDuration(), ctx.Notifier).
		WithBeforeReset(ctx.PerformAutomaticBackup)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
