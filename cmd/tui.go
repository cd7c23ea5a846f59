package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/desertthunder/tripmate/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	app, err := r.deps(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, app.State, app.Router)
	model.Watch(app.Writes)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	detach := model.Attach(p)
	defer detach()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
