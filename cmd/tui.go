package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/muse/internal/shared"
	"github.com/desertthunder/muse/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for music generation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.manager == nil {
		return fmt.Errorf("%w: generation service not initialized", shared.ErrMissingConfig)
	}
	if r.cache == nil {
		return fmt.Errorf("%w: track cache not initialized", shared.ErrMissingConfig)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/muse-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.manager, r.cache)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
