package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNoSource is returned when Run is called without a data source.
var ErrNoSource = errors.New("tui: data source is required")

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Source == nil {
		return ErrNoSource
	}

	p := tea.NewProgram(newModel(ctx, cfg),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
