package tui

import (
	"context"

	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/insight"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/tags"
	"github.com/Veraticus/social-capital/internal/tui/themes"
)

// Source is the read side of the engine the browser needs.
type Source interface {
	Catalog() *tags.Catalog
	Contacts(ctx context.Context) ([]model.Contact, error)
	Dashboard(ctx context.Context) (insight.Report, error)
	Thresholds(ctx context.Context) *model.Thresholds
	Explain(ctx context.Context, id string) (*model.Contact, []classification.Evaluation, error)
	Reclassify(ctx context.Context, progress func(done, total int)) ([]model.Contact, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Source   Source
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Width:    80,
		Height:   24,
		ShowHelp: true,
	}
}

// WithSource sets the data source.
func WithSource(s Source) Option {
	return func(c *Config) {
		c.Source = s
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithHelp toggles the help footer.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
