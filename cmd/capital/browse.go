package main

import (
	"os"

	"github.com/Veraticus/social-capital/internal/common"
	"github.com/Veraticus/social-capital/internal/config"
	"github.com/Veraticus/social-capital/internal/tui"
	"github.com/Veraticus/social-capital/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse contacts, insights, and thresholds interactively",
		Long: `Open a full-screen browser with three tabs: contacts (searchable, press
Enter to see why a contact landed in its category), the dashboard, and the
active thresholds.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !isTerminal(os.Stdout) {
				return common.NewUserError("browse needs an interactive terminal; try 'capital contacts list'", nil)
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			return tui.Run(ctx,
				tui.WithSource(eng),
				tui.WithTheme(themes.GetTheme(settings.Theme)),
			)
		},
	}

	cmd.Flags().String("theme", "default", "Color theme (default, catppuccin-mocha)")
	_ = viper.BindPFlag(config.KeyTheme, cmd.Flags().Lookup("theme"))

	return cmd
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
