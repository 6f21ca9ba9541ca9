package main

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/social-capital/internal/cli"
	"github.com/Veraticus/social-capital/internal/common"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"insights"},
		Short:   "Summarize the network and show insights",
		Long: `Show category distribution, score averages, and advisory findings such
as missing growth contacts, low diversity, or an energy deficit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			report, err := eng.Dashboard(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				fmt.Fprintln(out, cli.RenderSummary(report.Summary))
				fmt.Fprint(out, cli.RenderFindings(report.Findings))
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report.Findings)
			default:
				return fmt.Errorf("%w: unknown format %q (want table or json)", common.ErrInvalidConfig, format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json (findings only)")

	return cmd
}
