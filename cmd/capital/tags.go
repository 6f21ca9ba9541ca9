package main

import (
	"fmt"

	"github.com/Veraticus/social-capital/internal/cli"
	"github.com/spf13/cobra"
)

func tagsCmd() *cobra.Command {
	var top bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tag catalog with usage counts",
		Long: `Tags describe what a relationship gives you. External tags bring in
resources and information; internal tags support your own growth.`,
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
			counts := report.Summary.TagCounts
			out := cmd.OutOrStdout()

			if top {
				catalog := eng.Catalog()
				for _, id := range cli.TagCountsSorted(counts) {
					tag, _ := catalog.Lookup(id)
					fmt.Fprintf(out, "%4d  %-18s %s\n", counts[id], id, tag.Label)
				}
				return nil
			}

			fmt.Fprint(out, cli.RenderTagCatalog(eng.Catalog(), counts))
			if share, ok := report.Summary.ExternalShare(); ok {
				fmt.Fprintf(out, "\nExternal share of tag usage: %.0f%%\n", share*100)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&top, "top", false, "List only used tags, most used first")

	return cmd
}
