package main

import (
	"fmt"

	"github.com/Veraticus/social-capital/internal/cli"
	"github.com/spf13/cobra"
)

func reclassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reclassify",
		Short: "Re-run classification over every contact",
		Long: `Classify every stored contact against the active thresholds and persist
any category that changed. Threshold edits already do this; run it after
restoring a checkpoint or editing the database by hand.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx, stop := handler.HandleInterrupts(cmd.Context(), "Reclassification", "Run 'capital reclassify' to start again.")
			defer stop()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			contacts, err := eng.Contacts(ctx)
			if err != nil {
				return err
			}

			bar := newProgressBar(cmd.ErrOrStderr(), len(contacts), "Reclassifying contacts...")
			changed, err := eng.Reclassify(ctx, progressFunc(bar))
			if err != nil {
				if handler.WasInterrupted() {
					return nil
				}
				return err
			}

			out := cmd.OutOrStdout()
			if len(changed) == 0 {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("All %d contacts already match their categories", len(contacts))))
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Updated %d of %d contacts", len(changed), len(contacts))))
			for _, c := range changed {
				fmt.Fprintf(out, "  %s → %s\n", c.Name, cli.CategoryLabel(c.Category))
			}
			return nil
		},
	}
}
