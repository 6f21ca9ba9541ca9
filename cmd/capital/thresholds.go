package main

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Veraticus/social-capital/internal/cli"
	"github.com/Veraticus/social-capital/internal/common"
	"github.com/Veraticus/social-capital/internal/engine"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func thresholdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "thresholds",
		Aliases: []string{"rules"},
		Short:   "Inspect and edit the classification thresholds",
		Long: `Categories are checked in priority order: core_power, strategic_goal,
execution_force, prestige_leverage. A contact gets the first category whose
rules all hold, or others when none do.

Every change creates a new version and re-classifies all contacts.`,
		Example: `  # Require a higher energy score for core power
  capital thresholds set core_power yMin 8

  # Drop the accessibility cap from strategic goal
  capital thresholds remove strategic_goal zMax

  # See what changed compared to the defaults
  capital thresholds diff`,
	}

	cmd.AddCommand(showThresholdsCmd())
	cmd.AddCommand(setThresholdCmd("set", "Set a bound on a category", false))
	cmd.AddCommand(setThresholdCmd("add", "Add a bound to a category", true))
	cmd.AddCommand(removeThresholdCmd())
	cmd.AddCommand(resetThresholdsCmd())
	cmd.AddCommand(diffThresholdsCmd())
	cmd.AddCommand(historyThresholdsCmd())
	cmd.AddCommand(exportThresholdsCmd())
	cmd.AddCommand(importThresholdsCmd())

	return cmd
}

// printThresholdChange reports the outcome of a mutation, including the
// warning for categories left without rules.
func printThresholdChange(cmd *cobra.Command, before int, after *model.Thresholds) {
	out := cmd.OutOrStdout()
	if after.Version == before {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No change; thresholds remain at version %d", before)))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Thresholds updated to version %d; contacts re-classified", after.Version)))
	}
	for _, w := range cli.EmptyRuleSetWarnings(after) {
		fmt.Fprintln(out, w)
	}
}

func showThresholdsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active thresholds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			t := eng.Thresholds(ctx)
			out := cmd.OutOrStdout()
			fmt.Fprint(out, cli.RenderThresholds(t))
			for _, w := range cli.EmptyRuleSetWarnings(t) {
				fmt.Fprintln(out, w)
			}
			return nil
		},
	}
}

func setThresholdCmd(use, short string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <category> <key> <value>",
		Short: short,
		Long: short + `.

Keys are xMin, xMax, yMin, yMax, zMin, zMax. Min bounds are inclusive
lower limits and max bounds inclusive upper limits.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", engine.ErrInvalidThresholdValue, args[2])
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			before := eng.Thresholds(ctx).Version
			var after *model.Thresholds
			if add {
				after, err = eng.AddRule(ctx, category, args[1], value)
			} else {
				after, err = eng.UpdateValue(ctx, category, args[1], value)
			}
			if err != nil {
				return err
			}
			printThresholdChange(cmd, before, after)
			return nil
		},
	}
}

func removeThresholdCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <category> <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a bound from a category",
		Long: `Remove a bound from a category. A category whose last bound is removed
matches every contact not claimed by a higher-priority category.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			before := eng.Thresholds(ctx).Version
			after, err := eng.RemoveRule(ctx, category, args[1])
			if err != nil {
				return err
			}
			printThresholdChange(cmd, before, after)
			return nil
		},
	}
}

func resetThresholdsCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default thresholds",
		Long: `Restore the default thresholds as a new version. A checkpoint of the
database is saved first so the previous state can be restored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !yes {
				p := cli.NewPrompter(cmd.InOrStdin(), out)
				ok, err := p.Confirm(ctx, "Reset thresholds to the defaults and re-classify every contact?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Canceled"))
					return nil
				}
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			autoCheckpoint(ctx, out, store, "reset")

			before := eng.Thresholds(ctx).Version
			after, err := eng.Reset(ctx)
			if err != nil {
				return err
			}
			printThresholdChange(cmd, before, after)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// rulesYAML renders only the rules, so diffs ignore version and timestamps.
func rulesYAML(t *model.Thresholds) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]map[model.Category]model.RuleSet{"rules": t.Rules}); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func diffThresholdsCmd() *cobra.Command {
	var against int

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the active thresholds with the defaults or an earlier version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			current := eng.Thresholds(ctx)
			base := model.DefaultThresholds()
			baseLabel := "defaults"
			if against > 0 {
				history, err := eng.History(ctx, 0)
				if err != nil {
					return err
				}
				base = nil
				for i := range history {
					if history[i].Version == against {
						base = &history[i]
						break
					}
				}
				if base == nil {
					return fmt.Errorf("%w: version %d", common.ErrNotFound, against)
				}
				baseLabel = fmt.Sprintf("version %d", against)
			}

			before, err := rulesYAML(base)
			if err != nil {
				return err
			}
			after, err := rulesYAML(current)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			diff := cli.RenderLineDiff(before, after)
			if diff == "" {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Version %d matches the %s", current.Version, baseLabel)))
				return nil
			}
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("--- %s\n+++ version %d", baseLabel, current.Version)))
			fmt.Fprint(out, diff)
			return nil
		},
	}

	cmd.Flags().IntVar(&against, "against", 0, "Compare with this history version instead of the defaults")

	return cmd
}

func historyThresholdsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List threshold versions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			history, err := eng.History(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderHistory(history))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum versions to show (0 for all)")

	return cmd
}

func exportThresholdsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active thresholds to YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			return writeYAML(output, cmd.OutOrStdout(), eng.Thresholds(ctx))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func importThresholdsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml|->",
		Short: "Replace the active thresholds from YAML",
		Long: `Replace every rule with the ones in a document written by
'capital thresholds export'. The version in the file is ignored; the import
becomes the next version.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var in model.Thresholds
			if err := readYAML(args[0], cmd.InOrStdin(), &in); err != nil {
				return err
			}
			if in.Rules == nil {
				return fmt.Errorf("%w: document has no rules section", common.ErrInvalidConfig)
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			before := eng.Thresholds(ctx).Version
			after, err := eng.Replace(ctx, &in)
			if err != nil {
				return err
			}
			printThresholdChange(cmd, before, after)
			return nil
		},
	}
}
