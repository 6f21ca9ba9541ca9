package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/social-capital/internal/cli"
	"github.com/Veraticus/social-capital/internal/common"
	"github.com/Veraticus/social-capital/internal/engine"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var errAmbiguousContact = errors.New("more than one contact matches")

// contactDocument is the YAML layout used by contacts import and export.
type contactDocument struct {
	Contacts []model.Contact `yaml:"contacts"`
}

type importDocument struct {
	Contacts []engine.ContactInput `yaml:"contacts"`
}

func contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage the people in your network",
		Long: `Add, list, inspect, update, and delete contacts.

Each contact is scored from 0 to 10 on three axes:
  x  value relevance   how much they matter to where you are going
  y  energy            how much energy the relationship gives you
  z  accessibility     how easily you can reach them

Categories are derived from the scores and the active thresholds.`,
		Example: `  # Add a contact
  capital contacts add --name "Ada" --x 8 --y 7 --z 9 --tag growth_engine

  # Explain why a contact landed in its category
  capital contacts show ada --explain`,
	}

	cmd.AddCommand(addContactCmd())
	cmd.AddCommand(listContactsCmd())
	cmd.AddCommand(showContactCmd())
	cmd.AddCommand(updateContactCmd())
	cmd.AddCommand(deleteContactCmd())
	cmd.AddCommand(importContactsCmd())
	cmd.AddCommand(exportContactsCmd())

	return cmd
}

// contactFlags registers the editable contact fields on flags.
func contactFlags(flags *pflag.FlagSet) {
	flags.String("name", "", "Contact name")
	flags.Float64("x", 0, "Value relevance score (0-10)")
	flags.Float64("y", 0, "Energy score (0-10)")
	flags.Float64("z", 0, "Accessibility score (0-10)")
	flags.String("note", "", "Free-form note")
	flags.String("provide", "", "Value you provide to them")
	flags.String("receive", "", "Value you receive from them")
	flags.StringSlice("tag", nil, "Tag id (repeatable, see 'capital tags')")
}

// applyContactFlags overwrites fields of in with every flag the user set.
func applyContactFlags(flags *pflag.FlagSet, in *engine.ContactInput) {
	if flags.Changed("name") {
		in.Name, _ = flags.GetString("name")
	}
	if flags.Changed("x") {
		in.Score.X, _ = flags.GetFloat64("x")
	}
	if flags.Changed("y") {
		in.Score.Y, _ = flags.GetFloat64("y")
	}
	if flags.Changed("z") {
		in.Score.Z, _ = flags.GetFloat64("z")
	}
	if flags.Changed("note") {
		in.Note, _ = flags.GetString("note")
	}
	if flags.Changed("provide") {
		in.ValueProvide, _ = flags.GetString("provide")
	}
	if flags.Changed("receive") {
		in.ValueReceive, _ = flags.GetString("receive")
	}
	if flags.Changed("tag") {
		in.Tags, _ = flags.GetStringSlice("tag")
	}
}

// promptContact asks for any required field the flags left unset.
func promptContact(ctx context.Context, cmd *cobra.Command, in *engine.ContactInput) error {
	p := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	flags := cmd.Flags()

	var err error
	if !flags.Changed("name") {
		if in.Name, err = p.Ask(ctx, "Name", in.Name); err != nil {
			return err
		}
	}
	if !flags.Changed("x") {
		if in.Score.X, err = p.AskScore(ctx, "Value relevance (x)", in.Score.X); err != nil {
			return err
		}
	}
	if !flags.Changed("y") {
		if in.Score.Y, err = p.AskScore(ctx, "Energy (y)", in.Score.Y); err != nil {
			return err
		}
	}
	if !flags.Changed("z") {
		if in.Score.Z, err = p.AskScore(ctx, "Accessibility (z)", in.Score.Z); err != nil {
			return err
		}
	}
	return nil
}

func addContactCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Long:  `Add a contact and classify it against the active thresholds.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var in engine.ContactInput
			applyContactFlags(cmd.Flags(), &in)
			if interactive {
				if err := promptContact(ctx, cmd, &in); err != nil {
					return err
				}
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			c, err := eng.AddContact(ctx, in)
			if err != nil {
				return fmt.Errorf("failed to add contact: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %s as %s", c.Name, c.Category.Info().Label)))
			fmt.Fprintln(out, cli.SubtleStyle.Render("id: "+c.ID))
			return nil
		},
	}

	contactFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for name and scores not given as flags")

	return cmd
}

func listContactsCmd() *cobra.Command {
	var (
		category string
		tag      string
		sortBy   string
		format   string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var filter model.Category
			if category != "" {
				c, err := parseCategoryOrOthers(category)
				if err != nil {
					return err
				}
				filter = c
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			contacts, err := eng.Contacts(ctx)
			if err != nil {
				return err
			}

			filtered := contacts[:0]
			for _, c := range contacts {
				if filter != "" && c.Category != filter {
					continue
				}
				if tag != "" && !c.HasTag(tag) {
					continue
				}
				filtered = append(filtered, c)
			}
			if err := sortContacts(filtered, sortBy); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "table":
				fmt.Fprintln(out, cli.RenderContactTable(filtered))
			case "yaml":
				return writeYAML("", out, contactDocument{Contacts: filtered})
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(filtered)
			default:
				return fmt.Errorf("%w: unknown format %q (want table, yaml, or json)", common.ErrInvalidConfig, format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only contacts in this category (e.g. core_power, others)")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Only contacts with this tag")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "created", "Sort order: created, name, x, y, z")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, yaml, json")

	return cmd
}

// parseCategoryOrOthers is parseCategory that also accepts the fallback.
func parseCategoryOrOthers(s string) (model.Category, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(model.CategoryOthers)) {
		return model.CategoryOthers, nil
	}
	return parseCategory(s)
}

func sortContacts(contacts []model.Contact, by string) error {
	var less func(a, b model.Contact) bool
	switch by {
	case "", "created":
		return nil
	case "name":
		less = func(a, b model.Contact) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "x":
		less = func(a, b model.Contact) bool { return a.Score.X > b.Score.X }
	case "y":
		less = func(a, b model.Contact) bool { return a.Score.Y > b.Score.Y }
	case "z":
		less = func(a, b model.Contact) bool { return a.Score.Z > b.Score.Z }
	default:
		return fmt.Errorf("%w: unknown sort %q", common.ErrInvalidConfig, by)
	}
	sort.SliceStable(contacts, func(i, j int) bool { return less(contacts[i], contacts[j]) })
	return nil
}

// resolveContact finds a contact by exact id, then unique id prefix, then
// case-insensitive name.
func resolveContact(ctx context.Context, eng *engine.Engine, ref string) (*model.Contact, error) {
	if c, err := eng.Contact(ctx, ref); err == nil {
		return c, nil
	} else if !errors.Is(err, storage.ErrContactNotFound) {
		return nil, err
	}

	contacts, err := eng.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	return matchContact(contacts, ref)
}

// matchContact applies the prefix and name stages of resolveContact.
// A stage with several hits is an error naming every candidate.
func matchContact(contacts []model.Contact, ref string) (*model.Contact, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", storage.ErrContactNotFound)
	}

	stages := []func(model.Contact) bool{
		func(c model.Contact) bool { return strings.HasPrefix(c.ID, ref) },
		func(c model.Contact) bool { return strings.EqualFold(c.Name, ref) },
	}
	for _, match := range stages {
		var hits []model.Contact
		for _, c := range contacts {
			if match(c) {
				hits = append(hits, c)
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return &hits[0], nil
		default:
			return nil, fmt.Errorf("%w %q: %s", errAmbiguousContact, ref, describeCandidates(hits))
		}
	}
	return nil, fmt.Errorf("%w: %q", storage.ErrContactNotFound, ref)
}

func describeCandidates(contacts []model.Contact) string {
	parts := make([]string, len(contacts))
	for i, c := range contacts {
		parts[i] = fmt.Sprintf("%s (%s)", c.ID, c.Name)
	}
	return strings.Join(parts, ", ")
}

func showContactCmd() *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "show <id-or-name>",
		Short: "Show a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			c, err := resolveContact(ctx, eng, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, cli.RenderContact(*c, eng.Catalog()))
			if explain {
				_, evals, err := eng.Explain(ctx, c.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, cli.RenderExplanation(*c, evals))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Show how each category's rules evaluated")

	return cmd
}

func updateContactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id-or-name>",
		Short: "Update a contact",
		Long:  `Change any of a contact's fields. Fields not given as flags are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			existing, err := resolveContact(ctx, eng, args[0])
			if err != nil {
				return err
			}

			in := engine.InputFrom(*existing)
			applyContactFlags(cmd.Flags(), &in)

			updated, err := eng.UpdateContact(ctx, existing.ID, in)
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Updated %s", updated.Name)
			if updated.Category != existing.Category {
				msg += fmt.Sprintf(": %s → %s", existing.Category.Info().Label, updated.Category.Info().Label)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}

	contactFlags(cmd.Flags())

	return cmd
}

func deleteContactCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id-or-name>",
		Aliases: []string{"rm"},
		Short:   "Delete a contact",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			c, err := resolveContact(ctx, eng, args[0])
			if err != nil {
				return err
			}

			if !yes {
				p := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				ok, err := p.Confirm(ctx, fmt.Sprintf("Delete %s?", c.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Canceled"))
					return nil
				}
			}

			if err := eng.DeleteContact(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+c.Name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func importContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml|->",
		Short: "Import contacts from YAML",
		Long: `Import contacts from a YAML document with a top-level "contacts" list.
The file written by 'capital contacts export' is accepted; ids and
categories in it are ignored and every contact is added as new.

The import is all or nothing: one invalid entry rejects the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var doc importDocument
			if err := readYAML(args[0], cmd.InOrStdin(), &doc); err != nil {
				return err
			}
			if len(doc.Contacts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No contacts found in input"))
				return nil
			}

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			out := cmd.OutOrStdout()
			autoCheckpoint(ctx, out, store, "import")

			bar := newProgressBar(cmd.ErrOrStderr(), len(doc.Contacts), "Importing contacts...")
			imported, err := eng.ImportContacts(ctx, doc.Contacts, progressFunc(bar))
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d contacts", len(imported))))
			return nil
		},
	}

	return cmd
}

func exportContactsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export contacts to YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			contacts, err := eng.Contacts(ctx)
			if err != nil {
				return err
			}
			if err := writeYAML(output, cmd.OutOrStdout(), contactDocument{Contacts: contacts}); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d contacts to %s", len(contacts), output)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
