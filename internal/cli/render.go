package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/insight"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/storage"
	"github.com/Veraticus/social-capital/internal/tags"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const maxNoteWidth = 32

// FormatScore renders a vector as "x/y/z" with one decimal each.
func FormatScore(v model.ScoreVector) string {
	return fmt.Sprintf("%.1f/%.1f/%.1f", v.X, v.Y, v.Z)
}

// RenderContactTable renders contacts as a bordered table. Category cells
// are colored per category.
func RenderContactTable(contacts []model.Contact) string {
	if len(contacts) == 0 {
		return SubtleStyle.Render("No contacts yet. Add one with: capital contacts add")
	}

	rows := make([][]string, 0, len(contacts))
	cats := make([]model.Category, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{
			shortID(c.ID),
			c.Name,
			FormatScore(c.Score),
			c.Category.Info().Label,
			truncate(c.Note, maxNoteWidth),
		})
		cats = append(cats, c.Category)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == 3 && row >= 0 && row < len(cats) {
				return CategoryStyle(cats[row]).Padding(0, 1)
			}
			return TableCellStyle
		}).
		Headers("ID", "NAME", "X/Y/Z", "CATEGORY", "NOTE").
		Rows(rows...)

	return t.String()
}

// RenderContact renders one contact's full detail.
func RenderContact(c model.Contact, catalog *tags.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", BoldStyle.Render(c.Name), CategoryLabel(c.Category))
	fmt.Fprintf(&b, "%s\n", SubtleStyle.Render(c.Category.Info().Description))
	fmt.Fprintf(&b, "\nID:              %s\n", c.ID)
	fmt.Fprintf(&b, "Value relevance: %.1f\n", c.Score.X)
	fmt.Fprintf(&b, "Energy:          %.1f\n", c.Score.Y)
	fmt.Fprintf(&b, "Accessibility:   %.1f\n", c.Score.Z)
	if c.ValueProvide != "" {
		fmt.Fprintf(&b, "I provide:       %s\n", c.ValueProvide)
	}
	if c.ValueReceive != "" {
		fmt.Fprintf(&b, "I receive:       %s\n", c.ValueReceive)
	}
	if len(c.Tags) > 0 {
		labels := make([]string, 0, len(c.Tags))
		for _, id := range c.Tags {
			if tag, ok := catalog.Lookup(id); ok {
				labels = append(labels, tag.Label)
			} else {
				labels = append(labels, id)
			}
		}
		fmt.Fprintf(&b, "Tags:            %s\n", strings.Join(labels, ", "))
	}
	if c.Note != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Note)
	}
	return b.String()
}

// RenderThresholds renders every configurable category's rules in priority
// order, flagging categories that are absent or match everything.
func RenderThresholds(t *model.Thresholds) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", TitleStyle.Render(fmt.Sprintf("Thresholds (version %d)", t.Version)))
	for i, c := range model.PriorityOrder {
		rs, ok := t.RuleSet(c)
		var rules string
		switch {
		case !ok:
			rules = SubtleStyle.Render("not configured (never matches)")
		case len(rs) == 0:
			rules = WarningStyle.Render("no rules (matches every contact)")
		default:
			parts := make([]string, 0, len(rs))
			for _, p := range rs.Predicates() {
				parts = append(parts, p.String())
			}
			rules = strings.Join(parts, "  ")
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, paddedCategory(c), rules)
	}
	fmt.Fprintf(&b, "   %s %s\n", paddedCategory(model.CategoryOthers), SubtleStyle.Render("fallback"))
	return b.String()
}

// EmptyRuleSetWarnings returns one warning line per category whose rule
// set is empty.
func EmptyRuleSetWarnings(t *model.Thresholds) []string {
	var out []string
	for _, c := range t.EmptyRuleSets() {
		out = append(out, FormatWarning(fmt.Sprintf(
			"%s has no rules left and now matches every contact not claimed by a higher category",
			c.Info().Label)))
	}
	return out
}

// RenderHistory lists configuration versions, newest first.
func RenderHistory(history []model.Thresholds) string {
	if len(history) == 0 {
		return SubtleStyle.Render("No threshold history recorded.")
	}
	rows := make([][]string, 0, len(history))
	for _, h := range history {
		configured := make([]string, 0, len(h.Rules))
		for _, c := range model.PriorityOrder {
			if rs, ok := h.RuleSet(c); ok {
				configured = append(configured, fmt.Sprintf("%s:%d", shortCategory(c), len(rs)))
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", h.Version),
			h.UpdatedAt.Local().Format("2006-01-02 15:04"),
			strings.Join(configured, " "),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers("VERSION", "UPDATED", "RULES PER CATEGORY").
		Rows(rows...).
		String()
}

// RenderSummary renders the dashboard statistics block.
func RenderSummary(s insight.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", TitleStyle.Render(ChartIcon+" Network overview"))
	fmt.Fprintf(&b, "Contacts: %s\n", BoldStyle.Render(fmt.Sprintf("%d", s.Total)))

	relevance := SubtleStyle.Render("room to grow")
	if s.HighRelevance {
		relevance = SuccessStyle.Render("high relevance")
	}
	energy := SuccessStyle.Render("healthy")
	if s.LowEnergy {
		energy = WarningStyle.Render("low energy")
	}
	fmt.Fprintf(&b, "Avg value relevance: %.1f (%s)\n", s.AverageX, relevance)
	fmt.Fprintf(&b, "Avg energy:          %.1f (%s)\n", s.AverageY, energy)
	fmt.Fprintf(&b, "Avg accessibility:   %.1f\n\n", s.AverageZ)

	for _, stat := range s.Categories {
		bar := strings.Repeat("█", stat.Percent/5)
		fmt.Fprintf(&b, "%s %3d  %3d%%  %s\n",
			paddedCategory(stat.Category), stat.Count, stat.Percent, CategoryStyle(stat.Category).Render(bar))
	}
	return b.String()
}

// RenderFindings renders findings in the order given.
func RenderFindings(findings []model.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", TitleStyle.Render("Insights"))
	for _, f := range findings {
		style := SeverityStyle(f.Severity)
		fmt.Fprintf(&b, "%s %s\n", SeverityIcon(f.Severity), style.Bold(true).Render(f.Title))
		fmt.Fprintf(&b, "   %s\n", f.Description)
	}
	return b.String()
}

// RenderTagCatalog lists every tag grouped by parent, with usage counts when
// counts is non-nil.
func RenderTagCatalog(catalog *tags.Catalog, counts map[string]int) string {
	var b strings.Builder
	for _, g := range catalog.Groups() {
		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(g.Color)).Render(g.Label)
		fmt.Fprintf(&b, "%s %s\n", header, SubtleStyle.Render("("+string(g.ID)+")"))
		fmt.Fprintf(&b, "%s\n", SubtleStyle.Render(g.Description))
		for _, tag := range g.Tags {
			line := fmt.Sprintf("  %-18s %s", tag.ID, tag.Label)
			if counts != nil {
				line += fmt.Sprintf("  [%d]", counts[tag.ID])
			}
			fmt.Fprintf(&b, "%s\n", line)
			fmt.Fprintf(&b, "  %-18s %s\n", "", SubtleStyle.Render(tag.Description))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderExplanation shows how each category's rules evaluated for a contact.
func RenderExplanation(c model.Contact, evals []classification.Evaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s scored %s\n\n", BoldStyle.Render(c.Name), FormatScore(c.Score))
	anySelected := false
	for _, e := range evals {
		var status string
		switch {
		case !e.Configured:
			status = SubtleStyle.Render("skipped (not configured)")
		case e.Selected:
			anySelected = true
			status = SuccessStyle.Render(SuccessIcon + " selected")
		case e.Matched:
			status = SubtleStyle.Render("matched, but a higher-priority category won")
		default:
			failed := make([]string, 0, len(e.Failed))
			for _, p := range e.Failed {
				failed = append(failed, p.String())
			}
			status = ErrorStyle.Render(ErrorIcon + " fails " + strings.Join(failed, ", "))
		}
		fmt.Fprintf(&b, "%s %s\n", paddedCategory(e.Category), status)
	}
	if !anySelected {
		fmt.Fprintf(&b, "%s %s\n", paddedCategory(model.CategoryOthers), SuccessStyle.Render(SuccessIcon+" fallback"))
	}
	return b.String()
}

// RenderCheckpoints lists checkpoints newest first.
func RenderCheckpoints(checkpoints []storage.CheckpointInfo) string {
	if len(checkpoints) == 0 {
		return SubtleStyle.Render("No checkpoints found.")
	}
	rows := make([][]string, 0, len(checkpoints))
	for _, cp := range checkpoints {
		kind := "manual"
		if cp.IsAuto {
			kind = "auto"
		}
		rows = append(rows, []string{
			cp.ID,
			cp.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			kind,
			fmt.Sprintf("%d", cp.Contacts),
			fmt.Sprintf("v%d", cp.ThresholdVersion),
			formatBytes(cp.FileSize),
			truncate(cp.Description, maxNoteWidth),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers("ID", "CREATED", "TYPE", "CONTACTS", "THRESHOLDS", "SIZE", "DESCRIPTION").
		Rows(rows...).
		String()
}

// TagCountsSorted returns tag ids ordered by descending count then id.
func TagCountsSorted(counts map[string]int) []string {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// paddedCategory pads before styling so escape codes do not skew columns.
func paddedCategory(c model.Category) string {
	return CategoryStyle(c).Render(fmt.Sprintf("%-18s", c.Info().Label))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortCategory(c model.Category) string {
	switch c {
	case model.CategoryCorePower:
		return "core"
	case model.CategoryStrategicGoal:
		return "strategic"
	case model.CategoryExecutionForce:
		return "execution"
	case model.CategoryPrestigeLeverage:
		return "prestige"
	default:
		return strings.ToLower(string(c))
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
