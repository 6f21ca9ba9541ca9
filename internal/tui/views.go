package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/social-capital/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoading()
	}

	sections := []string{m.renderTabs()}
	switch {
	case m.state == StateDetail:
		sections = append(sections, m.renderDetail())
	case m.view == ViewDashboard:
		sections = append(sections, m.renderDashboard())
	case m.view == ViewThresholds:
		sections = append(sections, m.renderThresholds())
	default:
		sections = append(sections, m.renderContacts())
	}

	if line := m.renderStatus(); line != "" {
		sections = append(sections, line)
	}
	if m.showHelp {
		sections = append(sections, m.help.View(m.keymap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderLoading() string {
	return fmt.Sprintf("\n  %s Loading contacts...\n", m.spinner.View())
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := ViewContacts; v < viewCount; v++ {
		label := v.String()
		if v == ViewContacts {
			label = fmt.Sprintf("%s (%d)", label, len(m.contacts))
		}
		if v == m.view {
			tabs = append(tabs, m.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.TabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...) + "\n"
}

func (m Model) renderContacts() string {
	if len(m.contacts) == 0 {
		return m.theme.Subtitle.Render("No contacts yet. Add one with: capital contacts add")
	}

	var b strings.Builder
	if m.state == StateSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if len(m.filtered) == 0 {
		b.WriteString(m.theme.Subtitle.Render("No contacts match the search."))
		return b.String()
	}
	b.WriteString(m.table.View())
	return b.String()
}

func (m Model) renderDashboard() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		cli.RenderSummary(m.report.Summary),
		cli.RenderFindings(m.report.Findings),
	)
}

func (m Model) renderThresholds() string {
	if m.thresholds == nil {
		return m.theme.Subtitle.Render("No thresholds loaded.")
	}
	out := cli.RenderThresholds(m.thresholds)
	if warnings := cli.EmptyRuleSetWarnings(m.thresholds); len(warnings) > 0 {
		out += "\n" + strings.Join(warnings, "\n")
	}
	return out
}

func (m Model) renderDetail() string {
	if m.explained == nil {
		return ""
	}
	var detail string
	if m.source != nil {
		detail = cli.RenderContact(*m.explained, m.source.Catalog())
	}
	return m.theme.BorderedBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		detail,
		cli.RenderExplanation(*m.explained, m.evaluations),
	))
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render("Error: " + m.lastError.Error())
	case m.busy:
		return m.spinner.View() + " " + m.theme.StatusInfo.Render(m.status)
	case m.status != "":
		return m.theme.StatusSuccess.Render(m.status)
	}
	return ""
}
