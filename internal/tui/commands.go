package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// loadData fetches contacts, the dashboard report, and thresholds in one go.
func (m Model) loadData() tea.Cmd {
	src, ctx := m.source, m.ctx
	return func() tea.Msg {
		contacts, err := src.Contacts(ctx)
		if err != nil {
			return errorMsg{err: fmt.Errorf("failed to load contacts: %w", err)}
		}
		report, err := src.Dashboard(ctx)
		if err != nil {
			return errorMsg{err: fmt.Errorf("failed to build dashboard: %w", err)}
		}
		return dataLoadedMsg{
			contacts:   contacts,
			report:     report,
			thresholds: src.Thresholds(ctx),
		}
	}
}

func (m Model) explain(id string) tea.Cmd {
	src, ctx := m.source, m.ctx
	return func() tea.Msg {
		c, evals, err := src.Explain(ctx, id)
		if err != nil {
			return errorMsg{err: fmt.Errorf("failed to explain contact: %w", err)}
		}
		return explanationMsg{contact: c, evaluations: evals}
	}
}

func (m Model) reclassify() tea.Cmd {
	src, ctx := m.source, m.ctx
	return func() tea.Msg {
		contacts, err := src.Reclassify(ctx, nil)
		if err != nil {
			return errorMsg{err: fmt.Errorf("reclassification failed: %w", err)}
		}
		return reclassifiedMsg{count: len(contacts)}
	}
}

func showStatus(format string, args ...any) tea.Cmd {
	msg := fmt.Sprintf(format, args...)
	return func() tea.Msg {
		return statusMsg{message: msg}
	}
}
