// Package tui implements the interactive contact browser.
package tui

import (
	"context"
	"strings"

	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/cli"
	"github.com/Veraticus/social-capital/internal/insight"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// State represents the current interaction mode.
type State int

const (
	StateBrowse State = iota
	StateSearch
	StateDetail
)

// View represents the current tab.
type View int

const (
	ViewContacts View = iota
	ViewDashboard
	ViewThresholds
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewContacts:
		return "Contacts"
	case ViewDashboard:
		return "Dashboard"
	case ViewThresholds:
		return "Thresholds"
	default:
		return "Unknown"
	}
}

// Model holds the browser state.
type Model struct {
	ctx         context.Context
	source      Source
	lastError   error
	thresholds  *model.Thresholds
	explained   *model.Contact
	theme       themes.Theme
	status      string
	evaluations []classification.Evaluation
	contacts    []model.Contact
	filtered    []model.Contact
	report      insight.Report
	keymap      KeyMap
	search      textinput.Model
	table       table.Model
	help        help.Model
	spinner     spinner.Model
	width       int
	height      int
	state       State
	view        View
	showHelp    bool
	busy        bool
	ready       bool
	quitting    bool
}

func newModel(ctx context.Context, cfg Config) Model {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "X/Y/Z", Width: 14},
		{Title: "Category", Width: 22},
		{Title: "Tags", Width: 28},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(cfg.Height-8),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cfg.Theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = cfg.Theme.Selected
	t.SetStyles(s)

	search := textinput.New()
	search.Placeholder = "Search contacts..."
	search.CharLimit = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		source:   cfg.Source,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		table:    t,
		search:   search,
		help:     help.New(),
		spinner:  sp,
		width:    cfg.Width,
		height:   cfg.Height,
		showHelp: cfg.ShowHelp,
		state:    StateBrowse,
		view:     ViewContacts,
	}
}

// Init starts the initial data load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadData())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case dataLoadedMsg:
		m.contacts = msg.contacts
		m.report = msg.report
		m.thresholds = msg.thresholds
		m.applyFilter()
		m.ready = true
		return m, nil

	case explanationMsg:
		m.explained = msg.contact
		m.evaluations = msg.evaluations
		m.state = StateDetail
		return m, nil

	case reclassifiedMsg:
		m.busy = false
		m.status = ""
		return m, tea.Batch(m.loadData(), showStatus("Reclassified %d contacts", msg.count))

	case statusMsg:
		m.status = msg.message
		return m, nil

	case errorMsg:
		m.lastError = msg.err
		m.busy = false
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.state == StateSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keymap.ClearScreen):
		return m, tea.ClearScreen
	}

	if m.state == StateDetail {
		if key.Matches(msg, m.keymap.Back) {
			m.state = StateBrowse
			m.explained = nil
			m.evaluations = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.NextView):
		m.view = (m.view + 1) % viewCount
		return m, nil
	case key.Matches(msg, m.keymap.PrevView):
		m.view = (m.view + viewCount - 1) % viewCount
		return m, nil
	case key.Matches(msg, m.keymap.Refresh):
		m.lastError = nil
		return m, m.loadData()
	case key.Matches(msg, m.keymap.Reclassify):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.lastError = nil
		m.status = "Reclassifying contacts..."
		return m, tea.Batch(m.spinner.Tick, m.reclassify())
	}

	if m.view != ViewContacts {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Search):
		m.state = StateSearch
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keymap.Select):
		if c, ok := m.selectedContact(); ok {
			return m, m.explain(c.ID)
		}
		return m, nil
	case key.Matches(msg, m.keymap.Back):
		if m.search.Value() != "" {
			m.search.Reset()
			m.applyFilter()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Select):
		m.state = StateBrowse
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keymap.Back):
		m.state = StateBrowse
		m.search.Blur()
		m.search.Reset()
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) handleResize() {
	m.table.SetHeight(max(m.height-8, 3))
	m.table.SetWidth(max(m.width-2, 20))
	m.help.Width = m.width
}

// applyFilter narrows the contact table to rows matching the search text.
func (m *Model) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.search.Value()))
	filtered := make([]model.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		if query == "" || contactMatches(c, query) {
			filtered = append(filtered, c)
		}
	}
	m.filtered = filtered

	rows := make([]table.Row, 0, len(m.filtered))
	for _, c := range m.filtered {
		rows = append(rows, table.Row{
			c.Name,
			cli.FormatScore(c.Score),
			themes.GetCategoryIcon(c.Category) + " " + c.Category.Info().Label,
			strings.Join(c.Tags, ", "),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m Model) selectedContact() (model.Contact, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.filtered) {
		return model.Contact{}, false
	}
	return m.filtered[i], true
}

func contactMatches(c model.Contact, query string) bool {
	fields := []string{c.Name, c.Note, c.ValueProvide, c.ValueReceive, c.Category.Info().Label}
	fields = append(fields, c.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
