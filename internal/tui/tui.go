// Package tui is the interactive search screen over a loaded index.
package tui

import (
	"filedex/internal/query"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewSearch
)

// Config holds configuration passed from the CLI layer.
type Config struct {
	IndexPath string
	Columns   query.Column

	// Session skips loading when the caller already holds the index.
	Session *query.Session
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	loading loadingModel
	search  searchModel
	err     error
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	if cfg.Columns == 0 {
		cfg.Columns = query.AllColumns
	}
	m := Model{
		state:   ViewLoading,
		config:  cfg,
		loading: newLoadingModel(cfg.IndexPath),
	}
	if cfg.Session != nil {
		m.state = ViewSearch
		m.search = newSearchModel(cfg.Session, cfg.Columns)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.state == ViewSearch {
		return m.search.Init()
	}
	return tea.Batch(m.loading.spinner.Tick, loadIndex(m.config.IndexPath))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewSearch {
			m.search.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.state == ViewSearch && m.search.showHelp {
				m.search.showHelp = false
				return m, nil
			}
			return m, tea.Quit
		}

	case indexLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.state = ViewSearch
		m.search = newSearchModel(msg.session, m.config.Columns)
		m.search.resize(m.width, m.height)
		return m, m.search.Init()
	}

	var cmd tea.Cmd
	switch m.state {
	case ViewLoading:
		m.loading, cmd = m.loading.Update(msg)
	case ViewSearch:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n" +
			dimStyle.Render("Press esc to quit.") + "\n"
	}

	switch m.state {
	case ViewLoading:
		return m.loading.View()
	case ViewSearch:
		return m.search.View()
	}
	return ""
}

// Run starts the TUI program and blocks until the user quits.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
