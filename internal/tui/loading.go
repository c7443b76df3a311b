package tui

import (
	"filedex/internal/query"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type loadingModel struct {
	spinner spinner.Model
	path    string
}

func newLoadingModel(path string) loadingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return loadingModel{spinner: sp, path: path}
}

// indexLoadedMsg is sent once the artifact has been read.
type indexLoadedMsg struct {
	session *query.Session
	err     error
}

func loadIndex(path string) tea.Cmd {
	return func() tea.Msg {
		s, err := query.Load(path)
		return indexLoadedMsg{session: s, err: err}
	}
}

func (m loadingModel) Update(msg tea.Msg) (loadingModel, tea.Cmd) {
	if msg, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loadingModel) View() string {
	s := "\n"
	s += titleStyle.Render("  ◆ filedex") + "\n"
	s += subtitleStyle.Render("  File metadata search") + "\n\n"
	s += "  " + m.spinner.View() + " Loading " + m.path + "\n"
	return s
}
