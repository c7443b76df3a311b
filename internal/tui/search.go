package tui

import (
	"fmt"

	"filedex/internal/query"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	sizeColumnWidth = 12
	typeColumnWidth = 30
	minNameWidth    = 20
)

type searchModel struct {
	input    textinput.Model
	table    table.Model
	filter   *query.Filter
	total    int
	showHelp bool
	help     string
	width    int
	height   int
}

func newSearchModel(s *query.Session, cols query.Column) searchModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("Search: ")
	ti.Placeholder = "type to filter, ? for help"
	ti.CharLimit = 256
	ti.Focus()

	t := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithKeyMap(tableKeys()),
		table.WithStyles(tableStyles()),
	)

	m := searchModel{
		input:  ti,
		table:  t,
		filter: s.NewFilter(cols),
		total:  s.Len(),
	}
	m.setRows(m.filter.Update(""))
	return m
}

// tableKeys keeps letters free for the search bar.
func tableKeys() table.KeyMap {
	km := table.DefaultKeyMap()
	km.LineUp = key.NewBinding(key.WithKeys("up"))
	km.LineDown = key.NewBinding(key.WithKeys("down"))
	km.PageUp = key.NewBinding(key.WithKeys("pgup"))
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	km.HalfPageUp = key.NewBinding(key.WithDisabled())
	km.HalfPageDown = key.NewBinding(key.WithDisabled())
	km.GotoTop = key.NewBinding(key.WithDisabled())
	km.GotoBottom = key.NewBinding(key.WithDisabled())
	return km
}

func tableColumns(width int) []table.Column {
	// Each cell carries one column of padding on either side.
	nameWidth := width - sizeColumnWidth - typeColumnWidth - 6
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	return []table.Column{
		{Title: "File Name", Width: nameWidth},
		{Title: "File Size", Width: sizeColumnWidth},
		{Title: "Content Type", Width: typeColumnWidth},
	}
}

func (m searchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *searchModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 10

	// input, status bar and the table header border.
	h := height - 4
	if h < 3 {
		h = 3
	}
	m.table.SetColumns(tableColumns(width))
	m.table.SetWidth(width)
	m.table.SetHeight(h)
	m.help = ""
}

func (m *searchModel) setRows(rows []query.Row) {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{r.Name, r.Size, r.ContentType}
	}
	m.table.SetRows(out)
	m.table.GotoTop()
}

func (m *searchModel) toggle(col query.Column) {
	m.setRows(m.filter.SetColumns(m.filter.Columns() ^ col))
}

func (m *searchModel) toggleHelp() {
	m.showHelp = !m.showHelp
	if m.showHelp && m.help == "" {
		m.help = renderHelp(m.width)
	}
}

func (m searchModel) Update(msg tea.Msg) (searchModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+n":
			m.toggle(query.ColumnName)
			return m, nil
		case "ctrl+s":
			m.toggle(query.ColumnSize)
			return m, nil
		case "ctrl+t":
			m.toggle(query.ColumnType)
			return m, nil
		case "ctrl+h":
			m.toggleHelp()
			return m, nil
		case "?":
			if m.input.Value() == "" {
				m.toggleHelp()
				return m, nil
			}
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		if m.showHelp {
			return m, nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != prev {
		m.setRows(m.filter.Update(v))
	}
	return m, cmd
}

func (m searchModel) statusLine() string {
	cols := m.filter.Columns()
	flag := func(label string, c query.Column) string {
		if cols&c != 0 {
			return activeColumnStyle.Render(label)
		}
		return dimStyle.Render(label)
	}
	return fmt.Sprintf(" filedex • %d/%d matches • %s %s %s • esc quit",
		m.filter.Count(), m.total,
		flag("name", query.ColumnName),
		flag("size", query.ColumnSize),
		flag("type", query.ColumnType))
}

func (m searchModel) View() string {
	body := m.table.View()
	if m.showHelp {
		body = helpBoxStyle.Render(m.help)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.input.View(),
		body,
		statusBarStyle.Width(m.width).Render(m.statusLine()),
	)
}
