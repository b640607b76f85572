package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/checklist/internal/filter"
	"github.com/idilsaglam/checklist/internal/session"
	"github.com/idilsaglam/checklist/internal/ui"
)

type rowKind int

const (
	groupRow rowKind = iota
	entryRow
)

// row is one selectable line: a list-group header or one of its entries.
type row struct {
	kind    rowKind
	groupID string
	entryID string
}

type keyMap struct {
	Up, Down           key.Binding
	Toggle, Expand     key.Binding
	ExpandAll          key.Binding
	NextView, PrevView key.Binding
	Completed, Base    key.Binding
	DLC                key.Binding
	Help, Quit         key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check")),
		Expand:    key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "open/close")),
		ExpandAll: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "open/close all")),
		NextView:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevView:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		Completed: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "completed")),
		Base:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "base game")),
		DLC:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dlc")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Expand, k.ExpandAll, k.NextView, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Expand, k.ExpandAll},
		{k.NextView, k.PrevView},
		{k.Completed, k.Base, k.DLC},
		{k.Help, k.Quit},
	}
}

// Model is the Bubble Tea model over a checklist session.
type Model struct {
	s      *session.Session
	keys   keyMap
	help   help.Model
	vp     viewport.Model
	rows   []row
	groups []session.GroupView
	cursor int
	status string
	width  int
	height int
}

func New(s *session.Session) Model {
	m := Model{
		s:      s,
		keys:   defaultKeys(),
		help:   help.New(),
		vp:     viewport.New(80, 20),
		width:  80,
		height: 24,
	}
	m.refresh()
	return m
}

// Run starts the interactive checklist. Every change is persisted as it
// happens, so there is nothing to save on quit.
func Run(s *session.Session) error {
	_, err := tea.NewProgram(New(s), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			m.toggle()
		case key.Matches(msg, m.keys.Expand):
			if r, ok := m.current(); ok {
				if _, err := m.s.ToggleAccordion(r.groupID); err != nil {
					m.status = err.Error()
				}
				m.focusGroup(r.groupID)
			}
		case key.Matches(msg, m.keys.ExpandAll):
			m.s.ExpandOrCollapseAll()
		case key.Matches(msg, m.keys.NextView):
			m.s.CycleView(1)
			m.cursor = 0
		case key.Matches(msg, m.keys.PrevView):
			m.s.CycleView(-1)
			m.cursor = 0
		case key.Matches(msg, m.keys.Completed):
			m.s.ToggleFilter(filter.Completed)
		case key.Matches(msg, m.keys.Base):
			m.s.ToggleFilter(filter.BaseGame)
		case key.Matches(msg, m.keys.DLC):
			m.s.ToggleFilter(filter.DLC)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
		m.refresh()
		return m, nil
	}
	return m, nil
}

func (m *Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) toggle() {
	r, ok := m.current()
	if !ok {
		return
	}
	var err error
	if r.kind == groupRow {
		_, err = m.s.ToggleGroup(r.groupID)
	} else {
		_, err = m.s.ToggleEntry(r.groupID, r.entryID)
	}
	if err != nil {
		m.status = err.Error()
	}
}

// focusGroup moves the cursor onto a group header after its rows changed.
func (m *Model) focusGroup(groupID string) {
	m.rebuild()
	for i, r := range m.rows {
		if r.kind == groupRow && r.groupID == groupID {
			m.cursor = i
			return
		}
	}
}

func (m *Model) rebuild() {
	m.groups = m.s.Project()
	m.rows = nil
	for _, g := range m.groups {
		if !g.Visible {
			continue
		}
		m.rows = append(m.rows, row{kind: groupRow, groupID: g.ID})
		if !g.Expanded {
			continue
		}
		for _, e := range g.Entries {
			if e.Visible {
				m.rows = append(m.rows, row{kind: entryRow, groupID: g.ID, entryID: e.ID})
			}
		}
	}
}

// refresh recomputes rows from the session and re-renders the viewport.
func (m *Model) refresh() {
	m.rebuild()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	m.vp.Width = max(m.width-4, 10)
	m.vp.Height = max(m.height-lipgloss.Height(m.header())-lipgloss.Height(m.footer())-2, 3)
	m.vp.SetContent(m.body())

	if m.cursor < m.vp.YOffset {
		m.vp.SetYOffset(m.cursor)
	} else if m.cursor >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(m.cursor - m.vp.Height + 1)
	}
}

func (m Model) header() string {
	t := ui.Current()
	var tabs []string
	for _, name := range m.s.Views() {
		if name == m.s.ActiveView() {
			tabs = append(tabs, t.Title.Render("["+name+"]"))
		} else {
			tabs = append(tabs, t.Muted.Render(" "+name+" "))
		}
	}

	f := m.s.Flags()
	flag := func(label string, on bool) string {
		if on {
			return t.Success.Render("● " + label)
		}
		return t.Muted.Render("○ " + label)
	}

	done, total := 0, 0
	for _, g := range m.groups {
		done += g.Completed
		total += g.Total
	}
	return strings.Join(tabs, " ") + "\n" +
		strings.Join([]string{flag("Completed", f.ShowCompleted), flag("Base Game", f.ShowBaseGame), flag("DLC", f.ShowDLC)}, "  ") +
		"   " + t.Muted.Render(ui.ProgressBar(done, total, 20))
}

func (m Model) body() string {
	t := ui.Current()
	if len(m.rows) == 0 {
		return t.Muted.Render("nothing to show with the current filters")
	}
	byID := make(map[string]session.GroupView, len(m.groups))
	for _, g := range m.groups {
		byID[g.ID] = g
	}

	lines := make([]string, 0, len(m.rows))
	for i, r := range m.rows {
		g := byID[r.groupID]
		var line string
		if r.kind == groupRow {
			arrow := t.Collapsed
			if g.Expanded {
				arrow = t.Expanded
			}
			line = fmt.Sprintf("%s %s %s %s", arrow, ui.Box(g.AllComplete), t.Title.Render(g.Name),
				t.Muted.Render(fmt.Sprintf("%d/%d", g.Completed, g.Total)))
			if g.IsDLC {
				line += " " + t.Accent.Render(t.DLCTag)
			}
		} else {
			for _, e := range g.Entries {
				if e.ID != r.entryID {
					continue
				}
				text := ui.PlainText(e.Description)
				if text == "" {
					text = e.ID
				}
				if e.Completed {
					text = t.Done.Render(text)
				}
				line = fmt.Sprintf("    %s %s", ui.Box(e.Completed), text)
				if e.IsDLC {
					line += " " + t.Accent.Render(t.DLCTag)
				}
			}
		}

		prefix := "  "
		if i == m.cursor {
			prefix = t.Selected.Render("> ")
		}
		lines = append(lines, prefix+line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) footer() string {
	out := m.help.View(m.keys)
	if m.status != "" {
		out = ui.Current().Error.Render(m.status) + "\n" + out
	}
	return out
}

func (m Model) View() string {
	return ui.PanelString(m.header() + "\n\n" + m.vp.View() + "\n" + m.footer())
}
