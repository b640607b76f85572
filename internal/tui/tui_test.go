package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/session"
	"github.com/idilsaglam/checklist/internal/store/kv"
)

func newModel(t *testing.T) (Model, *session.Session) {
	t.Helper()
	cat := &model.Catalog{Views: []model.View{
		{Name: "Quests", Lists: []model.ListGroup{
			{ID: "g1", Name: "Group 1", Requirements: []model.Entry{
				{ID: "e1", Description: "first <b>entry</b>"},
				{ID: "e2", Description: "second", IsDLC: true},
			}},
			{ID: "g2", Name: "Group 2", Requirements: []model.Entry{{ID: "e3"}}},
		}},
		{Name: "Achievements", Lists: []model.ListGroup{
			{ID: "a1", Name: "A1", Requirements: []model.Entry{{ID: "a1a"}}},
		}},
	}}
	s, err := session.New(cat, kv.New(kv.NewMemory(), 0, nil), nil)
	require.NoError(t, err)

	var m tea.Model = New(s)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m.(Model), s
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestInitialRows(t *testing.T) {
	m, _ := newModel(t)
	assert.Len(t, m.rows, 2, "groups start collapsed")
	assert.Contains(t, m.View(), "Group 1")
}

func TestExpandAndToggleEntry(t *testing.T) {
	m, s := newModel(t)

	m = press(m, enter)
	require.Len(t, m.rows, 3, "g1 expanded shows its base-game entry only")
	assert.Equal(t, row{kind: entryRow, groupID: "g1", entryID: "e1"}, m.rows[1])
	assert.Contains(t, m.View(), "first entry")

	m = press(m, down)
	m = press(m, space)

	g, err := s.Group("g1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Completed)
}

func TestToggleGroupFromHeader(t *testing.T) {
	m, s := newModel(t)
	m = press(m, space)

	g, err := s.Group("g1")
	require.NoError(t, err)
	assert.True(t, g.AllComplete)

	m = press(m, runes("c"))
	assert.False(t, s.Flags().ShowCompleted)
	assert.Len(t, m.rows, 1, "completed group hidden")
}

func TestExpandAllAndViewSwitch(t *testing.T) {
	m, s := newModel(t)

	m = press(m, runes("x"))
	assert.True(t, s.Accordion().AllExpanded())
	assert.Len(t, m.rows, 4)

	m = press(m, tab)
	assert.Equal(t, "Achievements", s.ActiveView())
	assert.Len(t, m.rows, 1, "new view starts collapsed")
	assert.Equal(t, 0, m.cursor)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
