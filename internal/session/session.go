// Package session owns the checklist state of one running process: the
// active view, its accordion state, the filter flags and the per-group
// completion stores. Every mutation recomputes the derived values of the
// group it touched and returns them.
package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idilsaglam/checklist/internal/accordion"
	"github.com/idilsaglam/checklist/internal/completion"
	"github.com/idilsaglam/checklist/internal/filter"
	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/savefile"
	"github.com/idilsaglam/checklist/internal/store/kv"
)

var (
	ErrUnknownView  = errors.New("unknown view")
	ErrUnknownGroup = errors.New("unknown list")
)

// EntryView is the read-only projection of one entry.
type EntryView struct {
	ID          string
	Description string
	IsDLC       bool
	Completed   bool
	Visible     bool
}

// GroupView is the read-only projection of one list-group.
type GroupView struct {
	ID          string
	Name        string
	URL         string
	ImageURL    string
	ImageAlt    string
	IsDLC       bool
	Expanded    bool
	Completed   int
	Total       int
	AllComplete bool
	Visible     bool
	Entries     []EntryView
}

type Session struct {
	id      string
	catalog *model.Catalog
	kv      *kv.Store
	log     *zap.Logger

	view      string
	accordion accordion.State
	flags     filter.Flags
	lists     map[string]*completion.List
}

// New starts a session on the catalog's first view.
func New(cat *model.Catalog, store *kv.Store, log *zap.Logger) (*Session, error) {
	if len(cat.Views) == 0 {
		return nil, fmt.Errorf("%w: catalog has no views", ErrUnknownView)
	}
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	s := &Session{
		id:      id,
		catalog: cat,
		kv:      store,
		log:     log.With(zap.String("session_id", id)),
		flags:   filter.Load(store),
		lists:   make(map[string]*completion.List),
	}
	if err := s.SetView(cat.Views[0].Name); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) ID() string                 { return s.id }
func (s *Session) Catalog() *model.Catalog    { return s.catalog }
func (s *Session) ActiveView() string         { return s.view }
func (s *Session) Views() []string            { return s.catalog.ViewNames() }
func (s *Session) Flags() filter.Flags        { return s.flags }
func (s *Session) Accordion() accordion.State { return s.accordion }

// SetView switches the active view. The accordion is reset to all collapsed
// only when the new view's group set differs from the current one.
func (s *Session) SetView(name string) error {
	v, ok := s.catalog.View(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownView, name)
	}
	s.view = name
	ids := v.GroupIDs()
	if s.accordion == nil || !s.accordion.SameGroups(ids) {
		s.accordion = accordion.New(ids)
		s.log.Debug("accordion reset", zap.String("view", name), zap.Int("groups", len(ids)))
	}
	return nil
}

// CycleView moves to the next (step > 0) or previous (step < 0) view.
func (s *Session) CycleView(step int) {
	names := s.Views()
	cur := 0
	for i, n := range names {
		if n == s.view {
			cur = i
		}
	}
	next := ((cur+step)%len(names) + len(names)) % len(names)
	_ = s.SetView(names[next])
}

func (s *Session) list(groupID string) (*completion.List, model.ListGroup, error) {
	g, ok := s.catalog.Group(groupID)
	if !ok {
		return nil, model.ListGroup{}, fmt.Errorf("%w %q", ErrUnknownGroup, groupID)
	}
	l, ok := s.lists[groupID]
	if !ok {
		l = completion.For(s.kv, g, s.log)
		s.lists[groupID] = l
	}
	return l, g, nil
}

func (s *Session) SetEntry(groupID, entryID string, value bool) (GroupView, error) {
	l, g, err := s.list(groupID)
	if err != nil {
		return GroupView{}, err
	}
	st, err := l.SetEntry(entryID, value)
	if err != nil {
		return GroupView{}, err
	}
	return s.project(g, st), nil
}

func (s *Session) ToggleEntry(groupID, entryID string) (GroupView, error) {
	l, g, err := s.list(groupID)
	if err != nil {
		return GroupView{}, err
	}
	st, err := l.Toggle(entryID)
	if err != nil {
		return GroupView{}, err
	}
	return s.project(g, st), nil
}

// SetGroup marks every entry of a group done or not done.
func (s *Session) SetGroup(groupID string, value bool) (GroupView, error) {
	l, g, err := s.list(groupID)
	if err != nil {
		return GroupView{}, err
	}
	return s.project(g, l.SetAll(value)), nil
}

// ToggleGroup completes the whole group, or resets it when it already is.
func (s *Session) ToggleGroup(groupID string) (GroupView, error) {
	l, g, err := s.list(groupID)
	if err != nil {
		return GroupView{}, err
	}
	return s.project(g, l.ToggleAll()), nil
}

func (s *Session) ToggleAccordion(groupID string) (GroupView, error) {
	if _, ok := s.accordion[groupID]; !ok {
		return GroupView{}, fmt.Errorf("%w %q in view %q", ErrUnknownGroup, groupID, s.view)
	}
	s.accordion = s.accordion.Toggle(groupID)
	return s.Group(groupID)
}

func (s *Session) ExpandOrCollapseAll() {
	s.accordion = s.accordion.ExpandOrCollapseAll()
}

func (s *Session) SetFilter(flag filter.Flag, v bool) filter.Flags {
	s.flags = s.flags.Set(flag, v)
	s.flags.Persist(s.kv, flag)
	return s.flags
}

func (s *Session) ToggleFilter(flag filter.Flag) filter.Flags {
	return s.SetFilter(flag, !s.flags.Get(flag))
}

// Group returns the projection of a single group.
func (s *Session) Group(groupID string) (GroupView, error) {
	l, g, err := s.list(groupID)
	if err != nil {
		return GroupView{}, err
	}
	return s.project(g, l.Hydrate()), nil
}

// Project returns the projection of every group in the active view, in
// catalog order.
func (s *Session) Project() []GroupView {
	v, _ := s.catalog.View(s.view)
	out := make([]GroupView, 0, len(v.Lists))
	for _, g := range v.Lists {
		gv, err := s.Group(g.ID)
		if err != nil {
			continue
		}
		out = append(out, gv)
	}
	return out
}

// Export writes the persisted progress as a save file.
func (s *Session) Export(w io.Writer) error {
	// Hydrate first so every group of the catalog has a stored value.
	s.hydrateAll()
	return savefile.Export(s.kv, w, s.groups())
}

// Import loads a save file. Flags are re-read and every group is repaired
// against the catalog right away.
func (s *Session) Import(r io.Reader) (savefile.Result, error) {
	res, err := savefile.Import(s.kv, r, s.groups(), s.log)
	if err != nil {
		return res, err
	}
	s.flags = filter.Load(s.kv)
	s.hydrateAll()
	s.log.Info("save file imported", zap.Int("keys", len(res.Imported)), zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (s *Session) groups() savefile.Groups {
	var ids []string
	for _, v := range s.catalog.Views {
		ids = append(ids, v.GroupIDs()...)
	}
	return savefile.NewGroups(ids)
}

func (s *Session) hydrateAll() {
	for _, v := range s.catalog.Views {
		for _, g := range v.Lists {
			if l, _, err := s.list(g.ID); err == nil {
				l.Hydrate()
			}
		}
	}
}

func (s *Session) project(g model.ListGroup, st completion.State) GroupView {
	m := st.Metrics()
	gv := GroupView{
		ID:          g.ID,
		Name:        g.Name,
		URL:         g.URL,
		ImageURL:    g.ImageURL,
		ImageAlt:    g.ImageAlt,
		IsDLC:       g.IsDLC,
		Expanded:    s.accordion.Expanded(g.ID),
		Completed:   m.Completed,
		Total:       m.Total,
		AllComplete: m.AllComplete,
		Visible:     filter.GroupVisible(g, m.AllComplete, s.flags),
		Entries:     make([]EntryView, 0, len(g.Requirements)),
	}
	for _, e := range g.Requirements {
		done := st[e.ID]
		gv.Entries = append(gv.Entries, EntryView{
			ID:          e.ID,
			Description: e.Description,
			IsDLC:       e.IsDLC,
			Completed:   done,
			Visible:     filter.EntryVisible(e, done, s.flags),
		})
	}
	return gv
}
