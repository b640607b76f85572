// Package completion tracks which entries of a list-group are done.
//
// Each list-group owns one mapping entryID -> done, persisted under
// "checklist_<groupID>". The mapping is always replaced as a whole: a
// mutation copies the current State, edits the copy and writes it back, so a
// State handed out earlier is never changed underneath its holder.
package completion

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store/kv"
)

const KeyPrefix = "checklist_"

var ErrUnknownEntry = errors.New("unknown entry")

// Key is the storage key for a list-group's completion state.
func Key(groupID string) string { return KeyPrefix + groupID }

// State maps entry ids to their completion flag. Treat it as read-only.
type State map[string]bool

func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s State) Completed() int {
	n := 0
	for _, done := range s {
		if done {
			n++
		}
	}
	return n
}

func (s State) Total() int { return len(s) }

// AllComplete is vacuously true for an empty group.
func (s State) AllComplete() bool { return s.Completed() == s.Total() }

type Metrics struct {
	Completed   int
	Total       int
	AllComplete bool
}

func (s State) Metrics() Metrics {
	done := s.Completed()
	return Metrics{Completed: done, Total: len(s), AllComplete: done == len(s)}
}

// List is the completion store of a single list-group.
type List struct {
	group model.ListGroup
	key   string
	kv    *kv.Store
	log   *zap.Logger
}

func For(store *kv.Store, group model.ListGroup, log *zap.Logger) *List {
	if log == nil {
		log = zap.NewNop()
	}
	return &List{
		group: group,
		key:   Key(group.ID),
		kv:    store,
		log:   log.With(zap.String("group", group.ID)),
	}
}

func (l *List) GroupID() string { return l.group.ID }

// Hydrate returns the persisted state, repairing it first when needed.
// A missing or undecodable value is replaced by the all-false default; a
// value whose keys drift from the catalog keeps the known entries and
// defaults the rest. Repairs are written back immediately.
func (l *List) Hydrate() State {
	stored := kv.Read[map[string]bool](l.kv, l.key, nil)
	if stored == nil {
		def := l.fill(false)
		if _, present := l.kv.Raw(l.key); present {
			l.log.Warn("discarding malformed completion state", zap.String("key", l.key))
		}
		kv.Write(l.kv, l.key, map[string]bool(def))
		return def
	}
	if l.matches(stored) {
		return State(stored)
	}

	healed := make(State, len(l.group.Requirements))
	for _, e := range l.group.Requirements {
		healed[e.ID] = stored[e.ID]
	}
	l.log.Warn("completion state does not match catalog, reconciling",
		zap.Int("stored_keys", len(stored)), zap.Int("catalog_entries", len(healed)))
	kv.Write(l.kv, l.key, map[string]bool(healed))
	return healed
}

// SetEntry marks one entry done or not done.
func (l *List) SetEntry(entryID string, value bool) (State, error) {
	if _, ok := l.group.Entry(entryID); !ok {
		return nil, fmt.Errorf("%w %q in list %q", ErrUnknownEntry, entryID, l.group.ID)
	}
	next := l.Hydrate().Clone()
	next[entryID] = value
	kv.Write(l.kv, l.key, map[string]bool(next))
	return next, nil
}

func (l *List) Toggle(entryID string) (State, error) {
	return l.SetEntry(entryID, !l.Hydrate()[entryID])
}

// SetAll replaces the whole mapping with every entry set to value.
func (l *List) SetAll(value bool) State {
	next := l.fill(value)
	kv.Write(l.kv, l.key, map[string]bool(next))
	return next
}

// ToggleAll completes every entry unless all are already complete, in which
// case every entry is reset.
func (l *List) ToggleAll() State {
	return l.SetAll(!l.Hydrate().AllComplete())
}

func (l *List) fill(value bool) State {
	s := make(State, len(l.group.Requirements))
	for _, e := range l.group.Requirements {
		s[e.ID] = value
	}
	return s
}

func (l *List) matches(m map[string]bool) bool {
	if len(m) != len(l.group.Requirements) {
		return false
	}
	for _, e := range l.group.Requirements {
		if _, ok := m[e.ID]; !ok {
			return false
		}
	}
	return true
}
