// Package accordion holds the expand/collapse flag of each list-group in
// the active view. It is never persisted.
package accordion

// State maps list-group ids to expanded. Operations return a new State and
// leave the receiver untouched.
type State map[string]bool

// New returns a State with every group collapsed.
func New(groupIDs []string) State {
	s := make(State, len(groupIDs))
	for _, id := range groupIDs {
		s[id] = false
	}
	return s
}

func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s State) Expanded(groupID string) bool { return s[groupID] }

// Toggle flips one group. Ids outside the state are ignored.
func (s State) Toggle(groupID string) State {
	next := s.Clone()
	if _, ok := next[groupID]; ok {
		next[groupID] = !next[groupID]
	}
	return next
}

// AllExpanded is vacuously true for an empty state.
func (s State) AllExpanded() bool {
	for _, open := range s {
		if !open {
			return false
		}
	}
	return true
}

// ExpandOrCollapseAll collapses every group when all are expanded and
// expands every group otherwise.
func (s State) ExpandOrCollapseAll() State {
	target := !s.AllExpanded()
	next := make(State, len(s))
	for id := range s {
		next[id] = target
	}
	return next
}

// SameGroups reports whether the state covers exactly groupIDs.
func (s State) SameGroups(groupIDs []string) bool {
	if len(s) != len(groupIDs) {
		return false
	}
	for _, id := range groupIDs {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}
