// Package selection tracks the set of selected row identifiers for one
// collection. Identifiers are the sole basis of membership; after every
// collection refresh the set is reconciled so it never references a row
// the server no longer reports.
package selection

// Set is a selection of item identifiers. Not safe for concurrent use;
// the TUI update loop is its only caller.
type Set struct {
	ids map[string]struct{}
}

// New returns an empty selection.
func New() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// Toggle flips membership of one identifier.
func (s *Set) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

// Has reports whether id is selected.
func (s *Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of selected identifiers.
func (s *Set) Count() int { return len(s.ids) }

// Clear empties the selection.
func (s *Set) Clear() {
	s.ids = make(map[string]struct{})
}

// IDs returns the selected identifiers in unspecified order.
func (s *Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// SelectAll is the tri-state header toggle over the currently visible
// rows: if every visible row is already selected it deselects them all,
// otherwise it selects all visible rows. Off-page selections are left
// untouched either way.
func (s *Set) SelectAll(visibleIDs []string) {
	if len(visibleIDs) == 0 {
		return
	}
	if s.allSelected(visibleIDs) {
		for _, id := range visibleIDs {
			delete(s.ids, id)
		}
		return
	}
	for _, id := range visibleIDs {
		s.ids[id] = struct{}{}
	}
}

// Indeterminate reports the header checkbox's mixed state: some but not
// all visible rows selected.
func (s *Set) Indeterminate(visibleIDs []string) bool {
	if len(visibleIDs) == 0 {
		return false
	}
	any := false
	all := true
	for _, id := range visibleIDs {
		if s.Has(id) {
			any = true
		} else {
			all = false
		}
	}
	return any && !all
}

// AllSelected reports whether every visible row is selected.
func (s *Set) AllSelected(visibleIDs []string) bool {
	return len(visibleIDs) > 0 && s.allSelected(visibleIDs)
}

func (s *Set) allSelected(visibleIDs []string) bool {
	for _, id := range visibleIDs {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Reconcile drops every selected identifier absent from freshIDs, the
// result set of the latest completed fetch. Stale selections are silently
// removed, never left dangling. Invoked once per refresh completion.
func (s *Set) Reconcile(freshIDs []string) {
	fresh := make(map[string]struct{}, len(freshIDs))
	for _, id := range freshIDs {
		fresh[id] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := fresh[id]; !ok {
			delete(s.ids, id)
		}
	}
}
