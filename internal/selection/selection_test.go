package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	s := New()
	s.Toggle("a")
	assert.True(t, s.Has("a"))
	assert.Equal(t, 1, s.Count())

	s.Toggle("a")
	assert.False(t, s.Has("a"))
	assert.Equal(t, 0, s.Count())
}

func TestSelectAll_TriStateToggle(t *testing.T) {
	visible := []string{"a", "b", "c"}
	s := New()

	// Nothing selected: selects all visible.
	s.SelectAll(visible)
	assert.Equal(t, 3, s.Count())
	for _, id := range visible {
		assert.True(t, s.Has(id))
	}

	// All visible selected: deselects them.
	s.SelectAll(visible)
	assert.Equal(t, 0, s.Count())
}

func TestSelectAll_IdempotentTogglePair(t *testing.T) {
	s := New()
	s.Toggle("b")
	visible := []string{"a", "b", "c"}

	// Two consecutive invocations with the same visible set return to the
	// original selection.
	s.SelectAll(visible)
	s.SelectAll(visible)
	assert.Equal(t, 0, s.Count())

	s.Toggle("b")
	s.Toggle("z") // off-page selection
	s.SelectAll(visible)
	s.SelectAll(visible)
	assert.True(t, s.Has("b"))
	assert.True(t, s.Has("z"))
	assert.Equal(t, 2, s.Count())
}

func TestSelectAll_PartialSelectsRemainder(t *testing.T) {
	s := New()
	s.Toggle("a")
	visible := []string{"a", "b"}

	s.SelectAll(visible)
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("b"))
}

func TestSelectAll_OffPageUntouched(t *testing.T) {
	s := New()
	s.Toggle("offpage")

	visible := []string{"a", "b"}
	s.SelectAll(visible)
	assert.True(t, s.Has("offpage"))
	assert.Equal(t, 3, s.Count())

	s.SelectAll(visible) // deselect visible only
	assert.True(t, s.Has("offpage"))
	assert.Equal(t, 1, s.Count())
}

func TestSelectAll_EmptyVisibleNoop(t *testing.T) {
	s := New()
	s.Toggle("a")
	s.SelectAll(nil)
	assert.True(t, s.Has("a"))
}

func TestIndeterminate(t *testing.T) {
	visible := []string{"a", "b", "c"}
	s := New()

	assert.False(t, s.Indeterminate(visible), "none selected")

	s.Toggle("a")
	assert.True(t, s.Indeterminate(visible), "some selected")
	assert.False(t, s.AllSelected(visible))

	s.Toggle("b")
	s.Toggle("c")
	assert.False(t, s.Indeterminate(visible), "all selected")
	assert.True(t, s.AllSelected(visible))
}

func TestReconcile_DropsStale(t *testing.T) {
	s := New()
	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("gone")

	s.Reconcile([]string{"a", "b", "new"})
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("gone"))
	assert.Equal(t, 2, s.Count())
}

func TestReconcile_EmptyFetchClearsAll(t *testing.T) {
	s := New()
	s.Toggle("a")
	s.Reconcile(nil)
	assert.Equal(t, 0, s.Count())
}

func TestToggleReconcileProperty(t *testing.T) {
	// After any toggle/reconcile sequence, Has never reports true for an
	// identifier absent from the latest fetch.
	s := New()
	fresh := []string{"1", "3", "5"}

	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		s.Toggle(id)
	}
	s.Reconcile(fresh)

	freshSet := map[string]bool{"1": true, "3": true, "5": true}
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		assert.Equal(t, freshSet[id], s.Has(id), "id %s", id)
	}
}
