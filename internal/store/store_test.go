package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID   string
	Name string
}

func newRowStore(pageSize int) *Store[row] {
	return New(pageSize,
		func(r row) string { return r.ID },
		func(r row, term string) bool {
			return strings.Contains(strings.ToLower(r.Name), strings.ToLower(term))
		})
}

func TestApply_ReplacesAtomically(t *testing.T) {
	s := newRowStore(10)
	seq := s.Begin(false)
	assert.True(t, s.Loading())

	ok := s.Apply(seq, []row{{ID: "a"}, {ID: "b"}}, 42)
	assert.True(t, ok)
	assert.False(t, s.Loading())
	assert.Equal(t, []string{"a", "b"}, s.IDs())
	assert.Equal(t, 42, s.Pagination().Total)
}

func TestApply_StaleResponseDropped(t *testing.T) {
	s := newRowStore(10)

	first := s.Begin(true)
	second := s.Begin(true)

	// The later-issued refresh completes first.
	assert.True(t, s.Apply(second, []row{{ID: "fresh"}}, 1))

	// The earlier-issued one lands afterwards and must be discarded.
	assert.False(t, s.Apply(first, []row{{ID: "stale"}}, 1))
	assert.Equal(t, []string{"fresh"}, s.IDs())
}

func TestApply_OutOfOrderCompletionLastWins(t *testing.T) {
	s := newRowStore(10)

	first := s.Begin(true)
	second := s.Begin(true)

	// In-order completion: both apply, the last completed wins.
	assert.True(t, s.Apply(first, []row{{ID: "one"}}, 1))
	assert.True(t, s.Apply(second, []row{{ID: "two"}}, 1))
	assert.Equal(t, []string{"two"}, s.IDs())
}

func TestFail_LeavesPriorStateVisible(t *testing.T) {
	s := newRowStore(10)
	seq := s.Begin(false)
	s.Apply(seq, []row{{ID: "a"}}, 1)

	seq2 := s.Begin(false)
	assert.True(t, s.Loading())
	s.Fail(seq2)
	assert.False(t, s.Loading())
	assert.Equal(t, []string{"a"}, s.IDs(), "failed refresh must not clear items")
}

func TestSetPageSize_ResetsPage(t *testing.T) {
	s := newRowStore(10)
	s.Apply(s.Begin(true), nil, 100)
	s.NextPage()
	s.NextPage()
	assert.Equal(t, 3, s.Pagination().Page)

	s.SetPageSize(25)
	assert.Equal(t, 1, s.Pagination().Page)
	assert.Equal(t, 25, s.Pagination().PageSize)

	// Same size is a no-op.
	s.NextPage()
	s.SetPageSize(25)
	assert.Equal(t, 2, s.Pagination().Page)
}

func TestSetStatus_ResetsPage(t *testing.T) {
	s := newRowStore(10)
	s.Apply(s.Begin(true), nil, 50)
	s.NextPage()

	s.SetStatus("running")
	assert.Equal(t, 1, s.Pagination().Page)
	assert.Equal(t, "running", s.Filter().Status)

	s.NextPage()
	s.SetStatus("running") // unchanged predicate keeps the page
	assert.Equal(t, 2, s.Pagination().Page)
}

func TestPaging_BoundsFromRowRange(t *testing.T) {
	s := newRowStore(10)
	s.Apply(s.Begin(true), nil, 25)

	assert.False(t, s.CanPrev())
	assert.True(t, s.CanNext())

	assert.True(t, s.NextPage())  // page 2: rows 11-20
	assert.True(t, s.NextPage())  // page 3: rows 21-25
	assert.False(t, s.CanNext(), "page*pageSize >= total disables next")
	assert.False(t, s.NextPage())
	assert.Equal(t, 3, s.Pagination().Page)

	assert.True(t, s.PrevPage())
	assert.True(t, s.PrevPage())
	assert.False(t, s.PrevPage())
	assert.Equal(t, 1, s.Pagination().Page)
}

func TestPaging_ExactMultiple(t *testing.T) {
	s := newRowStore(10)
	s.Apply(s.Begin(true), nil, 20)
	s.NextPage()
	assert.False(t, s.CanNext(), "20 rows at size 10 means page 2 is the last")
}

func TestPagination_RowRange(t *testing.T) {
	tests := []struct {
		name       string
		pg         Pagination
		start, end int
	}{
		{"empty", Pagination{Page: 1, PageSize: 10, Total: 0}, 0, 0},
		{"first page", Pagination{Page: 1, PageSize: 10, Total: 25}, 1, 10},
		{"partial last page", Pagination{Page: 3, PageSize: 10, Total: 25}, 21, 25},
		{"single row", Pagination{Page: 1, PageSize: 10, Total: 1}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.start, tt.pg.Start())
			assert.Equal(t, tt.end, tt.pg.End())
		})
	}
}

func TestVisible_PageLocalSearch(t *testing.T) {
	s := newRowStore(10)
	s.Apply(s.Begin(true), []row{
		{ID: "1", Name: "nginx"},
		{ID: "2", Name: "redis"},
		{ID: "3", Name: "Nginx-Ingress"},
	}, 3)

	s.SetSearch("nginx")
	assert.Equal(t, []string{"1", "3"}, s.VisibleIDs())
	// Search never touches pagination.
	assert.Equal(t, 1, s.Pagination().Page)

	s.SetSearch("")
	assert.Len(t, s.Visible(), 3)
}

func TestReset(t *testing.T) {
	s := newRowStore(10)
	s.Apply(s.Begin(true), []row{{ID: "a"}}, 30)
	s.NextPage()
	s.SetSearch("x")

	s.Reset()
	assert.Empty(t, s.Items())
	assert.Equal(t, Pagination{Page: 1, PageSize: 10, Total: 0}, s.Pagination())
	assert.Equal(t, Filter{}, s.Filter())
}
