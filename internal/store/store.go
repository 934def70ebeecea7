// Package store keeps the client-side view of one server-owned collection:
// the fetched page of items, pagination, and filter state. The server is
// the single source of truth; a completed refresh replaces items and total
// atomically, never merges.
package store

// Pagination is the current page window. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

// Start returns the 1-based index of the first displayed row, 0 when the
// collection is empty.
func (p Pagination) Start() int {
	if p.Total == 0 {
		return 0
	}
	start := (p.Page-1)*p.PageSize + 1
	if start > p.Total {
		return p.Total
	}
	return start
}

// End returns the 1-based index of the last displayed row.
func (p Pagination) End() int {
	end := p.Page * p.PageSize
	if end > p.Total {
		return p.Total
	}
	return end
}

// Filter is the collection's predicate state. Status (or the
// enabled-flag for schedules) is forwarded to the server; Search is applied
// client-side to the fetched page only, a documented page-local limitation.
type Filter struct {
	Search string
	Status string
}

// MatchFunc reports whether an item matches a free-text search term.
type MatchFunc[T any] func(item T, term string) bool

// IDFunc extracts the stable identifier used to match cached rows to
// refreshed rows.
type IDFunc[T any] func(item T) string

// Store holds the view state of one collection. It is not safe for
// concurrent use; the TUI update loop is its only caller.
type Store[T any] struct {
	id    IDFunc[T]
	match MatchFunc[T]

	items  []T
	pg     Pagination
	filter Filter

	// Refresh sequencing: each issued refresh gets the next sequence
	// number; a response applies only if it is newer than the last one
	// applied. Last to complete wins, stale completions are dropped.
	issuedSeq  uint64
	appliedSeq uint64

	loading bool
}

// New creates a Store with the given page size.
func New[T any](pageSize int, id IDFunc[T], match MatchFunc[T]) *Store[T] {
	return &Store[T]{
		id:    id,
		match: match,
		pg:    Pagination{Page: 1, PageSize: pageSize},
	}
}

// Begin registers a new refresh and returns its sequence number. A
// non-silent refresh shows the loading placeholder; a silent one leaves
// rendered content untouched until data arrives.
func (s *Store[T]) Begin(silent bool) uint64 {
	s.issuedSeq++
	if !silent {
		s.loading = true
	}
	return s.issuedSeq
}

// Apply installs a completed response. It returns false, leaving state
// untouched, when a newer response has already been applied.
func (s *Store[T]) Apply(seq uint64, items []T, total int) bool {
	if seq <= s.appliedSeq {
		return false
	}
	s.appliedSeq = seq
	s.items = items
	s.pg.Total = total
	s.loading = false
	return true
}

// Fail records a refresh failure. The prior items stay visible; only the
// loading placeholder is cleared.
func (s *Store[T]) Fail(seq uint64) {
	if seq <= s.appliedSeq {
		return
	}
	s.loading = false
}

// Loading reports whether a non-silent refresh is in flight.
func (s *Store[T]) Loading() bool { return s.loading }

// Items returns the full fetched page.
func (s *Store[T]) Items() []T { return s.items }

// IDs returns the identifiers of the full fetched page; this is the set
// selections are reconciled against.
func (s *Store[T]) IDs() []string {
	ids := make([]string, 0, len(s.items))
	for _, it := range s.items {
		ids = append(ids, s.id(it))
	}
	return ids
}

// Visible returns the fetched page with the client-side search applied.
func (s *Store[T]) Visible() []T {
	if s.filter.Search == "" || s.match == nil {
		return s.items
	}
	var out []T
	for _, it := range s.items {
		if s.match(it, s.filter.Search) {
			out = append(out, it)
		}
	}
	return out
}

// VisibleIDs returns the identifiers of the visible rows; this is the set
// select-all operates on.
func (s *Store[T]) VisibleIDs() []string {
	visible := s.Visible()
	ids := make([]string, 0, len(visible))
	for _, it := range visible {
		ids = append(ids, s.id(it))
	}
	return ids
}

// Pagination returns the current page window.
func (s *Store[T]) Pagination() Pagination { return s.pg }

// Filter returns the current filter state.
func (s *Store[T]) Filter() Filter { return s.filter }

// Offset returns the limit/offset equivalent of the current page.
func (s *Store[T]) Offset() int { return (s.pg.Page - 1) * s.pg.PageSize }

// SetSearch updates the page-local search term. It does not touch the
// page: search filters what is already fetched, nothing more.
func (s *Store[T]) SetSearch(term string) { s.filter.Search = term }

// SetStatus updates the server-side predicate and resets to page 1, since
// the old page index is meaningless under a new predicate.
func (s *Store[T]) SetStatus(status string) {
	if s.filter.Status == status {
		return
	}
	s.filter.Status = status
	s.pg.Page = 1
}

// SetPageSize changes the page size and resets to page 1, avoiding an
// out-of-range request.
func (s *Store[T]) SetPageSize(size int) {
	if size <= 0 || size == s.pg.PageSize {
		return
	}
	s.pg.PageSize = size
	s.pg.Page = 1
}

// CanNext reports whether a further page exists. It is driven by the
// row-range rule, never by whether the current page came back full.
func (s *Store[T]) CanNext() bool { return s.pg.Page*s.pg.PageSize < s.pg.Total }

// CanPrev reports whether a prior page exists.
func (s *Store[T]) CanPrev() bool { return s.pg.Page > 1 }

// NextPage advances one page if one exists and reports whether it moved.
func (s *Store[T]) NextPage() bool {
	if !s.CanNext() {
		return false
	}
	s.pg.Page++
	return true
}

// PrevPage steps back one page if possible and reports whether it moved.
func (s *Store[T]) PrevPage() bool {
	if !s.CanPrev() {
		return false
	}
	s.pg.Page--
	return true
}

// Reset drops all fetched data and view state, e.g. on logout.
func (s *Store[T]) Reset() {
	s.items = nil
	s.pg.Page = 1
	s.pg.Total = 0
	s.filter = Filter{}
	s.loading = false
}
