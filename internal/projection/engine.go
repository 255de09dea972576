// Package projection filters, searches and sorts reconciled hotfix records
// for display.
package projection

import (
	"cmp"
	"sort"
	"strings"

	"github.com/adamkadaban/hotfix-tui/internal/hotfix"
)

// Column names a record field that can be filtered, sorted or displayed.
type Column string

const (
	ColumnOrdinal         Column = "ordinal"
	ColumnApplyStatus     Column = "applyStatus"
	ColumnName            Column = "name"
	ColumnSeverity        Column = "severity"
	ColumnType            Column = "type"
	ColumnReleased        Column = "released"
	ColumnImpactedArea    Column = "impactedArea"
	ColumnRequiredActions Column = "requiredActions"
	ColumnTicket          Column = "ticketId"
	ColumnCompatibleNode  Column = "compatibleNode"
)

// FilterColumns are the faceted columns, in display order.
var FilterColumns = []Column{
	ColumnApplyStatus,
	ColumnSeverity,
	ColumnType,
	ColumnImpactedArea,
	ColumnRequiredActions,
}

// DisplayColumns are the table columns, in display order.
var DisplayColumns = []Column{
	ColumnApplyStatus,
	ColumnName,
	ColumnSeverity,
	ColumnType,
	ColumnReleased,
	ColumnImpactedArea,
	ColumnRequiredActions,
}

// Direction is the sort direction of the active column.
type Direction int

const (
	SortNone Direction = iota
	SortAscending
	SortDescending
)

func (d Direction) String() string {
	switch d {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return ""
	}
}

// Candidate is one selectable value of a facet.
type Candidate struct {
	Value    string
	Selected bool
}

// Facet is the candidate list of one filter column.
type Facet struct {
	Column     Column
	Candidates []Candidate
}

type facet struct {
	order    []string
	selected map[string]bool
}

// Engine holds the view state over the latest reconciled records. It is not
// safe for concurrent use; callers serialize access on the UI loop.
type Engine struct {
	base     []hotfix.Record
	haystack []string
	facets   map[Column]*facet

	search   string
	sortCol  Column
	sortDir  Direction
	expanded map[int]bool

	view []int
}

// New returns an engine with no records.
func New() *Engine {
	e := &Engine{}
	e.SetRecords(nil)
	return e
}

// SetRecords replaces the base sequence after a reconciliation pass. Filter
// candidates are rebuilt from the new records and all view state is reset.
func (e *Engine) SetRecords(records []hotfix.Record) {
	e.base = make([]hotfix.Record, len(records))
	copy(e.base, records)
	e.haystack = make([]string, len(records))
	for i, rec := range e.base {
		e.base[i].Expanded = false
		e.haystack[i] = searchText(rec)
	}
	e.facets = buildFacets(e.base)
	e.search = ""
	e.sortCol = ""
	e.sortDir = SortNone
	e.expanded = make(map[int]bool)
	e.refresh()
}

// Records returns the unfiltered base sequence.
func (e *Engine) Records() []hotfix.Record {
	out := make([]hotfix.Record, len(e.base))
	copy(out, e.base)
	return out
}

// Projection returns the records currently displayed, in display order.
func (e *Engine) Projection() []hotfix.Record {
	out := make([]hotfix.Record, len(e.view))
	for i, idx := range e.view {
		rec := e.base[idx]
		rec.Expanded = e.expanded[rec.Ordinal]
		out[i] = rec
	}
	return out
}

// Len reports how many records are displayed.
func (e *Engine) Len() int { return len(e.view) }

// Total reports the size of the base sequence.
func (e *Engine) Total() int { return len(e.base) }

// Facets returns the filter candidates in column order.
func (e *Engine) Facets() []Facet {
	out := make([]Facet, 0, len(FilterColumns))
	for _, col := range FilterColumns {
		f := e.facets[col]
		cands := make([]Candidate, len(f.order))
		for i, v := range f.order {
			cands[i] = Candidate{Value: v, Selected: f.selected[v]}
		}
		out = append(out, Facet{Column: col, Candidates: cands})
	}
	return out
}

// FilterActive reports whether any candidate is selected.
func (e *Engine) FilterActive() bool {
	for _, f := range e.facets {
		if f.active() {
			return true
		}
	}
	return false
}

// SearchTerm returns the normalized active search term.
func (e *Engine) SearchTerm() string { return e.search }

// Sort returns the active sort column and direction.
func (e *Engine) Sort() (Column, Direction) { return e.sortCol, e.sortDir }

// OnFilterChange selects or deselects a candidate. It collapses expanded rows
// and clears any search. Unknown columns or values are ignored and reported
// as false.
func (e *Engine) OnFilterChange(col Column, value string, selected bool) bool {
	f, ok := e.facets[col]
	if !ok {
		return false
	}
	if _, known := f.selected[value]; !known {
		return false
	}
	e.CollapseAll()
	e.search = ""
	f.selected[value] = selected
	e.refresh()
	return true
}

// OnSearch applies a search term. An empty term only drops the search; any
// other term collapses rows and clears the filter first.
func (e *Engine) OnSearch(term string) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		e.search = ""
		e.refresh()
		return
	}
	e.CollapseAll()
	e.clearFilter()
	e.search = term
	e.refresh()
}

// OnSort advances the sort cycle for col: a new column starts ascending,
// then the same column alternates descending and ascending.
func (e *Engine) OnSort(col Column) {
	switch {
	case col != e.sortCol:
		e.sortCol = col
		e.sortDir = SortAscending
	case e.sortDir == SortAscending:
		e.sortDir = SortDescending
	default:
		e.sortDir = SortAscending
	}
	e.refresh()
}

// ClearAll collapses rows and drops filter, search and sort.
func (e *Engine) ClearAll() {
	e.CollapseAll()
	e.clearFilter()
	e.search = ""
	e.sortCol = ""
	e.sortDir = SortNone
	e.refresh()
}

// ToggleExpand flips the expanded state of the record with the given ordinal.
func (e *Engine) ToggleExpand(ordinal int) bool {
	e.expanded[ordinal] = !e.expanded[ordinal]
	if !e.expanded[ordinal] {
		delete(e.expanded, ordinal)
		return false
	}
	return true
}

// CollapseAll collapses every expanded record.
func (e *Engine) CollapseAll() {
	clear(e.expanded)
}

func (e *Engine) clearFilter() {
	for _, f := range e.facets {
		for v := range f.selected {
			f.selected[v] = false
		}
	}
}

func (e *Engine) refresh() {
	view := make([]int, 0, len(e.base))
	filtering := e.FilterActive()
	for i := range e.base {
		switch {
		case e.search != "":
			if !strings.Contains(e.haystack[i], e.search) {
				continue
			}
		case filtering:
			if !e.matches(e.base[i]) {
				continue
			}
		}
		view = append(view, i)
	}

	if e.sortDir != SortNone {
		col, dir := e.sortCol, e.sortDir
		sort.SliceStable(view, func(i, j int) bool {
			c := compare(col, e.base[view[i]], e.base[view[j]])
			if dir == SortDescending {
				return c > 0
			}
			return c < 0
		})
	}
	e.view = view
}

func (e *Engine) matches(rec hotfix.Record) bool {
	for _, col := range FilterColumns {
		f := e.facets[col]
		if !f.active() {
			continue
		}
		hit := false
		for value, on := range f.selected {
			if on && matchValue(col, rec, value) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func (f *facet) active() bool {
	for _, on := range f.selected {
		if on {
			return true
		}
	}
	return false
}

func buildFacets(records []hotfix.Record) map[Column]*facet {
	facets := make(map[Column]*facet, len(FilterColumns))
	for _, col := range FilterColumns {
		f := &facet{selected: make(map[string]bool)}
		for _, rec := range records {
			for _, v := range candidates(col, rec) {
				if _, seen := f.selected[v]; seen {
					continue
				}
				f.selected[v] = false
				f.order = append(f.order, v)
			}
		}
		facets[col] = f
	}
	return facets
}

func candidates(col Column, rec hotfix.Record) []string {
	switch col {
	case ColumnImpactedArea:
		return rec.ImpactedArea
	case ColumnRequiredActions:
		return rec.RequiredActions.Categories()
	default:
		return []string{fieldValue(col, rec)}
	}
}

func matchValue(col Column, rec hotfix.Record, value string) bool {
	switch col {
	case ColumnImpactedArea:
		for _, area := range rec.ImpactedArea {
			if area == value {
				return true
			}
		}
		return false
	case ColumnRequiredActions:
		return rec.RequiredActions.MatchesCategory(value)
	default:
		return fieldValue(col, rec) == value
	}
}

// fieldValue returns the raw string value of a scalar column.
func fieldValue(col Column, rec hotfix.Record) string {
	switch col {
	case ColumnApplyStatus:
		return string(rec.ApplyStatus)
	case ColumnName:
		return rec.Name
	case ColumnSeverity:
		return string(rec.Severity)
	case ColumnType:
		return rec.Type
	case ColumnReleased:
		return rec.Released
	case ColumnTicket:
		return rec.TicketID
	case ColumnCompatibleNode:
		return rec.CompatibleNode
	}
	return ""
}

// SortKey returns the string a column sorts by.
func SortKey(col Column, rec hotfix.Record) string {
	switch col {
	case ColumnImpactedArea:
		return strings.Join(rec.ImpactedArea, ", ")
	case ColumnRequiredActions:
		return rec.RequiredActions.Label("-")
	default:
		return fieldValue(col, rec)
	}
}

func compare(col Column, a, b hotfix.Record) int {
	if col == ColumnOrdinal {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	}
	return cmp.Compare(SortKey(col, a), SortKey(col, b))
}
