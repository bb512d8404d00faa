// Package layout computes entry heights and builds the cumulative-
// height index the scroll model and viewstate package query. Height is
// derived by calling internal/render in a counting mode rather than
// re-implementing line counting — this is what makes a rendered
// entry's line count equal its layout height hold by construction,
// instead of by keeping two implementations in lockstep by hand.
//
// Grounded on wilbur182-forge's internal/viewlayout height-index
// pattern: a cumulative-offset slice plus sort.Search for O(log n)
// line<->entry queries.
package layout

import (
	"sort"

	"github.com/rgreenblatt/cclv-sub001/internal/model"
	"github.com/rgreenblatt/cclv-sub001/internal/render"
)

// Params bundles the subset of render.Options that affects height
// (everything that is not purely cosmetic, e.g. Focused/EntryIndexDisplay
// do not change a block's line count but ARE included anyway since
// Height must call the exact same render path the renderer uses — a
// second, height-only code path would be free to quietly diverge from
// it).
type Params = render.Options

// Height returns the number of lines entry renders to under params.
// It is the sole definition of "how tall is this entry" in the
// program: nothing else may compute height independently.
func Height(entry *model.ConversationEntry, params Params) int {
	return len(render.ComputeEntryLines(entry, params))
}

// Index is a cumulative-height index over an ordered slice of entries,
// supporting O(log n) offset<->entry queries via binary search
// (sort.Search partition-point idiom).
type Index struct {
	entries    []*model.ConversationEntry
	heights    []int
	cumulative []int // cumulative[i] = sum of heights[0:i]
	total      int
}

// Build computes heights for every entry under params and constructs
// the cumulative index. Call again (or use Relayout) whenever params
// or entries change.
func Build(entries []*model.ConversationEntry, paramsFor func(i int) Params) *Index {
	idx := &Index{
		entries:    entries,
		heights:    make([]int, len(entries)),
		cumulative: make([]int, len(entries)+1),
	}
	running := 0
	for i, e := range entries {
		h := Height(e, paramsFor(i))
		idx.heights[i] = h
		idx.cumulative[i] = running
		running += h
	}
	idx.cumulative[len(entries)] = running
	idx.total = running
	return idx
}

// Relayout recomputes heights for entries[from:] only, leaving
// entries[:from]'s heights untouched, and rebuilds the cumulative
// suffix. Used when a single entry's rendering parameters change
// (e.g. it is expanded/collapsed) so only the affected suffix is
// redone instead of the whole index.
func (idx *Index) Relayout(from int, paramsFor func(i int) Params) {
	if from < 0 {
		from = 0
	}
	if from > len(idx.entries) {
		return
	}
	running := idx.cumulative[from]
	for i := from; i < len(idx.entries); i++ {
		h := Height(idx.entries[i], paramsFor(i))
		idx.heights[i] = h
		idx.cumulative[i] = running
		running += h
	}
	idx.cumulative[len(idx.entries)] = running
	idx.total = running
}

// Len returns the number of entries indexed.
func (idx *Index) Len() int { return len(idx.entries) }

// Total returns the total rendered height across all entries.
func (idx *Index) Total() int { return idx.total }

// HeightOf returns entry i's rendered height.
func (idx *Index) HeightOf(i int) int { return idx.heights[i] }

// OffsetOf returns the cumulative line offset at which entry i begins.
func (idx *Index) OffsetOf(i int) int { return idx.cumulative[i] }

// EntryAtLine returns the index of the entry containing absolute line
// offset, and the 0-based line within that entry. If offset is past
// the end, returns the last entry's index and its final line.
func (idx *Index) EntryAtLine(offset int) (entryIndex int, lineWithin int) {
	n := len(idx.entries)
	if n == 0 {
		return 0, 0
	}
	if offset < 0 {
		offset = 0
	}
	// sort.Search finds the first i such that cumulative[i+1] > offset,
	// i.e. the partition point separating entries ending at-or-before
	// offset from the entry spanning it.
	i := sort.Search(n, func(i int) bool {
		return idx.cumulative[i+1] > offset
	})
	if i >= n {
		i = n - 1
		return i, idx.heights[i] - 1
	}
	return i, offset - idx.cumulative[i]
}
