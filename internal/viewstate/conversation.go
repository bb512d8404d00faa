// Package viewstate owns the mutable view-state for conversations: per-
// entry expand/wrap-override flags, the layout.Index, and the
// resolved scroll position, plus the multi-session LogViewState that
// routes incoming entries to the right session/subagent conversation.
//
// Grounded on wilbur182-forge's internal/viewlayout (cumulative_y
// index + incremental relayout pattern) and internal/app's session
// routing, generalized from that dashboard's single-source model to
// route entries to the right session and, within a session, the right
// subagent conversation.
package viewstate

import (
	"sort"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/layout"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
	"github.com/rgreenblatt/cclv-sub001/internal/pricing"
	"github.com/rgreenblatt/cclv-sub001/internal/render"
	"github.com/rgreenblatt/cclv-sub001/internal/scroll"
	"github.com/rgreenblatt/cclv-sub001/internal/styles"
)

// LayoutParams are the global parameters that force a full
// recompute_layout when they change, as opposed to a per-entry change
// which only needs relayout_from. Match highlighting is deliberately
// not part of this struct: it never changes line counts, so it's
// threaded in separately via SetSearchMatches instead of forcing a
// relayout on every keystroke of a search.
type LayoutParams struct {
	Width            int
	GlobalWrap       render.WrapMode
	ContextMaxTokens int
}

// entryState is the per-entry mutable view flags a ConversationEntry
// does not itself carry (expand toggle, wrap override).
type entryState struct {
	expanded        bool
	hasWrapOverride bool
	wrapOverride    render.WrapMode
}

// HitTestResult is the outcome of a hit_test call.
type HitTestResult struct {
	Hit          bool
	EntryIndex   int
	LineInEntry  int
	Col          int
}

// VisibleRange is the half-open [Start, End) entry-index window
// intersecting the current viewport.
type VisibleRange struct {
	Start int
	End   int
}

// ConversationViewState is one conversation's (main or one subagent's)
// entries plus their layout and scroll state.
type ConversationViewState struct {
	entries []*model.ConversationEntry
	states  []entryState
	idx     *layout.Index

	scrollPos scroll.Position
	autoScroll bool
	hOffset    int

	focusedMessage int

	lastParams   LayoutParams
	hasLastLayout bool

	isSubagentView bool
	theme          *styles.Theme
	pricing        pricing.Table

	collapseThreshold int
	summaryLines      int

	// searchMatches is keyed by entry UUID and installed by appstate
	// whenever the search engine's match set or current-match index
	// changes. It is deliberately not part of LayoutParams: match spans
	// never change line counts, only highlight color, so updating it
	// never requires a relayout — renderParams picks it up fresh on
	// every RenderViewport call.
	searchMatches map[ids.EntryUUID][]render.SearchMatch
}

// New constructs an empty conversation view-state. isSubagentView
// controls the "Initial Prompt" label on the first entry.
func New(isSubagentView bool) *ConversationViewState {
	return &ConversationViewState{
		scrollPos:         scroll.AtTop(),
		autoScroll:        true,
		isSubagentView:    isSubagentView,
		theme:             styles.Default(),
		pricing:           pricing.DefaultTable,
		collapseThreshold: 10,
		summaryLines:      3,
	}
}

// Len returns the number of entries.
func (c *ConversationViewState) Len() int { return len(c.entries) }

// IsEmpty reports whether the conversation has no entries.
func (c *ConversationViewState) IsEmpty() bool { return len(c.entries) == 0 }

// Get returns the entry at i, or nil if out of range.
func (c *ConversationViewState) Get(i int) *model.ConversationEntry {
	if i < 0 || i >= len(c.entries) {
		return nil
	}
	return c.entries[i]
}

// Iter returns the full entry slice in order.
func (c *ConversationViewState) Iter() []*model.ConversationEntry { return c.entries }

// Scroll returns the current symbolic scroll position.
func (c *ConversationViewState) Scroll() scroll.Position { return c.scrollPos }

// SetScroll overwrites the scroll position directly.
func (c *ConversationViewState) SetScroll(pos scroll.Position) { c.scrollPos = pos }

// HOffset returns the pane's horizontal scroll offset, in display
// columns, applied to NoWrap content.
func (c *ConversationViewState) HOffset() int { return c.hOffset }

// SetHOffset sets the horizontal scroll offset, clamping negative
// values to 0.
func (c *ConversationViewState) SetHOffset(v int) {
	if v < 0 {
		v = 0
	}
	c.hOffset = v
}

// TotalHeight returns the total rendered height, 0 before any layout
// has been computed.
func (c *ConversationViewState) TotalHeight() int {
	if c.idx == nil {
		return 0
	}
	return c.idx.Total()
}

// ResolvedScroll resolves the current symbolic scroll position against
// the layout index into a concrete offset clamped to
// [0, total-viewportHeight], the same clamp VisibleRange/HitTest use.
// Returns 0 before any layout has been computed.
func (c *ConversationViewState) ResolvedScroll(viewportHeight int) int {
	if c.idx == nil {
		return 0
	}
	return scroll.Resolve(c.scrollPos, c.idx, viewportHeight)
}

// NeedsRelayout reports whether params differ from the last full
// layout computed: a full recompute_layout is required whenever any
// global parameter changes, since every entry's wrapped height can
// shift.
func (c *ConversationViewState) NeedsRelayout(params LayoutParams) bool {
	if !c.hasLastLayout || c.idx == nil {
		return true
	}
	return c.lastParams != params
}

// Append adds entries to the end of the conversation. Appending
// invalidates last_layout_params; callers must relayout before the
// next render.
func (c *ConversationViewState) Append(entries ...*model.ConversationEntry) {
	start := len(c.entries)
	c.entries = append(c.entries, entries...)
	for range entries {
		c.states = append(c.states, entryState{})
	}
	if c.idx != nil {
		// Grow the index lazily; callers still must call
		// relayout_from(start, params) to size the new suffix.
		_ = start
	}
	c.hasLastLayout = false
}

func (c *ConversationViewState) renderParams(i int, params LayoutParams) render.Options {
	st := c.states[i]
	firstInSubagent := c.isSubagentView && i == 0
	opts := render.Options{
		Width:             params.Width,
		GlobalWrap:        params.GlobalWrap,
		HasWrapOverride:   st.hasWrapOverride,
		WrapOverride:      st.wrapOverride,
		HOffset:           c.hOffset,
		Expanded:          st.expanded,
		CollapseThreshold: c.collapseThreshold,
		SummaryLines:      c.summaryLines,
		EntryIndexDisplay: i + 1,
		FirstInSubagent:   firstInSubagent,
		ContextMaxTokens:  params.ContextMaxTokens,
		Pricing:           c.pricing,
		Theme:             c.theme,
		Focused:           i == c.focusedMessage,
	}
	if uuid, ok := c.EntryUUIDAt(i); ok {
		opts.SearchMatches = c.searchMatches[uuid]
	}
	return opts
}

// SetSearchMatches installs (or, given nil/empty, clears) the active
// search engine's per-entry match spans for highlighting.
func (c *ConversationViewState) SetSearchMatches(byEntry map[ids.EntryUUID][]render.SearchMatch) {
	c.searchMatches = byEntry
}

// OffsetOfEntry returns the resolved top-of-entry vertical offset for
// the entry with the given UUID. ok is false if no layout has been
// computed yet or no entry carries that UUID.
func (c *ConversationViewState) OffsetOfEntry(uuid ids.EntryUUID) (offset int, ok bool) {
	if c.idx == nil {
		return 0, false
	}
	for i, e := range c.entries {
		if e.UUID == uuid {
			return c.idx.OffsetOf(i), true
		}
	}
	return 0, false
}

// RecomputeLayout performs a full relayout of every entry. Required
// whenever global params (width, global wrap, context max tokens)
// change.
func (c *ConversationViewState) RecomputeLayout(params LayoutParams) {
	c.idx = layout.Build(c.entries, func(i int) layout.Params {
		return c.renderParams(i, params)
	})
	c.lastParams = params
	c.hasLastLayout = true
}

// RelayoutFrom recomputes heights and cumulative_y strictly from
// fromIndex..len, preserving everything before it. Used after a
// single-entry change (expand toggle, wrap override).
func (c *ConversationViewState) RelayoutFrom(fromIndex int, params LayoutParams) {
	if c.idx == nil || c.idx.Len() != len(c.entries) {
		c.RecomputeLayout(params)
		return
	}
	c.idx.Relayout(fromIndex, func(i int) layout.Params {
		return c.renderParams(i, params)
	})
}

// ToggleExpand flips the expand flag of entries[index] and performs
// the incremental relayout, returning the new expanded state. Returns
// nil if index is out of range.
func (c *ConversationViewState) ToggleExpand(index int, params LayoutParams) *bool {
	if index < 0 || index >= len(c.entries) {
		return nil
	}
	c.states[index].expanded = !c.states[index].expanded
	c.RelayoutFrom(index, params)
	result := c.states[index].expanded
	return &result
}

// SetWrapOverride sets entries[index]'s wrap override and relayouts
// from index.
func (c *ConversationViewState) SetWrapOverride(index int, override render.WrapMode, params LayoutParams) {
	if index < 0 || index >= len(c.entries) {
		return
	}
	c.states[index].hasWrapOverride = true
	c.states[index].wrapOverride = override
	c.RelayoutFrom(index, params)
}

// ToggleWrapOverride flips between no-override and NoWrap, matching
// the `w` key's toggle-per-entry-wrap default binding.
func (c *ConversationViewState) ToggleWrapOverride(index int, params LayoutParams) {
	if index < 0 || index >= len(c.entries) {
		return
	}
	st := &c.states[index]
	if !st.hasWrapOverride {
		st.hasWrapOverride = true
		st.wrapOverride = render.WrapOff
	} else {
		st.hasWrapOverride = false
	}
	c.RelayoutFrom(index, params)
}

// VisibleRange returns the half-open entry-index window intersecting
// the viewport at the resolved scroll offset (the partition point of
// the cumulative-height index).
func (c *ConversationViewState) VisibleRange(viewportHeight int) VisibleRange {
	if c.idx == nil || c.idx.Len() == 0 {
		return VisibleRange{}
	}
	offset := scroll.Resolve(c.scrollPos, c.idx, viewportHeight)
	n := c.idx.Len()

	start := sort.Search(n, func(i int) bool {
		return c.idx.OffsetOf(i)+c.idx.HeightOf(i) > offset
	})
	end := sort.Search(n, func(i int) bool {
		return c.idx.OffsetOf(i) >= offset+viewportHeight
	})
	return VisibleRange{Start: start, End: end}
}

// HitTest maps a screen point (y, x) relative to the viewport top,
// given the current resolved scroll_offset, to the entry it lands on.
func (c *ConversationViewState) HitTest(y, x, viewportHeight int) HitTestResult {
	if c.idx == nil || c.idx.Len() == 0 {
		return HitTestResult{}
	}
	offset := scroll.Resolve(c.scrollPos, c.idx, viewportHeight)
	absoluteY := offset + y
	n := c.idx.Len()
	if absoluteY < 0 || absoluteY >= c.idx.Total() {
		return HitTestResult{}
	}
	i := sort.Search(n, func(i int) bool {
		return c.idx.OffsetOf(i)+c.idx.HeightOf(i) > absoluteY
	})
	if i >= n {
		return HitTestResult{}
	}
	return HitTestResult{
		Hit:         true,
		EntryIndex:  i,
		LineInEntry: absoluteY - c.idx.OffsetOf(i),
		Col:         x,
	}
}

// FocusedMessage returns the currently focused entry index.
func (c *ConversationViewState) FocusedMessage() int { return c.focusedMessage }

// SetFocusedMessage sets the focused entry index, clamping into range.
func (c *ConversationViewState) SetFocusedMessage(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(c.entries) && len(c.entries) > 0 {
		i = len(c.entries) - 1
	}
	c.focusedMessage = i
}

// AutoScroll reports whether the conversation should snap to Bottom
// on append (Follow mode).
func (c *ConversationViewState) AutoScroll() bool { return c.autoScroll }

// SetAutoScroll sets the follow-mode flag.
func (c *ConversationViewState) SetAutoScroll(v bool) { c.autoScroll = v }

// EntryUUIDAt returns the UUID of the entry at index i; ok is false
// when i is out of range. renderParams uses it to look up an entry's
// search matches.
func (c *ConversationViewState) EntryUUIDAt(i int) (ids.EntryUUID, bool) {
	e := c.Get(i)
	if e == nil {
		return "", false
	}
	return e.UUID, true
}

// EnsureLayout recomputes the layout if params changed since the last
// full compute, otherwise it is a no-op. Callers (internal/tui) must
// call this once per frame before VisibleRange/RenderViewport/HitTest.
func (c *ConversationViewState) EnsureLayout(params LayoutParams) {
	if c.NeedsRelayout(params) {
		c.RecomputeLayout(params)
	}
}

// RenderViewport renders exactly the lines visible in a viewport of
// the given height at the current resolved scroll position, clipping
// the first and last visible entries to the partial lines the
// partition-point window implies. This is the one sanctioned way
// internal/tui turns a ConversationViewState into screen lines — it
// never hand-rolls its own height math, reusing layout/render exactly
// as internal/layout.Height does.
func (c *ConversationViewState) RenderViewport(viewportHeight int, params LayoutParams) []string {
	if c.idx == nil || c.idx.Len() == 0 {
		return nil
	}
	vr := c.VisibleRange(viewportHeight)
	if vr.Start >= vr.End {
		return nil
	}
	offset := scroll.Resolve(c.scrollPos, c.idx, viewportHeight)

	var out []string
	for i := vr.Start; i < vr.End; i++ {
		lines := render.ComputeEntryLines(c.entries[i], c.renderParams(i, params))
		entryTop := c.idx.OffsetOf(i)
		for j, line := range lines {
			abs := entryTop + j
			if abs < offset || abs >= offset+viewportHeight {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}
