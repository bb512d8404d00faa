// Package appstate implements the application's input-handling state
// machine: every input handler is a pure total function over
// AppState, returning the new state plus a redraw flag. No handler
// here touches a terminal, a channel, or a clock directly —
// internal/tui owns all of that and calls into this package.
//
// Grounded on wilbur182-forge's internal/app (the top-level app.Model
// holding focus/tab/modal state and dispatching pure update functions
// per key) and internal/plugins/conversations (tab cycling and
// click-to-expand semantics for a scrollable conversation pane).
package appstate

import (
	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/render"
	"github.com/rgreenblatt/cclv-sub001/internal/scroll"
	"github.com/rgreenblatt/cclv-sub001/internal/search"
	"github.com/rgreenblatt/cclv-sub001/internal/stats"
	"github.com/rgreenblatt/cclv-sub001/internal/viewstate"
)

// Focus identifies which pane receives scroll/expand/wrap input.
type Focus int

const (
	FocusMain Focus = iota
	FocusSubagent
	FocusStats
	FocusSearch
)

// ScrollDir names a scroll handler's direction/kind.
type ScrollDir int

const (
	ScrollUp ScrollDir = iota
	ScrollDown
	ScrollPageUp
	ScrollPageDown
	ScrollHome
	ScrollEnd
)

// ModalVisibility discriminates the session modal's two states.
type ModalVisibility int

const (
	ModalHidden ModalVisibility = iota
	ModalVisible
)

// AppState is the complete pure view-state of the application, minus
// bubbletea-specific ephemerals (text input cursors blink state,
// terminal size) that internal/tui owns directly.
type AppState struct {
	Log    *viewstate.LogViewState
	Viewed viewstate.ViewedSession

	Focus        Focus
	preSearchFocus Focus
	SubagentTab  int // 0 = Main tab; i > 0 = the i-th entry of SubagentIDs(); reset to 0 on session change

	Search     *search.Engine
	StatsFilter stats.Filter

	ModalVisibility ModalVisibility
	ModalSelected   int

	HelpVisible bool
	HelpScroll  int

	LayoutParams viewstate.LayoutParams
}

// New builds an initial AppState.
func New(width int) *AppState {
	return &AppState{
		Log:    viewstate.NewLogViewState(),
		Viewed: viewstate.ViewedSession{Kind: viewstate.Latest},
		Focus:  FocusMain,
		Search: search.NewEngine(),
		LayoutParams: viewstate.LayoutParams{
			Width:      width,
			GlobalWrap: render.WrapOn,
		},
	}
}

// currentSession resolves the viewed session, or nil if none exist yet.
func (s *AppState) currentSession() *viewstate.SessionView {
	return s.Log.ViewedSessionView(s.Viewed)
}

// focusedConversation returns the ConversationViewState the
// currently-focused pane is showing, or nil (e.g. FocusStats/FocusSearch
// have no conversation pane).
func (s *AppState) focusedConversation() *viewstate.ConversationViewState {
	sv := s.currentSession()
	if sv == nil {
		return nil
	}
	switch s.Focus {
	case FocusMain:
		return sv.Main
	case FocusSubagent:
		ids := sv.SubagentIDs()
		if s.SubagentTab <= 0 || s.SubagentTab > len(ids) {
			return nil
		}
		return sv.Subagent(ids[s.SubagentTab-1])
	default:
		return nil
	}
}

// allConversations returns every conversation pane (main plus every
// subagent) of the currently viewed session, the scope buildSearchScope
// indexes and the scope search highlighting/navigation must cover.
func (s *AppState) allConversations(sv *viewstate.SessionView) []*viewstate.ConversationViewState {
	out := []*viewstate.ConversationViewState{sv.Main}
	for _, id := range sv.SubagentIDs() {
		out = append(out, sv.Subagent(id))
	}
	return out
}

// refreshSearchHighlight pushes the search engine's current match set
// into every conversation pane the search scope covers, keyed by entry
// and marking the focused match Current, so the renderer can highlight
// every entry holding a match, using the current-match style for the
// entry holding the current one. Called
// after every Submit/Next/Prev/Cancel so highlighting never goes
// stale.
func (s *AppState) refreshSearchHighlight() {
	sv := s.currentSession()
	if sv == nil {
		return
	}
	panes := s.allConversations(sv)
	byPane := make(map[*viewstate.ConversationViewState]map[ids.EntryUUID][]render.SearchMatch, len(panes))
	cvForUUID := map[ids.EntryUUID]*viewstate.ConversationViewState{}
	for _, cv := range panes {
		if cv == nil {
			continue
		}
		byPane[cv] = map[ids.EntryUUID][]render.SearchMatch{}
		for _, e := range cv.Iter() {
			cvForUUID[e.UUID] = cv
		}
	}

	matches := s.Search.Matches()
	current := s.Search.CurrentMatchIndex()
	for i, m := range matches {
		cv := cvForUUID[m.EntryUUID]
		if cv == nil {
			continue
		}
		byPane[cv][m.EntryUUID] = append(byPane[cv][m.EntryUUID], render.SearchMatch{
			BlockIndex: m.BlockIndex,
			CharOffset: m.CharOffset,
			Length:     m.Length,
			Current:    i == current,
		})
	}
	for cv, byEntry := range byPane {
		if len(byEntry) == 0 {
			cv.SetSearchMatches(nil)
			continue
		}
		cv.SetSearchMatches(byEntry)
	}
}

// focusCurrentMatch switches focus to whichever pane (main or
// subagent) holds the search engine's current match and scrolls that
// pane so the match's entry lands at the top of the viewport —
// advancing "the next match" must bring it into view, not just move a
// cursor with nothing else observable.
func (s *AppState) focusCurrentMatch() {
	idx := s.Search.CurrentMatchIndex()
	if idx < 0 {
		return
	}
	m := s.Search.Matches()[idx]

	sv := s.currentSession()
	if sv == nil {
		return
	}
	if cv := sv.Main; cv != nil {
		if off, ok := cv.OffsetOfEntry(m.EntryUUID); ok {
			s.Focus = FocusMain
			cv.SetScroll(scroll.At(off))
			return
		}
	}
	for i, id := range sv.SubagentIDs() {
		cv := sv.Subagent(id)
		if off, ok := cv.OffsetOfEntry(m.EntryUUID); ok {
			s.Focus = FocusSubagent
			s.SubagentTab = i + 1
			cv.SetScroll(scroll.At(off))
			return
		}
	}
}

// CycleFocus advances Main -> Subagent -> Stats -> Main, skipping
// Search: Search is only ever entered/left explicitly, never landed on
// by cycling.
func CycleFocus(s AppState) (AppState, bool) {
	switch s.Focus {
	case FocusMain:
		s.Focus = FocusSubagent
	case FocusSubagent:
		s.Focus = FocusStats
	default:
		s.Focus = FocusMain
	}
	return s, true
}

// FocusMainPane, FocusSubagentPane, FocusStatsPane set focus directly.
func FocusMainPane(s AppState) (AppState, bool)     { s.Focus = FocusMain; return s, true }
func FocusSubagentPane(s AppState) (AppState, bool) { s.Focus = FocusSubagent; return s, true }
func FocusStatsPane(s AppState) (AppState, bool)    { s.Focus = FocusStats; return s, true }

// tabCount returns 1 (main) + subagent count for the viewed session.
func (s *AppState) tabCount() int {
	sv := s.currentSession()
	if sv == nil {
		return 1
	}
	return 1 + sv.SubagentCount()
}

// NextTab wraps 0..tabCount-1; tab 0 is Main, 1..n are subagents in
// sorted order.
func NextTab(s AppState) (AppState, bool) {
	n := s.tabCount()
	cur := tabIndex(s)
	next := (cur + 1) % n
	return selectTabIndex(s, next), true
}

// PrevTab wraps backward.
func PrevTab(s AppState) (AppState, bool) {
	n := s.tabCount()
	cur := tabIndex(s)
	prev := (cur - 1 + n) % n
	return selectTabIndex(s, prev), true
}

// SelectTab jumps to tab n (1-indexed: 1=main, 2=first subagent, ...);
// out of range is a no-op, and n==0 is ignored since 0 has no meaning
// for a 1-indexed quick-select.
func SelectTab(s AppState, n int) (AppState, bool) {
	if n == 0 {
		return s, false
	}
	count := s.tabCount()
	idx := n - 1
	if idx < 0 || idx >= count {
		return s, false
	}
	return selectTabIndex(s, idx), true
}

func tabIndex(s AppState) int {
	if s.Focus != FocusSubagent {
		return 0
	}
	return s.SubagentTab
}

func selectTabIndex(s AppState, idx int) AppState {
	if idx == 0 {
		s.Focus = FocusMain
		s.SubagentTab = 0
	} else {
		s.Focus = FocusSubagent
		s.SubagentTab = idx
	}
	return s
}

// Scroll applies a scroll handler to the focused pane. When help is
// visible it captures scroll instead of the underlying UI.
func Scroll(s AppState, dir ScrollDir, viewportHeight int) (AppState, bool) {
	if s.HelpVisible {
		s.HelpScroll = applyScrollDelta(s.HelpScroll, dir, viewportHeight)
		if s.HelpScroll < 0 {
			s.HelpScroll = 0
		}
		return s, true
	}

	cv := s.focusedConversation()
	if cv == nil {
		return s, false
	}
	var next scroll.Position
	switch dir {
	case ScrollHome:
		next = scroll.AtTop()
	case ScrollEnd:
		next = scroll.AtBottom()
	default:
		delta := scrollDelta(dir, viewportHeight)
		base := cv.ResolvedScroll(viewportHeight)
		next = scroll.At(base + delta)
	}
	cv.SetScroll(next)

	// auto_scroll tracks whether the resolved position actually landed
	// on the bottom, not which key produced it: a ScrollDown/PageDown
	// that lands exactly on maxOffset must re-arm it too, reaching the
	// bottom by scrolling down into it is as good as jumping there. And
	// clamping the base of every delta against maxOffset (via
	// ResolvedScroll above) rather than accumulating the raw requested
	// position is what keeps overshoot from compounding across
	// ScrollDown/ScrollUp sequences.
	resolved := cv.ResolvedScroll(viewportHeight)
	maxOffset := cv.TotalHeight() - viewportHeight
	cv.SetAutoScroll(maxOffset <= 0 || resolved >= maxOffset)
	return s, true
}

// ScrollHorizontal shifts the focused pane's NoWrap horizontal offset
// by delta display columns (clamped to >= 0). A no-op outside NoWrap
// mode, since reflowed text never overflows the viewport width to
// begin with.
func ScrollHorizontal(s AppState, delta int) (AppState, bool) {
	if s.LayoutParams.GlobalWrap != render.WrapOff {
		return s, false
	}
	cv := s.focusedConversation()
	if cv == nil {
		return s, false
	}
	cv.SetHOffset(cv.HOffset() + delta)
	return s, true
}

func applyScrollDelta(current int, dir ScrollDir, viewportHeight int) int {
	return current + scrollDelta(dir, viewportHeight)
}

func scrollDelta(dir ScrollDir, viewportHeight int) int {
	switch dir {
	case ScrollUp:
		return -1
	case ScrollDown:
		return 1
	case ScrollPageUp:
		return -viewportHeight
	case ScrollPageDown:
		return viewportHeight
	default:
		return 0
	}
}

// ToggleExpand toggles the focused entry's expand state in the
// focused pane, triggering an incremental relayout from that index.
func ToggleExpand(s AppState) (AppState, bool) {
	cv := s.focusedConversation()
	if cv == nil {
		return s, false
	}
	idx := cv.FocusedMessage()
	if res := cv.ToggleExpand(idx, s.LayoutParams); res != nil {
		return s, true
	}
	return s, false
}

// ToggleWrapGlobal flips the process-wide wrap default.
func ToggleWrapGlobal(s AppState) (AppState, bool) {
	if s.LayoutParams.GlobalWrap == render.WrapOn {
		s.LayoutParams.GlobalWrap = render.WrapOff
	} else {
		s.LayoutParams.GlobalWrap = render.WrapOn
	}
	return s, true
}

// ToggleWrapEntry flips the focused entry's per-entry wrap override.
func ToggleWrapEntry(s AppState) (AppState, bool) {
	cv := s.focusedConversation()
	if cv == nil {
		return s, false
	}
	cv.ToggleWrapOverride(cv.FocusedMessage(), s.LayoutParams)
	return s, true
}

// ActivateSearch enters the search state machine, remembering the
// pane focus to restore on submit/cancel.
func ActivateSearch(s AppState) (AppState, bool) {
	s.preSearchFocus = s.Focus
	s.Focus = FocusSearch
	s.Search.Activate()
	return s, true
}

// HandleCharInput forwards a rune to the active search box.
func HandleCharInput(s AppState, r rune) (AppState, bool) {
	if s.Focus != FocusSearch {
		return s, false
	}
	s.Search.HandleCharInput(r)
	return s, true
}

// HandleBackspace forwards a backspace to the active search box.
func HandleBackspace(s AppState) (AppState, bool) {
	if s.Focus != FocusSearch {
		return s, false
	}
	s.Search.HandleBackspace()
	return s, true
}

// HandleCursorLeft/HandleCursorRight move the search box cursor.
func HandleCursorLeft(s AppState) (AppState, bool) {
	if s.Focus != FocusSearch {
		return s, false
	}
	s.Search.HandleCursorLeft()
	return s, true
}

func HandleCursorRight(s AppState) (AppState, bool) {
	if s.Focus != FocusSearch {
		return s, false
	}
	s.Search.HandleCursorRight()
	return s, true
}

// SubmitSearch indexes matches across scope (internal/tui passes every
// conversation of the viewed session) and restores the pre-search
// focus (search itself never owns a pane).
func SubmitSearch(s AppState, scope []search.ScopedEntry) (AppState, bool) {
	if s.Focus != FocusSearch {
		return s, false
	}
	s.Search.Submit(scope)
	s.Focus = s.preSearchFocus
	s.refreshSearchHighlight()
	s.focusCurrentMatch()
	return s, true
}

// CancelSearch aborts typing/active search and restores prior focus.
func CancelSearch(s AppState) (AppState, bool) {
	wasActive := s.Search.State() != search.Inactive
	s.Search.Cancel()
	if s.Focus == FocusSearch {
		s.Focus = s.preSearchFocus
	}
	s.refreshSearchHighlight()
	return s, wasActive
}

// SearchNext/SearchPrev advance the current match, wrapping, then
// bring the newly current match into view.
func SearchNext(s AppState) (AppState, bool) {
	if s.Search.State() != search.Active {
		return s, false
	}
	s.Search.Next()
	s.refreshSearchHighlight()
	s.focusCurrentMatch()
	return s, true
}

func SearchPrev(s AppState) (AppState, bool) {
	if s.Search.State() != search.Active {
		return s, false
	}
	s.Search.Prev()
	s.refreshSearchHighlight()
	s.focusCurrentMatch()
	return s, true
}

// ToggleSessionModal flips Hidden <-> Visible.
func ToggleSessionModal(s AppState) (AppState, bool) {
	if s.ModalVisibility == ModalHidden {
		s.ModalVisibility = ModalVisible
		s.ModalSelected = viewstate.ViewedSessionIndex(s.Viewed, s.Log.SessionCount())
	} else {
		s.ModalVisibility = ModalHidden
	}
	return s, true
}

// ModalKey identifies one session-modal navigation input.
type ModalKey int

const (
	ModalUp ModalKey = iota
	ModalDown
	ModalHome
	ModalEnd
	ModalEnter
	ModalClose
	ModalSelectDigit
)

// SessionModalKey applies one session-modal navigation key. digit is
// only consulted when key == ModalSelectDigit.
func SessionModalKey(s AppState, key ModalKey, digit int) (AppState, bool) {
	if s.ModalVisibility != ModalVisible {
		return s, false
	}
	count := s.Log.SessionCount()
	if count == 0 {
		s.ModalVisibility = ModalHidden
		return s, true
	}

	switch key {
	case ModalUp:
		if s.ModalSelected > 0 {
			s.ModalSelected--
		}
	case ModalDown:
		if s.ModalSelected < count-1 {
			s.ModalSelected++
		}
	case ModalHome:
		s.ModalSelected = 0
	case ModalEnd:
		s.ModalSelected = count - 1
	case ModalSelectDigit:
		idx := digit - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= count {
			idx = count - 1
		}
		s.ModalSelected = idx
	case ModalClose:
		s.ModalVisibility = ModalHidden
		return s, true
	case ModalEnter:
		s.ModalVisibility = ModalHidden
		if s.ModalSelected == count-1 {
			s = onSessionChange(s, viewstate.ViewedSession{Kind: viewstate.Latest})
		} else {
			s = onSessionChange(s, viewstate.ViewedSession{Kind: viewstate.Pinned, Index: s.ModalSelected})
		}
	}
	return s, true
}

func onSessionChange(s AppState, newViewed viewstate.ViewedSession) AppState {
	s.Viewed = newViewed
	s.SubagentTab = 0
	if s.Focus == FocusSubagent {
		s.Focus = FocusMain
	}
	sv := s.currentSession()
	var newSessionID ids.SessionID
	if sv != nil {
		newSessionID = sv.ID
	}
	s.StatsFilter = stats.OnSessionChange(s.StatsFilter, newSessionID)
	return s
}

// ToggleHelp flips the help overlay. While visible it captures scroll;
// Scroll already checks HelpVisible first.
func ToggleHelp(s AppState) (AppState, bool) {
	s.HelpVisible = !s.HelpVisible
	return s, true
}

// CloseOverlay implements Esc's documented precedence: search > modal
// > help. Returns handled=false if nothing was open (caller may then
// treat Esc as a no-op or quit-prompt, per its own policy).
func CloseOverlay(s AppState) (AppState, bool) {
	if s.Search.State() != search.Inactive {
		return CancelSearch(s)
	}
	if s.ModalVisibility == ModalVisible {
		s.ModalVisibility = ModalHidden
		return s, true
	}
	if s.HelpVisible {
		s.HelpVisible = false
		return s, true
	}
	return s, false
}

// NextStatsFilter cycles the statistics filter.
func NextStatsFilter(s AppState) (AppState, bool) {
	sv := s.currentSession()
	var sessionID ids.SessionID
	var subagentIDs []ids.AgentID
	if sv != nil {
		sessionID = sv.ID
		subagentIDs = sv.SubagentIDs()
	}
	s.StatsFilter = stats.NextFilter(s.StatsFilter, sessionID, subagentIDs)
	return s, true
}

// OnStreamingAppend re-snaps the viewed session's main conversation to
// Bottom after a relayout, iff the viewed session is Latest and
// auto_scroll is enabled.
func OnStreamingAppend(s AppState) (AppState, bool) {
	if s.Viewed.Kind != viewstate.Latest {
		return s, false
	}
	sv := s.currentSession()
	if sv == nil || !sv.Main.AutoScroll() {
		return s, false
	}
	sv.Main.SetScroll(scroll.AtBottom())
	return s, true
}
