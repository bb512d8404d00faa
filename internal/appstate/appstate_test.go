package appstate

import (
	"fmt"
	"testing"
	"time"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
	"github.com/rgreenblatt/cclv-sub001/internal/viewstate"
)

func mustUUID(t *testing.T, s string) ids.EntryUUID {
	t.Helper()
	u, err := ids.NewEntryUUID(s)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func mustSessionID(t *testing.T, s string) ids.SessionID {
	t.Helper()
	id, err := ids.NewSessionID(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func validEntry(t *testing.T, uuid, session, agent, text string) *model.ConversationEntry {
	t.Helper()
	e := &model.ConversationEntry{
		Status:    model.StatusValid,
		UUID:      mustUUID(t, uuid),
		SessionID: mustSessionID(t, session),
		Timestamp: time.Now(),
		Kind:      model.KindUser,
		Message:   model.Message{Role: model.RoleUser, Text: text},
	}
	if agent != "" {
		aid, err := ids.NewAgentID(agent)
		if err != nil {
			t.Fatal(err)
		}
		e.AgentID = aid
	}
	return e
}

func newStateWithTwoSessions(t *testing.T) AppState {
	t.Helper()
	s := New(80)
	s.Log.Route(validEntry(t, "u1", "s1", "", "hello"))
	s.Log.Route(validEntry(t, "u2", "s1", "a1", "delegate work"))
	s.Log.Route(validEntry(t, "u3", "s2", "", "second session"))
	return *s
}

func TestCycleFocusSkipsSearch(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s, _ = CycleFocus(s)
	if s.Focus != FocusSubagent {
		t.Fatalf("got %v, want FocusSubagent", s.Focus)
	}
	s, _ = CycleFocus(s)
	if s.Focus != FocusStats {
		t.Fatalf("got %v, want FocusStats", s.Focus)
	}
	s, _ = CycleFocus(s)
	if s.Focus != FocusMain {
		t.Fatalf("got %v, want FocusMain (wrap)", s.Focus)
	}
}

func TestSelectTabOutOfRangeIsNoOpAndIgnoresZero(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s.Viewed = viewstate.ViewedSession{Kind: viewstate.Pinned, Index: 0} // s1 has 1 subagent

	s2, changed := SelectTab(s, 0)
	if changed {
		t.Fatal("n=0 must be a no-op")
	}
	if s2.Focus != s.Focus {
		t.Fatal("state must be unchanged for n=0")
	}

	s3, changed := SelectTab(s, 99)
	if changed {
		t.Fatal("out-of-range n must be a no-op")
	}
	_ = s3

	s4, changed := SelectTab(s, 2)
	if !changed {
		t.Fatal("expected tab 2 (first subagent) to be selectable")
	}
	if s4.Focus != FocusSubagent || s4.SubagentTab != 1 {
		t.Fatalf("got focus=%v tab=%d, want Subagent/1", s4.Focus, s4.SubagentTab)
	}
}

func TestNextTabWrapsAcrossMainAndSubagents(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s.Viewed = viewstate.ViewedSession{Kind: viewstate.Pinned, Index: 0}

	s, _ = NextTab(s) // main -> subagent 1
	if s.Focus != FocusSubagent || s.SubagentTab != 1 {
		t.Fatalf("got focus=%v tab=%d", s.Focus, s.SubagentTab)
	}
	s, _ = NextTab(s) // wraps back to main (only 1 subagent)
	if s.Focus != FocusMain {
		t.Fatalf("expected wrap to Main, got focus=%v tab=%d", s.Focus, s.SubagentTab)
	}
}

func TestToggleSessionModalOpensAtCurrentSelection(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s.Viewed = viewstate.ViewedSession{Kind: viewstate.Latest}

	s, _ = ToggleSessionModal(s)
	if s.ModalVisibility != ModalVisible {
		t.Fatal("expected modal visible")
	}
	if s.ModalSelected != 1 { // latest = index 1 (2nd session)
		t.Fatalf("got selected=%d, want 1", s.ModalSelected)
	}

	s, _ = ToggleSessionModal(s)
	if s.ModalVisibility != ModalHidden {
		t.Fatal("expected modal hidden on second toggle")
	}
}

func TestSessionModalEnterOnLastSetsLatest(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s, _ = ToggleSessionModal(s)
	s, _ = SessionModalKey(s, ModalEnd, 0)
	s, _ = SessionModalKey(s, ModalEnter, 0)

	if s.Viewed.Kind != viewstate.Latest {
		t.Fatalf("expected Latest after Enter on last session, got %+v", s.Viewed)
	}
	if s.ModalVisibility != ModalHidden {
		t.Fatal("expected modal closed after Enter")
	}
}

func TestSessionModalEnterOnNonLastSetsPinned(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s, _ = ToggleSessionModal(s)
	s, _ = SessionModalKey(s, ModalHome, 0)
	s, _ = SessionModalKey(s, ModalEnter, 0)

	if s.Viewed.Kind != viewstate.Pinned || s.Viewed.Index != 0 {
		t.Fatalf("expected Pinned(0), got %+v", s.Viewed)
	}
}

func TestCloseOverlayPrecedenceSearchBeforeModalBeforeHelp(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s.HelpVisible = true
	s, _ = ToggleSessionModal(s)
	s, _ = ActivateSearch(s)

	s, handled := CloseOverlay(s)
	if !handled {
		t.Fatal("expected CloseOverlay to handle the open search")
	}
	if s.Search.State() != 0 { // Inactive
		t.Fatal("expected search cancelled first")
	}
	if s.ModalVisibility != ModalVisible {
		t.Fatal("modal should still be open after first Esc")
	}

	s, handled = CloseOverlay(s)
	if !handled || s.ModalVisibility != ModalHidden {
		t.Fatal("expected second Esc to close the modal")
	}

	s, handled = CloseOverlay(s)
	if !handled || s.HelpVisible {
		t.Fatal("expected third Esc to close help")
	}

	_, handled = CloseOverlay(s)
	if handled {
		t.Fatal("expected fourth Esc to be a no-op")
	}
}

func TestHelpVisibleCapturesScrollInsteadOfPane(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s.HelpVisible = true
	s.HelpScroll = 5

	s, changed := Scroll(s, ScrollDown, 10)
	if !changed {
		t.Fatal("expected scroll to be handled by help overlay")
	}
	if s.HelpScroll != 6 {
		t.Fatalf("got HelpScroll=%d, want 6", s.HelpScroll)
	}
}

// buildLongConversation routes n single-line entries into session s1
// and lays it out: each entry renders as exactly 2 lines (one text
// line plus the always-present token-divider line), so n=50 yields a
// conversation with total_height=100 — a round number that makes
// overshoot/clamp arithmetic easy to verify by hand.
func buildLongConversation(t *testing.T, n int) *AppState {
	t.Helper()
	s := New(80)
	for i := 0; i < n; i++ {
		s.Log.Route(validEntry(t, fmt.Sprintf("u%d", i), "s1", "", fmt.Sprintf("entry %d", i)))
	}
	sv := s.Log.ViewedSessionView(s.Viewed)
	sv.Main.EnsureLayout(s.LayoutParams)
	return s
}

// TestScrollDownThenUpDoesNotCompoundOvershoot: total_height=100,
// viewport=24, Bottom -> 10x ScrollDown -> 1x ScrollUp must resolve to
// 75, not silently absorb the scroll-up by landing back on the same
// clamped offset (76) unbounded overshoot would otherwise produce.
func TestScrollDownThenUpDoesNotCompoundOvershoot(t *testing.T) {
	s := buildLongConversation(t, 50)
	viewport := 24

	cur, _ := Scroll(*s, ScrollEnd, viewport)
	s = &cur
	for i := 0; i < 10; i++ {
		cur, _ = Scroll(*s, ScrollDown, viewport)
		s = &cur
	}
	cur, _ = Scroll(*s, ScrollUp, viewport)
	s = &cur

	cv := s.Log.ViewedSessionView(s.Viewed).Main
	if got, want := cv.ResolvedScroll(viewport), 75; got != want {
		t.Fatalf("got resolved offset %d, want %d", got, want)
	}
}

// TestScrollDownReachingBottomSetsAutoScroll covers reaching the
// bottom by scrolling down into it, not just by jumping there: a
// plain ScrollDown that lands exactly on maxOffset must re-arm
// auto_scroll, not just ScrollEnd.
func TestScrollDownReachingBottomSetsAutoScroll(t *testing.T) {
	s := buildLongConversation(t, 50)
	viewport := 24
	maxOffset := 100 - viewport

	cur, _ := Scroll(*s, ScrollHome, viewport)
	s = &cur
	cv := s.Log.ViewedSessionView(s.Viewed).Main
	if cv.AutoScroll() {
		t.Fatal("expected auto_scroll=false right after ScrollHome")
	}

	for i := 0; i < maxOffset; i++ {
		cur, _ = Scroll(*s, ScrollDown, viewport)
		s = &cur
	}
	cv = s.Log.ViewedSessionView(s.Viewed).Main
	if got := cv.ResolvedScroll(viewport); got != maxOffset {
		t.Fatalf("setup invariant broken: resolved=%d want %d", got, maxOffset)
	}
	if !cv.AutoScroll() {
		t.Fatal("expected auto_scroll=true once ScrollDown reaches the bottom")
	}
}

func TestOnSessionChangeResetsSubagentTabAndFocus(t *testing.T) {
	s := newStateWithTwoSessions(t)
	s.Viewed = viewstate.ViewedSession{Kind: viewstate.Pinned, Index: 0}
	s.Focus = FocusSubagent
	s.SubagentTab = 1

	s = onSessionChange(s, viewstate.ViewedSession{Kind: viewstate.Pinned, Index: 1})
	if s.Focus != FocusMain || s.SubagentTab != 0 {
		t.Fatalf("got focus=%v tab=%d, want Main/0", s.Focus, s.SubagentTab)
	}
}
