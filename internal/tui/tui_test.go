package tui

import (
	"testing"

	"github.com/rgreenblatt/cclv-sub001/internal/appstate"
	"github.com/rgreenblatt/cclv-sub001/internal/config"
	"github.com/rgreenblatt/cclv-sub001/internal/mouse"
	"github.com/rgreenblatt/cclv-sub001/internal/parser"
)

func mainLine(sessionID, uuid, text string) string {
	return `{"type":"user","message":{"role":"user","content":"` + text + `"},"sessionId":"` + sessionID + `","uuid":"` + uuid + `","timestamp":"2025-12-25T10:00:00Z"}`
}

func subagentLine(sessionID, agentID, uuid, text string) string {
	return `{"type":"user","message":{"role":"user","content":"` + text + `"},"sessionId":"` + sessionID + `","agentId":"` + agentID + `","uuid":"` + uuid + `","timestamp":"2025-12-25T10:00:01Z"}`
}

func newTestRoot(t *testing.T) *Root {
	t.Helper()
	r := New(nil, "", config.Default(), nil, nil)
	r.width, r.height = 80, 24
	r.state.LayoutParams.Width = r.contentWidth()

	for _, ln := range []string{
		mainLine("s1", "u1", "hello main"),
		subagentLine("s1", "a1", "u2", "hello sub"),
	} {
		entry := parser.ParseEntryGraceful(ln, 1)
		r.state.Log.Route(entry)
	}
	return r
}

func TestCurrentConversationResolvesMainByDefault(t *testing.T) {
	r := newTestRoot(t)
	cv := r.currentConversation()
	if cv == nil {
		t.Fatal("expected a main conversation")
	}
	if cv.Len() != 1 {
		t.Fatalf("got %d entries, want 1", cv.Len())
	}
}

func TestCurrentConversationResolvesFocusedSubagentTab(t *testing.T) {
	r := newTestRoot(t)
	s, ok := appstate.CycleFocus(*r.state)
	if !ok {
		t.Fatal("CycleFocus should report handled")
	}
	*r.state = s
	if r.state.Focus != appstate.FocusSubagent {
		t.Fatalf("got focus %v, want FocusSubagent", r.state.Focus)
	}
	s, _ = appstate.SelectTab(*r.state, 2)
	*r.state = s

	cv := r.currentConversation()
	if cv == nil {
		t.Fatal("expected a subagent conversation")
	}
	if cv.Len() != 1 {
		t.Fatalf("got %d entries, want 1", cv.Len())
	}
}

func TestCurrentConversationNilWhenFocusStatsOrSearch(t *testing.T) {
	r := newTestRoot(t)
	s, _ := appstate.FocusStatsPane(*r.state)
	*r.state = s
	if cv := r.currentConversation(); cv != nil {
		t.Error("expected nil conversation in FocusStats")
	}
	s, _ = appstate.ActivateSearch(*r.state)
	*r.state = s
	if cv := r.currentConversation(); cv != nil {
		t.Error("expected nil conversation in FocusSearch")
	}
}

func TestBuildSearchScopeCoversMainAndSubagents(t *testing.T) {
	r := newTestRoot(t)
	scope := r.buildSearchScope()
	if len(scope) != 2 {
		t.Fatalf("got %d scoped entries, want 2 (main + subagent)", len(scope))
	}
}

func TestDispatchClickTabSwitchesFocusedTab(t *testing.T) {
	r := newTestRoot(t)
	r.dispatchClick(mouse.MouseAction{
		Type:   mouse.ActionClick,
		Region: &mouse.Region{Data: hitData{Kind: hitTab, Index: 1}},
	})
	if r.state.Focus != appstate.FocusSubagent || r.state.SubagentTab != 1 {
		t.Fatalf("got focus=%v tab=%d, want FocusSubagent/1", r.state.Focus, r.state.SubagentTab)
	}
}

func TestDispatchClickStatsTabFocusesStats(t *testing.T) {
	r := newTestRoot(t)
	r.dispatchClick(mouse.MouseAction{
		Type:   mouse.ActionClick,
		Region: &mouse.Region{Data: hitData{Kind: hitStatsTab}},
	})
	if r.state.Focus != appstate.FocusStats {
		t.Fatalf("got focus %v, want FocusStats", r.state.Focus)
	}
}

func TestTabLabelsMainFirstThenSortedSubagents(t *testing.T) {
	r := newTestRoot(t)
	sv := r.state.Log.ViewedSessionView(r.state.Viewed)
	labels := tabLabels(sv)
	if len(labels) != 2 || labels[0] != "Main" || labels[1] != "a1" {
		t.Fatalf("got %v, want [Main a1]", labels)
	}
}

func TestRenderDoesNotPanicAcrossFocusModes(t *testing.T) {
	r := newTestRoot(t)
	modes := []func(){
		func() {},
		func() { s, _ := appstate.FocusStatsPane(*r.state); *r.state = s },
		func() { s, _ := appstate.ActivateSearch(*r.state); *r.state = s },
		func() { s, _ := appstate.ToggleSessionModal(*r.state); *r.state = s },
		func() { s, _ := appstate.ToggleHelp(*r.state); *r.state = s },
	}
	for _, apply := range modes {
		apply()
		if out := r.render(); out == "" {
			t.Error("render() returned empty string")
		}
	}
}

func TestExitCodeReflectsFatalErr(t *testing.T) {
	r := newTestRoot(t)
	if r.ExitCode() != 0 {
		t.Fatalf("got %d, want 0 before any error", r.ExitCode())
	}
	r.fatalErr = errTest{}
	if r.ExitCode() != 1 {
		t.Fatalf("got %d, want 1 after a fatal error", r.ExitCode())
	}
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
