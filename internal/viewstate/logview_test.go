package viewstate

import (
	"testing"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
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

func validEntry(t *testing.T, uuid, session string, agent ids.AgentID) *model.ConversationEntry {
	return &model.ConversationEntry{
		Status:    model.StatusValid,
		UUID:      mustUUID(t, uuid),
		SessionID: mustSessionID(t, session),
		AgentID:   agent,
		Kind:      model.KindUser,
		Message:   model.Message{Role: model.RoleUser, Text: "hi"},
	}
}

func malformed(line int, sessionID ids.SessionID) *model.ConversationEntry {
	return &model.ConversationEntry{
		Status:             model.StatusMalformed,
		LineNumber:         line,
		Reason:             "invalid JSON",
		MalformedSessionID: sessionID,
	}
}

// TestMalformedEntryRoutesWithKnownSession verifies a malformed entry
// carrying a known session id routes alongside valid entries from that
// same session instead of being dropped or misfiled.
func TestMalformedEntryRoutesWithKnownSession(t *testing.T) {
	lv := NewLogViewState()
	lv.Route(validEntry(t, "u1", "s1", ""))
	lv.Route(malformed(2, mustSessionID(t, "s1")))
	lv.Route(validEntry(t, "u2", "s1", ""))

	sv := lv.ViewedSessionView(ViewedSession{Kind: Latest})
	if sv == nil {
		t.Fatal("expected a session")
	}
	if sv.Main.Len() != 3 {
		t.Fatalf("main conversation len = %d, want 3", sv.Main.Len())
	}
	mid := sv.Main.Get(1)
	if mid.Status != model.StatusMalformed || mid.LineNumber != 2 {
		t.Fatalf("entry 1 = %+v, want malformed line 2", mid)
	}
}

// TestSubagentRoutingSurvivesMalformedEntry verifies subagent entries
// route to their own conversation even when a malformed entry for the
// same session interleaves with them.
func TestSubagentRoutingSurvivesMalformedEntry(t *testing.T) {
	lv := NewLogViewState()
	lv.Route(validEntry(t, "u1", "s1", ""))
	lv.Route(validEntry(t, "u2", "s1", "a7"))
	lv.Route(malformed(3, mustSessionID(t, "s1")))

	sv := lv.ViewedSessionView(ViewedSession{Kind: Latest})
	if sv.Main.Len() != 1 {
		t.Fatalf("main len = %d, want 1", sv.Main.Len())
	}
	if sv.SubagentCount() != 1 {
		t.Fatalf("subagent count = %d, want 1", sv.SubagentCount())
	}
	agentID := ids.AgentID("a7")
	sub := sv.Subagent(agentID)
	if sub == nil {
		t.Fatal("expected subagent a7")
	}
	if sub.Len() != 2 {
		t.Fatalf("subagent a7 len = %d, want 2 (one valid, one malformed)", sub.Len())
	}
}

func TestMalformedWithoutSessionRoutesToMostRecent(t *testing.T) {
	lv := NewLogViewState()
	lv.Route(validEntry(t, "u1", "s1", ""))
	lv.Route(&model.ConversationEntry{Status: model.StatusMalformed, LineNumber: 9, Reason: "empty uuid"})

	if lv.SessionCount() != 1 {
		t.Fatalf("session count = %d, want 1 (malformed without session id must not create a new session)", lv.SessionCount())
	}
	sv := lv.ViewedSessionView(ViewedSession{Kind: Latest})
	if sv.Main.Len() != 2 {
		t.Fatalf("main len = %d, want 2", sv.Main.Len())
	}
}

func TestMalformedWithoutSessionAndNoPriorSessionCreatesUnknown(t *testing.T) {
	lv := NewLogViewState()
	lv.Route(&model.ConversationEntry{Status: model.StatusMalformed, LineNumber: 1, Reason: "empty uuid"})

	if lv.SessionCount() != 1 {
		t.Fatalf("session count = %d, want 1", lv.SessionCount())
	}
	sv := lv.sessions[0]
	if sv.ID != ids.UnknownSessionID {
		t.Fatalf("session id = %q, want synthetic unknown-session id", sv.ID)
	}
}

func TestSubagentTabsSortedLexicographically(t *testing.T) {
	lv := NewLogViewState()
	lv.Route(validEntry(t, "u1", "s1", "zeta"))
	lv.Route(validEntry(t, "u2", "s1", "alpha"))
	lv.Route(validEntry(t, "u3", "s1", "mid"))

	sv := lv.ViewedSessionView(ViewedSession{Kind: Latest})
	order := sv.SubagentIDs()
	want := []ids.AgentID{"alpha", "mid", "zeta"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestViewedSessionIndexSelectors(t *testing.T) {
	if got := ViewedSessionIndex(ViewedSession{Kind: Latest}, 5); got != 4 {
		t.Fatalf("Latest with 5 sessions = %d, want 4", got)
	}
	if got := ViewedSessionIndex(ViewedSession{Kind: Pinned, Index: 2}, 5); got != 2 {
		t.Fatalf("Pinned(2) with 5 sessions = %d, want 2", got)
	}
	if got := ViewedSessionIndex(ViewedSession{Kind: Pinned, Index: 99}, 5); got != 4 {
		t.Fatalf("Pinned(99) clamp = %d, want 4", got)
	}
}

func TestSessionsAppendInFirstAppearanceOrder(t *testing.T) {
	lv := NewLogViewState()
	lv.Route(validEntry(t, "u1", "s2", ""))
	lv.Route(validEntry(t, "u2", "s1", ""))
	lv.Route(validEntry(t, "u3", "s2", ""))

	if lv.SessionCount() != 2 {
		t.Fatalf("session count = %d, want 2", lv.SessionCount())
	}
	if lv.sessions[0].ID.String() != "s2" || lv.sessions[1].ID.String() != "s1" {
		t.Fatalf("sessions in wrong order: %q, %q", lv.sessions[0].ID, lv.sessions[1].ID)
	}
}
