package stats

import (
	"testing"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
	"github.com/rgreenblatt/cclv-sub001/internal/pricing"
)

func TestAggregateSumsUsagePerFilter(t *testing.T) {
	entries := []Entry{
		{SessionID: "s1", Message: model.Message{Model: "claude-sonnet", Usage: &model.Usage{InputTokens: 100, OutputTokens: 10}}},
		{SessionID: "s1", AgentID: "a1", Message: model.Message{Model: "claude-sonnet", Usage: &model.Usage{InputTokens: 50, OutputTokens: 5}}},
		{SessionID: "s2", Message: model.Message{Model: "claude-sonnet", Usage: &model.Usage{InputTokens: 20, OutputTokens: 2}}},
	}

	all := Aggregate(entries, Filter{Kind: AllSessionsCombined}, pricing.DefaultTable)
	if all.InputTokens != 170 {
		t.Fatalf("AllSessionsCombined InputTokens = %d, want 170", all.InputTokens)
	}

	sess := Aggregate(entries, Filter{Kind: Session, SessionID: "s1"}, pricing.DefaultTable)
	if sess.InputTokens != 150 {
		t.Fatalf("Session(s1) InputTokens = %d, want 150", sess.InputTokens)
	}

	main := Aggregate(entries, Filter{Kind: MainAgent, SessionID: "s1"}, pricing.DefaultTable)
	if main.InputTokens != 100 {
		t.Fatalf("MainAgent(s1) InputTokens = %d, want 100", main.InputTokens)
	}

	sub := Aggregate(entries, Filter{Kind: Subagent, AgentID: "a1"}, pricing.DefaultTable)
	if sub.InputTokens != 50 {
		t.Fatalf("Subagent(a1) InputTokens = %d, want 50", sub.InputTokens)
	}
}

func TestAggregateCountsToolUses(t *testing.T) {
	entries := []Entry{
		{SessionID: "s1", Message: model.Message{Blocks: []model.ContentBlock{
			{Type: model.BlockToolUse, ToolName: "Bash"},
			{Type: model.BlockText, Text: "hi"},
		}}},
	}
	got := Aggregate(entries, Filter{Kind: AllSessionsCombined}, pricing.DefaultTable)
	if got.ToolCallCount != 1 {
		t.Fatalf("ToolCallCount = %d, want 1", got.ToolCallCount)
	}
}

func TestNextFilterCycleOrder(t *testing.T) {
	sid := ids.SessionID("s1")
	subagents := []ids.AgentID{"b", "a"}

	f := Filter{Kind: AllSessionsCombined}
	f = NextFilter(f, sid, subagents)
	if f.Kind != Session {
		t.Fatalf("step1 = %v, want Session", f.Kind)
	}
	f = NextFilter(f, sid, subagents)
	if f.Kind != MainAgent {
		t.Fatalf("step2 = %v, want MainAgent", f.Kind)
	}
	f = NextFilter(f, sid, subagents)
	if f.Kind != Subagent || f.AgentID != "a" {
		t.Fatalf("step3 = %+v, want Subagent(a) (sorted first)", f)
	}
	f = NextFilter(f, sid, subagents)
	if f.Kind != Subagent || f.AgentID != "b" {
		t.Fatalf("step4 = %+v, want Subagent(b)", f)
	}
	f = NextFilter(f, sid, subagents)
	if f.Kind != AllSessionsCombined {
		t.Fatalf("step5 = %v, want AllSessionsCombined (full cycle)", f.Kind)
	}
}

func TestOnSessionChangeRebindsSessionScopedOnly(t *testing.T) {
	sess := OnSessionChange(Filter{Kind: Session, SessionID: "s1"}, "s2")
	if sess.SessionID != "s2" {
		t.Fatalf("Session filter not rebound: %+v", sess)
	}
	sub := OnSessionChange(Filter{Kind: Subagent, AgentID: "a1"}, "s2")
	if sub.Kind != Subagent || sub.AgentID != "a1" {
		t.Fatalf("Subagent filter should be preserved unchanged: %+v", sub)
	}
	all := OnSessionChange(Filter{Kind: AllSessionsCombined}, "s2")
	if all.Kind != AllSessionsCombined {
		t.Fatalf("AllSessionsCombined should be preserved: %+v", all)
	}
}
