// Package stats implements filtered token/cost/tool-count aggregation,
// plus the filter-cycling sequence used when focus is on the Stats
// pane.
//
// Grounded on wilbur182-forge's internal/adapter/claudecode stats
// aggregation (which sums usage per message and derives cost via a
// pricing table), generalized from that adapter's flat per-session
// aggregate into a four-way filter scope (all sessions combined, one
// session, one session's main agent only, one subagent).
package stats

import (
	"sort"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
	"github.com/rgreenblatt/cclv-sub001/internal/pricing"
)

// FilterKind discriminates the four stats filter scopes.
type FilterKind int

const (
	AllSessionsCombined FilterKind = iota
	Session
	MainAgent
	Subagent
)

// Filter selects the scope stats are aggregated over.
type Filter struct {
	Kind      FilterKind
	SessionID ids.SessionID // Session, MainAgent
	AgentID   ids.AgentID   // Subagent
}

// Totals is the aggregate result for one filter's scope.
type Totals struct {
	InputTokens        int
	OutputTokens       int
	CacheCreationInput int
	CacheReadInput     int
	ToolCallCount      int
	CostUSD            float64
}

// Entry is the minimal shape Aggregate needs per entry: its session
// id, agent id (empty for main), and message. Kept independent of
// internal/viewstate so this package has no dependency on the TUI's
// owning structures.
type Entry struct {
	SessionID ids.SessionID
	AgentID   ids.AgentID
	Message   model.Message
}

func matchesFilter(f Filter, e Entry) bool {
	switch f.Kind {
	case AllSessionsCombined:
		return true
	case Session:
		return e.SessionID == f.SessionID
	case MainAgent:
		return e.SessionID == f.SessionID && e.AgentID == ""
	case Subagent:
		return e.AgentID == f.AgentID
	default:
		return false
	}
}

// Aggregate sums token usage (preserving cache categories) and tool
// counts from entries matching filter, deriving cost per-message via
// table.
func Aggregate(entries []Entry, filter Filter, table pricing.Table) Totals {
	var t Totals
	for _, e := range entries {
		if !matchesFilter(filter, e) {
			continue
		}
		for _, b := range e.Message.Blocks {
			if b.Type == model.BlockToolUse {
				t.ToolCallCount++
			}
		}
		u := e.Message.Usage
		if u == nil {
			continue
		}
		t.InputTokens += u.InputTokens
		t.OutputTokens += u.OutputTokens
		t.CacheCreationInput += u.CacheCreationInput
		t.CacheReadInput += u.CacheReadInput
		t.CostUSD += pricing.ModelCost(table, e.Message.Model, pricing.Usage{
			InputTokens:        u.InputTokens,
			OutputTokens:       u.OutputTokens,
			CacheCreationInput: u.CacheCreationInput,
			CacheReadInput:     u.CacheReadInput,
		})
	}
	return t
}

// NextFilter cycles:
// AllSessions -> Session(current) -> MainAgent(current) ->
// Subagent(a0) -> ... -> Subagent(an) -> AllSessions.
func NextFilter(current Filter, sessionID ids.SessionID, subagentIDs []ids.AgentID) Filter {
	sorted := make([]ids.AgentID, len(subagentIDs))
	copy(sorted, subagentIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	switch current.Kind {
	case AllSessionsCombined:
		return Filter{Kind: Session, SessionID: sessionID}
	case Session:
		return Filter{Kind: MainAgent, SessionID: sessionID}
	case MainAgent:
		if len(sorted) == 0 {
			return Filter{Kind: AllSessionsCombined}
		}
		return Filter{Kind: Subagent, AgentID: sorted[0]}
	case Subagent:
		idx := -1
		for i, a := range sorted {
			if a == current.AgentID {
				idx = i
				break
			}
		}
		if idx < 0 || idx == len(sorted)-1 {
			return Filter{Kind: AllSessionsCombined}
		}
		return Filter{Kind: Subagent, AgentID: sorted[idx+1]}
	default:
		return Filter{Kind: AllSessionsCombined}
	}
}

// OnSessionChange rebinds a session-scoped filter to the new session
// id: Session/MainAgent rebind; AllSessionsCombined and
// Subagent(agent_id) are preserved unchanged (identity-scoped, not
// session-scoped, for Subagent).
func OnSessionChange(current Filter, newSessionID ids.SessionID) Filter {
	switch current.Kind {
	case Session:
		return Filter{Kind: Session, SessionID: newSessionID}
	case MainAgent:
		return Filter{Kind: MainAgent, SessionID: newSessionID}
	default:
		return current
	}
}
