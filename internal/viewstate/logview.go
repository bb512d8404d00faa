package viewstate

import (
	"sort"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
	"github.com/rgreenblatt/cclv-sub001/internal/render"
)

// SessionView is one session's main conversation plus its subagent
// conversations, keyed by AgentID and exposed in lexicographic tab
// order (DESIGN.md Open Question 2: tabs sort lexicographically by
// AgentID, not first-appearance order, so tab position is stable and
// predictable across runs of the same log).
type SessionView struct {
	ID      ids.SessionID
	Main    *ConversationViewState
	agents  map[ids.AgentID]*ConversationViewState
	agentOrder []ids.AgentID // maintained sorted
}

func newSessionView(id ids.SessionID) *SessionView {
	return &SessionView{
		ID:     id,
		Main:   New(false),
		agents: make(map[ids.AgentID]*ConversationViewState),
	}
}

// SubagentIDs returns the session's subagent ids in lexicographic
// (tab display) order.
func (s *SessionView) SubagentIDs() []ids.AgentID {
	return s.agentOrder
}

// Subagent returns the subagent conversation for id, or nil.
func (s *SessionView) Subagent(id ids.AgentID) *ConversationViewState {
	return s.agents[id]
}

// SubagentCount returns the number of subagent conversations.
func (s *SessionView) SubagentCount() int { return len(s.agentOrder) }

func (s *SessionView) getOrCreateSubagent(id ids.AgentID) *ConversationViewState {
	if cv, ok := s.agents[id]; ok {
		return cv
	}
	cv := New(true)
	s.agents[id] = cv
	s.agentOrder = append(s.agentOrder, id)
	sort.Slice(s.agentOrder, func(i, j int) bool {
		return s.agentOrder[i] < s.agentOrder[j]
	})
	return cv
}

// ViewedSessionKind discriminates the two viewed_session selector
// variants: always-the-newest-session, or pinned to a fixed index.
type ViewedSessionKind int

const (
	Latest ViewedSessionKind = iota
	Pinned
)

// ViewedSession is the app-level session selector.
type ViewedSession struct {
	Kind  ViewedSessionKind
	Index int // meaningful only when Kind == Pinned
}

// LogViewState owns the ordered sequence of per-session conversations
// and routes incoming entries to the right session/subagent
// conversation as they arrive.
type LogViewState struct {
	sessions      []*SessionView
	bySessionID   map[ids.SessionID]*SessionView
	unknownID     ids.SessionID
}

// NewLogViewState constructs an empty multi-session log view-state.
func NewLogViewState() *LogViewState {
	return &LogViewState{
		bySessionID: make(map[ids.SessionID]*SessionView),
		unknownID:   ids.UnknownSessionID,
	}
}

// SessionCount returns the number of sessions observed so far.
func (l *LogViewState) SessionCount() int { return len(l.sessions) }

// Sessions returns the sessions in first-appearance order.
func (l *LogViewState) Sessions() []*SessionView { return l.sessions }

func (l *LogViewState) getOrCreateSession(id ids.SessionID) *SessionView {
	if sv, ok := l.bySessionID[id]; ok {
		return sv
	}
	sv := newSessionView(id)
	l.bySessionID[id] = sv
	l.sessions = append(l.sessions, sv)
	return sv
}

// Route appends one entry into the correct session/subagent
// conversation: malformed entries with a known session id route like
// valid ones; those without route to the most recently observed
// session, or a lazily-created synthetic unknown-session session if
// none exists yet.
func (l *LogViewState) Route(entry *model.ConversationEntry) {
	sessionID := l.resolveSessionID(entry)
	sv := l.getOrCreateSession(sessionID)

	if entry.Status == model.StatusValid && entry.IsSubagent() {
		cv := sv.getOrCreateSubagent(entry.AgentID)
		cv.Append(entry)
		return
	}
	sv.Main.Append(entry)
}

func (l *LogViewState) resolveSessionID(entry *model.ConversationEntry) ids.SessionID {
	switch entry.Status {
	case model.StatusValid:
		return entry.SessionID
	default: // Malformed
		if entry.MalformedSessionID != "" {
			return entry.MalformedSessionID
		}
		if len(l.sessions) > 0 {
			return l.sessions[len(l.sessions)-1].ID
		}
		return l.unknownID
	}
}

// ViewedSessionIndex resolves the selector against the current
// session count.
func ViewedSessionIndex(sel ViewedSession, sessionCount int) int {
	if sessionCount == 0 {
		return 0
	}
	switch sel.Kind {
	case Latest:
		return sessionCount - 1
	case Pinned:
		i := sel.Index
		if i < 0 {
			i = 0
		}
		if i >= sessionCount {
			i = sessionCount - 1
		}
		return i
	default:
		return sessionCount - 1
	}
}

// ViewedSessionView resolves the selector to the actual SessionView.
// Returns nil if there are no sessions yet. This is the only accessor
// the TUI layer may use for "the conversation to render/route input
// to" — bypassing the viewed-session selector with some other internal
// accessor is exactly how a blank screen after switching sessions, or
// clicks landing on the wrong (non-last) session, would sneak back in.
func (l *LogViewState) ViewedSessionView(sel ViewedSession) *SessionView {
	if len(l.sessions) == 0 {
		return nil
	}
	i := ViewedSessionIndex(sel, len(l.sessions))
	return l.sessions[i]
}

// Timeline concatenates every session's main conversation entries in
// session-then-entry order, interleaving a SessionSeparator line
// before each session after the first. This exists solely to produce
// the cross-session separator for a combined view, since a single
// ConversationViewState never mixes sessions by construction.
func (l *LogViewState) Timeline(params LayoutParams) []string {
	var out []string
	for i, sv := range l.sessions {
		if i > 0 {
			out = append(out, render.SessionSeparator(sv.ID, sv.Main.theme))
		}
		if sv.Main.idx == nil || sv.Main.NeedsRelayout(params) {
			sv.Main.RecomputeLayout(params)
		}
		for j := range sv.Main.entries {
			out = append(out, render.ComputeEntryLines(sv.Main.entries[j], sv.Main.renderParams(j, params))...)
		}
	}
	return out
}
