// Package ids defines validated identifier newtypes shared across the
// view-state engine: entry UUIDs, session IDs, agent IDs, and tool-use
// IDs. Each is constructed only through a smart constructor that
// rejects the empty string.
package ids

import "errors"

// ErrEmptyIdentifier is returned by every smart constructor in this
// package when given an empty string.
var ErrEmptyIdentifier = errors.New("ids: identifier must not be empty")

// UnknownSessionID is the pre-validated sentinel session ID used when
// ingestion cannot associate an entry with any known session.
const UnknownSessionID = SessionID("unknown-session")

// EntryUUID identifies a single conversation entry.
type EntryUUID string

// NewEntryUUID validates and constructs an EntryUUID.
func NewEntryUUID(s string) (EntryUUID, error) {
	if s == "" {
		return "", ErrEmptyIdentifier
	}
	return EntryUUID(s), nil
}

func (u EntryUUID) String() string { return string(u) }

// SessionID identifies a session: the set of entries sharing it.
type SessionID string

// NewSessionID validates and constructs a SessionID.
func NewSessionID(s string) (SessionID, error) {
	if s == "" {
		return "", ErrEmptyIdentifier
	}
	return SessionID(s), nil
}

func (s SessionID) String() string { return string(s) }

// AgentID identifies a subagent's delegated conversation.
type AgentID string

// NewAgentID validates and constructs an AgentID.
func NewAgentID(s string) (AgentID, error) {
	if s == "" {
		return "", ErrEmptyIdentifier
	}
	return AgentID(s), nil
}

func (a AgentID) String() string { return string(a) }

// ToolUseID identifies a tool invocation, linking a ToolUse content
// block to its matching ToolResult block.
type ToolUseID string

// NewToolUseID validates and constructs a ToolUseID.
func NewToolUseID(s string) (ToolUseID, error) {
	if s == "" {
		return "", ErrEmptyIdentifier
	}
	return ToolUseID(s), nil
}

func (t ToolUseID) String() string { return string(t) }
