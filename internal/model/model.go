// Package model defines the conversation data model: entries, messages,
// content blocks, and usage records ingested from a Claude Code JSONL
// log. Shapes are grounded on the teacher's claude-code adapter
// (internal/adapter/claudecode in wilbur182-forge), generalized from a
// multi-source adapter abstraction down to this program's single log
// format.
package model

import (
	"time"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
)

// EntryStatus discriminates the two variants of ConversationEntry.
type EntryStatus int

const (
	// StatusValid marks an entry with fully parsed, structured fields.
	StatusValid EntryStatus = iota
	// StatusMalformed marks an entry that failed to parse; it carries
	// only diagnostic information and always renders as one line.
	StatusMalformed
)

// EntryKind classifies a Valid entry's role in the conversation.
type EntryKind int

const (
	KindUser EntryKind = iota
	KindAssistant
	KindSummary
	KindSystem
)

// Role identifies the speaker of a Message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleSystem
)

// ConversationEntry is one record parsed from a JSONL log line. It is
// either Valid (Status == StatusValid, with Message/Kind/etc populated)
// or Malformed (Status == StatusMalformed, with only diagnostic
// fields populated).
type ConversationEntry struct {
	Status EntryStatus

	// Valid fields.
	UUID      ids.EntryUUID
	ParentUUID ids.EntryUUID // zero value if none
	SessionID ids.SessionID
	AgentID   ids.AgentID // zero value marks a main-agent entry
	Timestamp time.Time
	Kind      EntryKind
	Message   Message
	Metadata  map[string]string
	// SystemMetadata carries free-form fields attached to System-kind
	// entries (e.g. hook names); nil when absent.
	SystemMetadata map[string]string

	// Malformed fields.
	LineNumber int
	RawText    string
	Reason     string
	// MalformedSessionID is the best-effort session association for a
	// Malformed entry; empty when unknown (routed to the synthetic
	// unknown-session conversation).
	MalformedSessionID ids.SessionID
}

// IsSubagent reports whether this entry belongs to a subagent
// conversation rather than its session's main conversation.
func (e *ConversationEntry) IsSubagent() bool {
	return e.AgentID != ""
}

// Message is one structured message: a role plus either plain text
// content or an ordered sequence of content blocks, an optional usage
// record, and an optional model identifier.
type Message struct {
	Role    Role
	Text    string // used when Blocks is empty and content was a plain string
	Blocks  []ContentBlock
	Usage   *Usage
	Model   string
}

// HasBlocks reports whether this message carries structured content
// blocks rather than a plain string.
func (m Message) HasBlocks() bool { return len(m.Blocks) > 0 }

// BlockType discriminates ContentBlock variants.
type BlockType int

const (
	BlockText BlockType = iota
	BlockThinking
	BlockToolUse
	BlockToolResult
)

// ContentBlock is a single block within a structured message.
type ContentBlock struct {
	Type BlockType

	// Text / Thinking.
	Text string

	// ToolUse.
	ToolUseID ids.ToolUseID
	ToolName  string
	ToolInput string // raw JSON

	// ToolResult.
	ToolResultFor ids.ToolUseID // the ToolUseID this result answers
	ResultText    string
	IsError       bool
}

// Usage is the token-accounting record optionally attached to a
// message.
type Usage struct {
	InputTokens          int
	OutputTokens         int
	CacheCreationInput   int
	CacheReadInput       int
	EphemeralCache5m     int
	EphemeralCache1h     int
}

// ReadNonCached is input tokens that were not served from cache.
func (u Usage) ReadNonCached() int { return u.InputTokens + u.CacheCreationInput }

// ReadTotal is all input-side tokens, cached or not.
func (u Usage) ReadTotal() int {
	return u.InputTokens + u.CacheCreationInput + u.CacheReadInput
}

// ContextTokens is this entry's own context size; never accumulated
// across entries (spec invariant: token-divider non-accumulation).
func (u Usage) ContextTokens() int {
	return u.InputTokens + u.CacheCreationInput + u.CacheReadInput + u.OutputTokens
}
