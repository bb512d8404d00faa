// Package parser implements parse_entry_graceful: turning one raw
// JSONL line from a Claude Code conversation log into a
// model.ConversationEntry, total and never failing the call — invalid
// lines become Malformed entries, never a Go error returned to the
// caller.
//
// Grounded on wilbur182-forge's internal/adapter/claudecode line
// decoding (Type/Message/Usage field shapes, content-block dispatch on
// block "type" discriminators: text/thinking/tool_use/tool_result).
// That adapter's own wire-format structs were not present in the
// retrieved file set (filtered out alongside its pricing package), so
// the structs below are reconstructed from the JSON shapes its own
// tests assert against (parser_test.go), not invented independently.
package parser

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
)

// rawEntry mirrors one JSONL line's top-level shape.
type rawEntry struct {
	Type      string          `json:"type"`
	UUID      string          `json:"uuid"`
	ParentUUID string         `json:"parentUuid"`
	SessionID string          `json:"sessionId"`
	AgentID   string          `json:"agentId"`
	Timestamp time.Time       `json:"timestamp"`
	Message   *rawMessage     `json:"message"`
	CWD       string          `json:"cwd"`
	GitBranch string          `json:"gitBranch"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Model   string          `json:"model"`
	Usage   *rawUsage       `json:"usage"`
}

type rawUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	EphemeralCache5mTokens   int `json:"cache_creation_ephemeral_5m_input_tokens"`
	EphemeralCache1hTokens   int `json:"cache_creation_ephemeral_1h_input_tokens"`
}

// rawBlock is one element of a structured content array.
type rawBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"` // string or []rawBlock
	IsError   bool            `json:"is_error"`
}

// ParseEntryGraceful parses one newline-stripped JSONL line. It never
// returns an error: malformed input yields a Malformed entry carrying
// the line number and a human-readable reason.
func ParseEntryGraceful(rawLine string, lineNumber int) *model.ConversationEntry {
	var raw rawEntry
	if err := json.Unmarshal([]byte(rawLine), &raw); err != nil {
		return malformed(lineNumber, rawLine, fmt.Sprintf("invalid JSON: %v", err))
	}

	uuid, err := ids.NewEntryUUID(raw.UUID)
	if err != nil {
		return malformedWithSession(lineNumber, rawLine, "empty uuid", raw.SessionID)
	}
	sessionID, err := ids.NewSessionID(raw.SessionID)
	if err != nil {
		return malformed(lineNumber, rawLine, "empty sessionId")
	}

	var parentUUID ids.EntryUUID
	if raw.ParentUUID != "" {
		parentUUID, _ = ids.NewEntryUUID(raw.ParentUUID)
	}
	var agentID ids.AgentID
	if raw.AgentID != "" {
		agentID, _ = ids.NewAgentID(raw.AgentID)
	}

	kind, ok := parseKind(raw.Type)
	if !ok {
		return malformedWithSession(lineNumber, rawLine, fmt.Sprintf("unrecognized type %q", raw.Type), raw.SessionID)
	}

	entry := &model.ConversationEntry{
		Status:     model.StatusValid,
		UUID:       uuid,
		ParentUUID: parentUUID,
		SessionID:  sessionID,
		AgentID:    agentID,
		Timestamp:  raw.Timestamp,
		Kind:       kind,
	}

	if raw.Message != nil {
		entry.Message = parseMessage(raw.Message)
	} else {
		entry.Message = model.Message{Role: roleForKind(kind)}
	}

	if raw.CWD != "" || raw.GitBranch != "" {
		entry.SystemMetadata = map[string]string{}
		if raw.CWD != "" {
			entry.SystemMetadata["cwd"] = raw.CWD
		}
		if raw.GitBranch != "" {
			entry.SystemMetadata["gitBranch"] = raw.GitBranch
		}
	}

	return entry
}

func parseKind(t string) (model.EntryKind, bool) {
	switch t {
	case "user":
		return model.KindUser, true
	case "assistant":
		return model.KindAssistant, true
	case "summary":
		return model.KindSummary, true
	case "system", "tool_result":
		return model.KindSystem, true
	default:
		return 0, false
	}
}

func roleForKind(k model.EntryKind) model.Role {
	switch k {
	case model.KindUser:
		return model.RoleUser
	case model.KindAssistant:
		return model.RoleAssistant
	default:
		return model.RoleSystem
	}
}

func parseMessage(raw *rawMessage) model.Message {
	msg := model.Message{
		Model: raw.Model,
	}
	switch raw.Role {
	case "user":
		msg.Role = model.RoleUser
	case "assistant":
		msg.Role = model.RoleAssistant
	default:
		msg.Role = model.RoleSystem
	}

	if raw.Usage != nil {
		msg.Usage = &model.Usage{
			InputTokens:        raw.Usage.InputTokens,
			OutputTokens:       raw.Usage.OutputTokens,
			CacheCreationInput: raw.Usage.CacheCreationInputTokens,
			CacheReadInput:     raw.Usage.CacheReadInputTokens,
			EphemeralCache5m:   raw.Usage.EphemeralCache5mTokens,
			EphemeralCache1h:   raw.Usage.EphemeralCache1hTokens,
		}
	}

	if len(raw.Content) == 0 {
		return msg
	}

	// content is either a plain JSON string or an array of blocks.
	var asString string
	if err := json.Unmarshal(raw.Content, &asString); err == nil {
		msg.Text = asString
		return msg
	}

	var rawBlocks []rawBlock
	if err := json.Unmarshal(raw.Content, &rawBlocks); err != nil {
		return msg
	}
	msg.Blocks = make([]model.ContentBlock, 0, len(rawBlocks))
	for _, rb := range rawBlocks {
		msg.Blocks = append(msg.Blocks, convertBlock(rb))
	}
	return msg
}

func convertBlock(rb rawBlock) model.ContentBlock {
	switch rb.Type {
	case "text":
		return model.ContentBlock{Type: model.BlockText, Text: rb.Text}
	case "thinking":
		return model.ContentBlock{Type: model.BlockThinking, Text: rb.Thinking}
	case "tool_use":
		toolUseID, _ := ids.NewToolUseID(rb.ID)
		return model.ContentBlock{
			Type:      model.BlockToolUse,
			ToolUseID: toolUseID,
			ToolName:  rb.Name,
			ToolInput: string(rb.Input),
		}
	case "tool_result":
		toolUseID, _ := ids.NewToolUseID(rb.ToolUseID)
		return model.ContentBlock{
			Type:          model.BlockToolResult,
			ToolResultFor: toolUseID,
			ResultText:    toolResultText(rb.Content),
			IsError:       rb.IsError,
		}
	default:
		return model.ContentBlock{Type: model.BlockText, Text: rb.Text}
	}
}

// toolResultText extracts the plain text of a tool_result's content,
// which is either a raw string or a nested text-block array.
func toolResultText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		return asString
	}
	var nested []rawBlock
	if err := json.Unmarshal(content, &nested); err == nil {
		out := ""
		for _, b := range nested {
			if b.Type == "text" {
				out += b.Text
			}
		}
		return out
	}
	return ""
}

func malformed(lineNumber int, rawText, reason string) *model.ConversationEntry {
	return &model.ConversationEntry{
		Status:     model.StatusMalformed,
		LineNumber: lineNumber,
		RawText:    rawText,
		Reason:     reason,
	}
}

func malformedWithSession(lineNumber int, rawText, reason, sessionID string) *model.ConversationEntry {
	e := malformed(lineNumber, rawText, reason)
	if sessionID != "" {
		if sid, err := ids.NewSessionID(sessionID); err == nil {
			e.MalformedSessionID = sid
		}
	}
	return e
}
