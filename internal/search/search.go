// Package search implements a case-insensitive substring search state
// machine: Inactive -> Typing -> Active, plus match indexing and
// next/prev navigation.
//
// Grounded on wilbur182-forge's content-search state handling
// (sibling pack repo yashas-salankimatt-sidecar's internal/search
// decomposes match-finding more finely and is a secondary grounding
// source for the Match shape used here).
package search

import (
	"regexp"
	"strings"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
)

// Mode selects how the submitted query is matched. Substring is the
// default; Regex is a supplement grounded on original_source's
// src/state/search_input_handler.rs, which accepts a "regex:" prefix.
type Mode int

const (
	Substring Mode = iota
	Regex
)

const regexPrefix = "regex:"

// State discriminates the search machine's three phases.
type State int

const (
	Inactive State = iota
	Typing
	Active
)

// Match is one occurrence of the query within one content block of
// one entry, in document order.
type Match struct {
	EntryUUID  ids.EntryUUID
	BlockIndex int
	CharOffset int
	Length     int
}

// Engine holds the state machine's current phase and, once Active,
// its match list and cursor.
type Engine struct {
	state State
	query string
	cursor int // cursor position within query, while Typing

	matches        []Match
	currentMatch   int
	mode           Mode
	regexErr       error
}

// NewEngine returns an Inactive search engine.
func NewEngine() *Engine {
	return &Engine{state: Inactive}
}

// State returns the current phase.
func (e *Engine) State() State { return e.state }

// Query returns the current query text.
func (e *Engine) Query() string { return e.query }

// Cursor returns the cursor position within the query while Typing.
func (e *Engine) Cursor() int { return e.cursor }

// Matches returns the current match list (empty unless Active).
func (e *Engine) Matches() []Match { return e.matches }

// CurrentMatchIndex returns the index into Matches() of the focused
// match, or -1 if there are none.
func (e *Engine) CurrentMatchIndex() int {
	if len(e.matches) == 0 {
		return -1
	}
	return e.currentMatch
}

// Mode returns the match mode selected by the last Submit call.
func (e *Engine) Mode() Mode { return e.mode }

// RegexError returns the last regex compile error, if Submit was
// given an invalid "regex:" pattern (in which case the engine falls
// back to Inactive with zero matches rather than panicking).
func (e *Engine) RegexError() error { return e.regexErr }

// Activate transitions Inactive -> Typing with an empty query.
func (e *Engine) Activate() {
	e.state = Typing
	e.query = ""
	e.cursor = 0
	e.matches = nil
	e.currentMatch = 0
}

// HandleCharInput inserts r at the cursor while Typing. A no-op in
// any other state.
func (e *Engine) HandleCharInput(r rune) {
	if e.state != Typing {
		return
	}
	runes := []rune(e.query)
	runes = append(runes[:e.cursor], append([]rune{r}, runes[e.cursor:]...)...)
	e.query = string(runes)
	e.cursor++
}

// HandleBackspace deletes the rune before the cursor while Typing.
func (e *Engine) HandleBackspace() {
	if e.state != Typing || e.cursor == 0 {
		return
	}
	runes := []rune(e.query)
	runes = append(runes[:e.cursor-1], runes[e.cursor:]...)
	e.query = string(runes)
	e.cursor--
}

// HandleCursorLeft/HandleCursorRight move the Typing cursor, clamped
// to the query bounds.
func (e *Engine) HandleCursorLeft() {
	if e.state != Typing {
		return
	}
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *Engine) HandleCursorRight() {
	if e.state != Typing {
		return
	}
	if e.cursor < len([]rune(e.query)) {
		e.cursor++
	}
}

// Submit transitions Typing -> Active by indexing matches across
// scope, or Typing -> Inactive if the query is empty/whitespace.
func (e *Engine) Submit(scope []ScopedEntry) {
	if e.state != Typing {
		return
	}
	e.regexErr = nil
	trimmed := strings.TrimSpace(e.query)
	if trimmed == "" {
		e.state = Inactive
		e.matches = nil
		e.mode = Substring
		return
	}

	if rest, ok := strings.CutPrefix(trimmed, regexPrefix); ok {
		e.mode = Regex
		re, err := regexp.Compile("(?i)" + rest)
		if err != nil {
			e.regexErr = err
			e.state = Inactive
			e.matches = nil
			return
		}
		e.matches = findRegexMatches(re, scope)
	} else {
		e.mode = Substring
		e.matches = findMatches(trimmed, scope)
	}
	e.currentMatch = 0
	e.state = Active
}

// Cancel transitions back to Inactive from any state, clearing query
// and matches.
func (e *Engine) Cancel() {
	e.state = Inactive
	e.query = ""
	e.cursor = 0
	e.matches = nil
	e.currentMatch = 0
}

// Next advances current_match_idx modulo len(matches).
func (e *Engine) Next() {
	if len(e.matches) == 0 {
		return
	}
	e.currentMatch = (e.currentMatch + 1) % len(e.matches)
}

// Prev retreats current_match_idx modulo len(matches).
func (e *Engine) Prev() {
	if len(e.matches) == 0 {
		return
	}
	e.currentMatch = (e.currentMatch - 1 + len(e.matches)) % len(e.matches)
}

// ScopedEntry is one entry plus the block texts search indexes over,
// passed in by the caller (which owns the ConversationViewState the
// scope was drawn from) so this package stays independent of
// internal/viewstate.
type ScopedEntry struct {
	Entry  *model.ConversationEntry
	Blocks []string // one string per content block, document order
}

// findMatches performs case-insensitive substring search over scope,
// in document order.
func findMatches(query string, scope []ScopedEntry) []Match {
	lowerQuery := strings.ToLower(query)
	var out []Match
	for _, se := range scope {
		for blockIdx, text := range se.Blocks {
			lowerText := strings.ToLower(text)
			offset := 0
			for {
				idx := strings.Index(lowerText[offset:], lowerQuery)
				if idx < 0 {
					break
				}
				absolute := offset + idx
				out = append(out, Match{
					EntryUUID:  se.Entry.UUID,
					BlockIndex: blockIdx,
					CharOffset: absolute,
					Length:     len(query),
				})
				offset = absolute + len(lowerQuery)
				if offset >= len(lowerText) {
					break
				}
			}
		}
	}
	return out
}

// findRegexMatches mirrors findMatches but matches re.FindAllStringIndex
// against each block's raw (non-lowercased; re is already
// case-insensitive via the "(?i)" prefix Submit adds) text.
func findRegexMatches(re *regexp.Regexp, scope []ScopedEntry) []Match {
	var out []Match
	for _, se := range scope {
		for blockIdx, text := range se.Blocks {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				out = append(out, Match{
					EntryUUID:  se.Entry.UUID,
					BlockIndex: blockIdx,
					CharOffset: loc[0],
					Length:     loc[1] - loc[0],
				})
			}
		}
	}
	return out
}

// BlocksOf extracts the searchable text of each content block of an
// entry's message, in the same order ContentBlock.Type dispatch uses
// elsewhere (internal/render), so BlockIndex values line up.
func BlocksOf(entry *model.ConversationEntry) []string {
	msg := entry.Message
	if !msg.HasBlocks() {
		return []string{msg.Text}
	}
	out := make([]string, len(msg.Blocks))
	for i, b := range msg.Blocks {
		switch b.Type {
		case model.BlockText, model.BlockThinking:
			out[i] = b.Text
		case model.BlockToolUse:
			out[i] = b.ToolInput
		case model.BlockToolResult:
			out[i] = b.ResultText
		}
	}
	return out
}
