package tui

import (
	"strings"

	"github.com/atotto/clipboard"

	"github.com/rgreenblatt/cclv-sub001/internal/model"
)

// entryText flattens an entry's message into plain text suitable for
// the clipboard: the plain-string body when present, otherwise each
// content block's text/input in document order.
func entryText(e *model.ConversationEntry) string {
	if e == nil {
		return ""
	}
	if !e.Message.HasBlocks() {
		return e.Message.Text
	}
	var b strings.Builder
	for i, blk := range e.Message.Blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch blk.Type {
		case model.BlockText, model.BlockThinking:
			b.WriteString(blk.Text)
		case model.BlockToolUse:
			b.WriteString(blk.ToolName)
			b.WriteString(": ")
			b.WriteString(blk.ToolInput)
		case model.BlockToolResult:
			b.WriteString(blk.ResultText)
		}
	}
	return b.String()
}

// copyFocusedEntry implements spec's "copy message" action: it writes
// the focused entry's flattened text to the system clipboard via
// atotto/clipboard, grounded on the teacher's conversations plugin
// having a clipboard test file in the pack. Failures (e.g. no
// clipboard utility available in a headless environment) are logged,
// never surfaced as a crash — clipboard access is best-effort.
func (r *Root) copyFocusedEntry() {
	cv := r.currentConversation()
	if cv == nil || cv.IsEmpty() {
		return
	}
	entry := cv.Get(cv.FocusedMessage())
	text := entryText(entry)
	if text == "" {
		return
	}
	if err := clipboard.WriteAll(text); err != nil && r.logger != nil {
		r.logger.Warn("clipboard write failed", "err", err)
	}
}
