// Package render is the single source of truth for turning one
// ConversationEntry into the exact styled lines the terminal shows.
// internal/layout derives entry heights by calling ComputeEntryLines in
// a counting mode and taking len(), which is how the invariant that a
// rendered entry always occupies exactly its layout height is enforced
// by construction rather than by keeping two implementations in
// lockstep by hand.
//
// Grounded on wilbur182-forge's internal/styles (role palette) and,
// for ToolUse JSON highlighting, chroma's lexer/formatter API directly
// (the same library glamour itself is built on, used one layer down
// here because glamour's paragraph reflow does not preserve the
// pre-wrapped line count this package's invariant requires — see
// internal/markdown's package doc).
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/model"
	"github.com/rgreenblatt/cclv-sub001/internal/pricing"
	themepkg "github.com/rgreenblatt/cclv-sub001/internal/styles"
)

// Borders and Prefix are the fixed layout constants: two columns for
// the pane border, five for the gutter ("│%3d ").
const (
	Borders = 2
	Prefix  = 5
)

// WrapMode selects word/line wrapping behavior.
type WrapMode int

const (
	WrapOn WrapMode = iota
	WrapOff
)

// SearchMatch is one match span within a single content block of an
// entry, in document order.
type SearchMatch struct {
	BlockIndex int
	CharOffset int
	Length     int
	// Current marks the match the search engine currently has focused;
	// an entry holding it renders with the current-match style instead
	// of the plain match style.
	Current bool
}

// Options configures one ComputeEntryLines call. Every field is
// resolved by the caller (ConversationViewState / the TUI) before
// invocation; ComputeEntryLines itself is pure.
type Options struct {
	Width             int
	GlobalWrap        WrapMode
	HasWrapOverride   bool
	WrapOverride      WrapMode
	// HOffset is the number of leading display columns to drop before
	// truncating to Width, for scroll_horizontal in NoWrap mode. Ignored
	// wherever the effective wrap mode is WrapOn, since reflowed text
	// never overflows to begin with.
	HOffset           int
	Expanded          bool
	CollapseThreshold int
	SummaryLines      int

	// EntryIndexDisplay is the 1-based index shown in the gutter; <= 0
	// means no gutter is drawn.
	EntryIndexDisplay int
	Focused           bool
	FirstInSubagent   bool

	SearchMatches []SearchMatch

	ContextMaxTokens int
	Pricing          pricing.Table
	Theme            *themepkg.Theme
}

func contentWidth(width int) int {
	w := width - Borders - Prefix
	if w < 1 {
		w = 1
	}
	return w
}

// ComputeEntryLines is the single source of truth for an entry's
// appearance. It returns exactly layout.Height(entry, ...) lines.
func ComputeEntryLines(entry *model.ConversationEntry, opts Options) []string {
	if opts.Theme == nil {
		opts.Theme = themepkg.Default()
	}
	if opts.Pricing == nil {
		opts.Pricing = pricing.DefaultTable
	}

	if entry.Status == model.StatusMalformed {
		return []string{malformedLine(entry, opts.Theme)}
	}

	blockLines := computeBlockLines(entry, opts)

	var out []string
	if opts.FirstInSubagent {
		out = append(out, opts.Theme.Muted.Render("Initial Prompt"))
	}

	total := len(blockLines)
	if total > opts.CollapseThreshold && !opts.Expanded {
		summaryLines := opts.SummaryLines
		if summaryLines > total {
			summaryLines = total
		}
		out = append(out, blockLines[:summaryLines]...)
		more := total - summaryLines
		out = append(out, opts.Theme.Muted.Render(fmt.Sprintf("(+%d more lines)", more)))
	} else {
		out = append(out, blockLines...)
	}

	out = applyGutter(out, opts)
	out = applySearchHighlight(out, entry, opts)
	out = append(out, tokenDividerLine(entry, opts))

	return out
}

func malformedLine(entry *model.ConversationEntry, theme *themepkg.Theme) string {
	style := lipgloss.NewStyle().Foreground(themepkg.ErrorColor)
	return style.Render(fmt.Sprintf("[line %d] malformed: %s", entry.LineNumber, entry.Reason))
}

// computeBlockLines concatenates the rendered lines of every content
// block in the message, in order, uniformly applying wrap and
// fence-marker filtering to every block kind including Thinking: an
// easy place for wrap/highlight handling to silently diverge from the
// other block kinds if it's special-cased instead of shared.
func computeBlockLines(entry *model.ConversationEntry, opts Options) []string {
	msg := entry.Message
	role := opts.Theme.RoleStyle(msg.Role == model.RoleUser, msg.Role == model.RoleAssistant)

	if !msg.HasBlocks() {
		return wrapTextBlock(msg.Text, opts, role, false)
	}

	var lines []string
	for _, b := range msg.Blocks {
		switch b.Type {
		case model.BlockText:
			lines = append(lines, wrapTextBlock(b.Text, opts, role, false)...)
		case model.BlockThinking:
			lines = append(lines, wrapTextBlock(b.Text, opts, opts.Theme.Thinking, false)...)
		case model.BlockToolUse:
			lines = append(lines, toolUseLines(b, opts)...)
		case model.BlockToolResult:
			lines = append(lines, toolResultLines(b, opts)...)
		}
	}
	return lines
}

// effectiveWrap resolves the wrap mode for one block, honoring the
// "ToolUse/ToolResult default to NoWrap regardless of global wrap
// unless the entry carries an explicit wrap override" rule.
func effectiveWrap(isToolKind bool, opts Options) WrapMode {
	if opts.HasWrapOverride {
		return opts.WrapOverride
	}
	if isToolKind {
		return WrapOff
	}
	return opts.GlobalWrap
}

// wrapTextBlock splits text on "\n", filters fence-marker lines, and
// wrap-chunks each remaining source line into content_width code
// points when wrapping is in effect. Fenced regions are highlighted
// with chroma without changing the line count.
func wrapTextBlock(text string, opts Options, style lipgloss.Style, isToolKind bool) []string {
	wrap := effectiveWrap(isToolKind, opts)
	cw := contentWidth(opts.Width)

	srcLines := strings.Split(text, "\n")
	var out []string
	inFence := false
	fenceLang := ""
	for _, line := range srcLines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if !inFence {
				inFence = true
				fenceLang = strings.TrimPrefix(trimmed, "```")
			} else {
				inFence = false
				fenceLang = ""
			}
			continue // fence-marker lines are filtered from output
		}

		if wrap == WrapOn {
			if inFence {
				out = append(out, wrapCodePoints(line, highlightCode(line, fenceLang), cw, true, fenceLang)...)
			} else {
				for _, chunk := range wrapCodePoints(line, line, cw, false, "") {
					out = append(out, style.Render(chunk))
				}
			}
			continue
		}

		visible := sliceDisplay(line, opts.HOffset)
		rendered := visible
		if inFence {
			rendered = highlightCode(visible, fenceLang)
		} else {
			rendered = style.Render(visible)
		}
		out = append(out, truncateDisplay(rendered, opts.Width))
	}
	return out
}

// sliceDisplay drops the leading offset display columns of s
// (rune-width aware), for scroll_horizontal in NoWrap mode. offset<=0
// is a no-op.
func sliceDisplay(s string, offset int) string {
	if offset <= 0 {
		return s
	}
	runes := []rune(s)
	col, i := 0, 0
	for i < len(runes) && col < offset {
		col += runewidth.RuneWidth(runes[i])
		i++
	}
	return string(runes[i:])
}

// wrapCodePoints splits raw into content-width code-point chunks. In a
// fenced region each chunk is highlighted on its own, so highlighted
// spans never straddle a wrap boundary; other chunks are returned
// unstyled. An empty raw line yields preStyled as its single chunk.
func wrapCodePoints(raw, preStyled string, contentWidth int, inFence bool, fenceLang string) []string {
	runes := []rune(raw)
	if len(runes) == 0 {
		return []string{preStyled}
	}
	var chunks []string
	for len(runes) > 0 {
		n := contentWidth
		if n > len(runes) {
			n = len(runes)
		}
		chunk := string(runes[:n])
		runes = runes[n:]
		if inFence {
			chunks = append(chunks, highlightCode(chunk, fenceLang))
		} else {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// truncateDisplay truncates s to fit width display cells: NoWrap mode
// truncates at render time instead of reflowing.
func truncateDisplay(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "")
}

func highlightCode(code, lang string) string {
	lexer := lexers.Get(strings.TrimSpace(lang))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get("monokai")
	formatter := formatters.TTY256
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// toolUseLines renders a ToolUse block: a bold-yellow header line
// followed by its JSON input, indented, honoring the NoWrap-by-default
// rule.
func toolUseLines(b model.ContentBlock, opts Options) []string {
	header := opts.Theme.ToolHeader.Render(b.ToolName)
	body := indentJSON(b.ToolInput)
	bodyLines := wrapIndented(body, opts, true)
	return append([]string{header}, bodyLines...)
}

// toolResultLines renders a ToolResult block, red when IsError.
func toolResultLines(b model.ContentBlock, opts Options) []string {
	style := opts.Theme.Muted
	if b.IsError {
		style = opts.Theme.ToolError
	}
	return wrapTextBlockStyled(b.ResultText, opts, style, true)
}

func wrapTextBlockStyled(text string, opts Options, style lipgloss.Style, isToolKind bool) []string {
	return wrapTextBlock(text, opts, style, isToolKind)
}

// wrapIndented wraps an already-indented JSON body, honoring the
// tool-block NoWrap-by-default rule without fenced-code handling
// (JSON bodies are never fenced markdown).
func wrapIndented(body string, opts Options, isToolKind bool) []string {
	wrap := effectiveWrap(isToolKind, opts)
	cw := contentWidth(opts.Width)
	lines := strings.Split(body, "\n")
	var out []string
	for _, line := range lines {
		if wrap == WrapOn {
			out = append(out, wrapCodePoints(line, line, cw, false, "")...)
		} else {
			out = append(out, truncateDisplay(sliceDisplay(line, opts.HOffset), opts.Width))
		}
	}
	return out
}

func indentJSON(raw string) string {
	if raw == "" {
		return "  "
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "  ", "  "); err != nil {
		return "  " + raw
	}
	return "  " + buf.String()
}

func applyGutter(lines []string, opts Options) []string {
	if opts.EntryIndexDisplay <= 0 {
		return lines
	}
	gutterStyle := opts.Theme.GutterDim
	if opts.Focused {
		gutterStyle = opts.Theme.GutterFocused
	}
	out := make([]string, len(lines))
	first := gutterStyle.Render(fmt.Sprintf("│%3d ", opts.EntryIndexDisplay))
	cont := gutterStyle.Render("│    ")
	for i, l := range lines {
		if i == 0 {
			out[i] = first + l
		} else {
			out[i] = cont + l
		}
	}
	return out
}

// applySearchHighlight highlights a whole entry rather than individual
// match spans: when opts carries any SearchMatches, every line passed
// in (gutter included; the token divider is appended afterwards and
// stays unstyled) is rendered with the current-match style if one of
// the matches is Current, else with the plain match style. The
// matches' BlockIndex/CharOffset/Length are not used to locate spans
// within a line.
func applySearchHighlight(lines []string, entry *model.ConversationEntry, opts Options) []string {
	if len(opts.SearchMatches) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	copy(out, lines)
	hasCurrent := false
	for _, m := range opts.SearchMatches {
		if m.Current {
			hasCurrent = true
		}
	}
	style := opts.Theme.SearchMatch
	if hasCurrent {
		style = opts.Theme.SearchCurrent
	}
	for i := range out {
		out[i] = style.Render(out[i])
	}
	return out
}

// tokenDividerLine renders the per-entry token/cost summary line shown
// under every entry that carries usage data. Returns a blank line when
// the entry carries no usage.
func tokenDividerLine(entry *model.ConversationEntry, opts Options) string {
	u := entry.Message.Usage
	if u == nil {
		return ""
	}

	readNonCached := u.ReadNonCached()
	readTotal := u.ReadTotal()
	writeNonCached := u.OutputTokens
	thinkingTokens := estimateThinkingTokens(entry)
	writeTotal := u.OutputTokens + thinkingTokens
	ctx := u.ContextTokens()

	cost := pricing.ModelCost(opts.Pricing, entry.Message.Model, pricing.Usage{
		InputTokens:        u.InputTokens,
		OutputTokens:       u.OutputTokens,
		CacheCreationInput: u.CacheCreationInput,
		CacheReadInput:     u.CacheReadInput,
	})

	line := fmt.Sprintf("↓%s/%s ↑%s/%s  Context: %s  $%.2f",
		formatK(readNonCached), formatK(readTotal),
		formatK(writeNonCached), formatK(writeTotal),
		formatK(ctx), cost)
	return opts.Theme.Muted.Render(line)
}

func estimateThinkingTokens(entry *model.ConversationEntry) int {
	total := 0
	for _, b := range entry.Message.Blocks {
		if b.Type == model.BlockThinking {
			total += len(b.Text) / 4
		}
	}
	return total
}

func formatK(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%.1fk", float64(n)/1000)
}

// SessionSeparator renders the divider line shown between adjacent
// entries from different sessions in a combined, cross-session
// timeline (internal/viewstate.LogViewState.Timeline).
func SessionSeparator(id ids.SessionID, theme *themepkg.Theme) string {
	if theme == nil {
		theme = themepkg.Default()
	}
	return theme.Muted.Render(fmt.Sprintf("───── Session: %s ─────", id.String()))
}
