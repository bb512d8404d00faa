package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rgreenblatt/cclv-sub001/internal/appstate"
	"github.com/rgreenblatt/cclv-sub001/internal/ids"
	"github.com/rgreenblatt/cclv-sub001/internal/search"
	"github.com/rgreenblatt/cclv-sub001/internal/stats"
	"github.com/rgreenblatt/cclv-sub001/internal/styles"
	"github.com/rgreenblatt/cclv-sub001/internal/ui"
	"github.com/rgreenblatt/cclv-sub001/internal/viewstate"
)

const (
	tabBarHeight    = 1
	statusBarHeight = 1
	chromeHeight    = tabBarHeight + statusBarHeight
	panelBorder     = 2 // top+bottom, or left+right
)

// contentWidth is the width of the conversation/stats panel: the full
// terminal width (at least 10 columns); no horizontal chrome is
// subtracted.
func (r *Root) contentWidth() int {
	w := r.width
	if w < 10 {
		w = 10
	}
	return w
}

// contentHeight is the viewport height handed to Scroll/VisibleRange
// calls: terminal height minus the tab bar and status line.
func (r *Root) contentHeight() int {
	h := r.height - chromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (r *Root) render() string {
	if r.width == 0 || r.height == 0 {
		return "starting…"
	}

	r.mouseHandler.HitMap.Clear()

	tabBar := r.renderTabBar()

	var body string
	if r.state.Focus == appstate.FocusStats {
		body = r.renderStats()
	} else {
		body = r.renderConversationPane()
	}

	status := r.renderStatusLine()

	screen := lipgloss.JoinVertical(lipgloss.Left, tabBar, body, status)

	if r.state.Focus == appstate.FocusSearch {
		box := r.renderSearchBox()
		screen = ui.OverlayModal(screen, box, r.width, r.height)
	}
	if r.state.ModalVisibility == appstate.ModalVisible {
		screen = ui.OverlayModal(screen, r.renderSessionModal(), r.width, r.height)
	}
	if r.state.HelpVisible {
		screen = ui.OverlayModal(screen, r.renderHelp(), r.width, r.height)
	}
	return screen
}

// tabLabels returns the tab bar's labels in display order: "Main"
// first, then each subagent id, sorted (matching
// SessionView.SubagentIDs' lexicographic tab order).
func tabLabels(sv *viewstate.SessionView) []string {
	labels := []string{"Main"}
	if sv == nil {
		return labels
	}
	for _, aid := range sv.SubagentIDs() {
		labels = append(labels, aid.String())
	}
	return labels
}

// renderTabBar draws the session's tab strip and registers one click
// hit region per visible tab, each sized to its own rendered label
// width rather than an even split of the bar's total width.
func (r *Root) renderTabBar() string {
	sv := r.state.Log.ViewedSessionView(r.state.Viewed)
	labels := tabLabels(sv)
	selected := 0
	if r.state.Focus == appstate.FocusSubagent {
		selected = r.state.SubagentTab
	}

	matchCounts := r.tabMatchCounts(sv)

	var b strings.Builder
	x := 0
	for i, label := range labels {
		text := " " + label
		if n := matchCounts[i]; n > 0 {
			text += fmt.Sprintf(" (%d)", n)
		}
		text += " "
		style := lipgloss.NewStyle().Foreground(styles.TextMuted)
		if i == selected {
			style = lipgloss.NewStyle().Foreground(styles.BorderActive).Bold(true).Underline(true)
		}
		rendered := style.Render(text)
		b.WriteString(rendered)
		w := runewidth.StringWidth(text)
		r.mouseHandler.HitMap.AddRect("tab-"+label, x, 0, w, 1, hitData{Kind: hitTab, Index: i})
		x += w
	}

	if r.isLive() {
		badge := " ● LIVE "
		style := lipgloss.NewStyle().Foreground(styles.AssistantColor)
		if !r.blinkOn {
			style = style.Faint(true)
		}
		b.WriteString(style.Render(badge))
		x += runewidth.StringWidth(badge)
	} else {
		eof := " EOF "
		b.WriteString(lipgloss.NewStyle().Foreground(styles.TextMuted).Render(eof))
		x += runewidth.StringWidth(eof)
	}

	statsLabel := " Stats "
	statsStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	if r.state.Focus == appstate.FocusStats {
		statsStyle = lipgloss.NewStyle().Foreground(styles.BorderActive).Bold(true).Underline(true)
	}
	b.WriteString(statsStyle.Render(statsLabel))
	r.mouseHandler.HitMap.AddRect("tab-stats", x, 0, runewidth.StringWidth(statsLabel), 1, hitData{Kind: hitStatsTab})

	return lipgloss.NewStyle().Width(r.contentWidth()).Render(b.String())
}

// tabMatchCounts maps tab index -> active-search match count in that
// tab's conversation, for the tab bar's per-tab match-count badge.
func (r *Root) tabMatchCounts(sv *viewstate.SessionView) map[int]int {
	counts := map[int]int{}
	if sv == nil || r.state.Search.State() != search.Active {
		return counts
	}
	tally := func(cv *viewstate.ConversationViewState, tabIdx int) {
		seen := map[ids.EntryUUID]bool{}
		for _, e := range cv.Iter() {
			seen[e.UUID] = true
		}
		for _, m := range r.state.Search.Matches() {
			if seen[m.EntryUUID] {
				counts[tabIdx]++
			}
		}
	}
	tally(sv.Main, 0)
	for i, aid := range sv.SubagentIDs() {
		tally(sv.Subagent(aid), i+1)
	}
	return counts
}

func (r *Root) renderConversationPane() string {
	cv := r.currentConversation()
	height := r.contentHeight()
	width := r.contentWidth()

	if cv == nil {
		return lipgloss.NewStyle().Width(width).Height(height).Render("no sessions yet")
	}

	params := r.state.LayoutParams
	cv.EnsureLayout(params)
	lines := cv.RenderViewport(height, params)

	r.mouseHandler.HitMap.AddRect("content", 0, tabBarHeight, width, height, hitData{
		Kind: hitContent, Top: tabBarHeight, Left: 0, ViewportHeight: height,
	})

	for len(lines) < height {
		lines = append(lines, "")
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (r *Root) renderStats() string {
	height := r.contentHeight()
	width := r.contentWidth()

	var entries []stats.Entry
	for _, sv := range r.state.Log.Sessions() {
		collect := func(cv *viewstate.ConversationViewState, agentID ids.AgentID) {
			for _, e := range cv.Iter() {
				if e.Status != 0 {
					continue
				}
				entries = append(entries, stats.Entry{SessionID: sv.ID, AgentID: agentID, Message: e.Message})
			}
		}
		collect(sv.Main, "")
		for _, aid := range sv.SubagentIDs() {
			collect(sv.Subagent(aid), aid)
		}
	}

	totals := stats.Aggregate(entries, r.state.StatsFilter, r.pricing)

	var b strings.Builder
	fmt.Fprintf(&b, "Filter: %s\n\n", filterLabel(r.state.StatsFilter))
	fmt.Fprintf(&b, "Input tokens:          %d\n", totals.InputTokens)
	fmt.Fprintf(&b, "Output tokens:         %d\n", totals.OutputTokens)
	fmt.Fprintf(&b, "Cache creation input:  %d\n", totals.CacheCreationInput)
	fmt.Fprintf(&b, "Cache read input:      %d\n", totals.CacheReadInput)
	fmt.Fprintf(&b, "Tool calls:            %d\n", totals.ToolCallCount)
	fmt.Fprintf(&b, "Cost (USD):            $%.4f\n", totals.CostUSD)
	b.WriteString("\n(press f to cycle filter)")

	return lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2).Render(b.String())
}

func filterLabel(f stats.Filter) string {
	switch f.Kind {
	case stats.AllSessionsCombined:
		return "All sessions"
	case stats.Session:
		return "Session " + f.SessionID.String()
	case stats.MainAgent:
		return "Main agent of " + f.SessionID.String()
	case stats.Subagent:
		return "Subagent " + f.AgentID.String()
	default:
		return "?"
	}
}

func (r *Root) renderStatusLine() string {
	var parts []string
	if r.state.Search.State() == search.Active {
		idx := r.state.Search.CurrentMatchIndex()
		total := len(r.state.Search.Matches())
		parts = append(parts, fmt.Sprintf("match %d/%d", idx+1, total))
	}
	parts = append(parts, "Tab: cycle focus  /: search  ?: help  q: quit")
	line := strings.Join(parts, "  |  ")
	return lipgloss.NewStyle().Foreground(styles.TextMuted).Width(r.contentWidth()).Render(line)
}

func (r *Root) renderSearchBox() string {
	q := r.state.Search.Query()
	label := "Search: " + q
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderActive).
		Padding(0, 1).
		Width(maxInt(30, runewidth.StringWidth(label)+4)).
		Render(label)
	return box
}

func (r *Root) renderSessionModal() string {
	sessions := r.state.Log.Sessions()
	var b strings.Builder
	b.WriteString("Select session\n\n")
	for i, sv := range sessions {
		marker := "  "
		if i == r.state.ModalSelected {
			marker = "> "
		}
		label := fmt.Sprintf("%s%d. %s", marker, i+1, sv.ID.String())
		if i == len(sessions)-1 {
			label += " (latest)"
		}
		b.WriteString(label)
		b.WriteString("\n")
	}
	b.WriteString("\n↑/k ↓/j  g/Home G/End  1-9  Enter select  Esc/s close")

	if r.md != nil && r.state.ModalSelected >= 0 && r.state.ModalSelected < len(sessions) {
		b.WriteString("\n\n")
		b.WriteString(r.renderSessionDetail(sessions[r.state.ModalSelected]))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderActive).
		Padding(1, 2).
		Render(b.String())
}

// renderSessionDetail builds the session-modal's detail preview: a
// short markdown blurb run through internal/markdown.Renderer rather
// than the fixed-width entry renderer, since this text isn't subject
// to the layout engine's rendered-line-count-equals-layout-height
// invariant (internal/markdown's own doc comment names this surface).
func (r *Root) renderSessionDetail(sv *viewstate.SessionView) string {
	src := fmt.Sprintf("**%s**\n\n- entries: %d\n- subagents: %d",
		sv.ID.String(), sv.Main.Len(), sv.SubagentCount())
	lines := r.md.RenderContent(src, maxInt(20, r.contentWidth()-8))
	return strings.Join(lines, "\n")
}

// renderHelpIntro renders a short markdown blurb above the keyboard-
// shortcut table through internal/markdown.Renderer — the one piece
// of prose in this overlay not bound by the layout engine's
// rendered-line-count invariant, per that package's own doc comment.
func (r *Root) renderHelpIntro() string {
	if r.md == nil {
		return ""
	}
	const src = "cclv — terminal viewer for Claude Code JSONL conversation logs."
	lines := r.md.RenderContent(src, maxInt(20, r.contentWidth()-8))
	return strings.Join(lines, "\n")
}

// renderHelp lays out the keyboard-contract text and the recent-log
// tail as two columns separated by internal/ui.RenderDivider, rather
// than stacking them — the one place in this program's chrome that
// genuinely wants a side-by-side split.
func (r *Root) renderHelp() string {
	intro := r.renderHelpIntro()

	var left strings.Builder
	left.WriteString("Keyboard shortcuts\n\n")
	left.WriteString("Up / Down / j / k  scroll\n")
	left.WriteString("PgUp / PgDn        page\n")
	left.WriteString("Home / End         jump to top/bottom\n")
	left.WriteString("Tab                cycle focus (Main/Subagent/Stats)\n")
	left.WriteString("[ / ]              prev/next subagent tab\n")
	left.WriteString("1-9                select tab\n")
	left.WriteString("Enter              toggle-expand focused entry\n")
	left.WriteString("w / W              toggle entry/global wrap\n")
	left.WriteString("/                  search (prefix with regex: for regex mode)\n")
	left.WriteString("n / N              next/prev match\n")
	left.WriteString("s / S              toggle session picker\n")
	left.WriteString("y                  copy focused entry to clipboard\n")
	left.WriteString("f                  cycle stats filter (when Stats focused)\n")
	left.WriteString("Esc                close search/modal/help\n")
	left.WriteString("? / q / Ctrl+C     toggle help / quit")

	recs := r.logRing.Records()
	var body string
	if len(recs) == 0 {
		body = left.String()
	} else {
		var right strings.Builder
		right.WriteString("Recent log\n\n")
		start := 0
		if len(recs) > 12 {
			start = len(recs) - 12
		}
		for _, rec := range recs[start:] {
			fmt.Fprintf(&right, "[%s] %s\n", rec.Level, rec.Message)
		}

		leftLines := strings.Count(left.String(), "\n") + 1
		divider := ui.RenderDivider(leftLines + 2)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left.String(), "  "+divider+"  ", right.String())
	}

	if intro != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, intro, "", body)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderActive).
		Padding(1, 2).
		Render(body)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
