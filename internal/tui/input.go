package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgreenblatt/cclv-sub001/internal/appstate"
	"github.com/rgreenblatt/cclv-sub001/internal/mouse"
	"github.com/rgreenblatt/cclv-sub001/internal/search"
	"github.com/rgreenblatt/cclv-sub001/internal/viewstate"
)

// handleKey implements input's priority chain: an active search box
// swallows all printable input; an open session modal swallows
// navigation input next; otherwise keys dispatch through the keymap
// registry. Esc is handled directly ahead of the registry so
// CloseOverlay's search > modal > help precedence always wins over any
// user-rebindable "esc" command.
func (r *Root) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		r.quitting = true
		return r, tea.Quit
	}

	if r.state.Focus == appstate.FocusSearch {
		return r.handleSearchKey(msg)
	}

	if r.state.ModalVisibility == appstate.ModalVisible {
		return r.handleModalKey(msg)
	}

	if msg.Type == tea.KeyEsc {
		s, _ := appstate.CloseOverlay(*r.state)
		*r.state = s
		return r, nil
	}

	return r, r.keys.Handle(msg, "global")
}

func (r *Root) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		s, _ := appstate.CloseOverlay(*r.state)
		*r.state = s
	case tea.KeyEnter:
		s, _ := appstate.SubmitSearch(*r.state, r.buildSearchScope())
		*r.state = s
	case tea.KeyBackspace:
		s, _ := appstate.HandleBackspace(*r.state)
		*r.state = s
	case tea.KeyLeft:
		s, _ := appstate.HandleCursorLeft(*r.state)
		*r.state = s
	case tea.KeyRight:
		s, _ := appstate.HandleCursorRight(*r.state)
		*r.state = s
	case tea.KeySpace:
		s, _ := appstate.HandleCharInput(*r.state, ' ')
		*r.state = s
	case tea.KeyRunes:
		s := *r.state
		for _, ru := range msg.Runes {
			s, _ = appstate.HandleCharInput(s, ru)
		}
		*r.state = s
	}
	return r, nil
}

func (r *Root) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var key appstate.ModalKey
	digit := 0

	switch msg.Type {
	case tea.KeyUp:
		key = appstate.ModalUp
	case tea.KeyDown:
		key = appstate.ModalDown
	case tea.KeyHome:
		key = appstate.ModalHome
	case tea.KeyEnd:
		key = appstate.ModalEnd
	case tea.KeyEnter:
		key = appstate.ModalEnter
	case tea.KeyEsc:
		key = appstate.ModalClose
	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "k":
			key = appstate.ModalUp
		case "j":
			key = appstate.ModalDown
		case "g":
			key = appstate.ModalHome
		case "G":
			key = appstate.ModalEnd
		case "s", "S":
			key = appstate.ModalClose
		default:
			if len(msg.Runes) != 1 || msg.Runes[0] < '1' || msg.Runes[0] > '9' {
				return r, nil
			}
			key = appstate.ModalSelectDigit
			digit = int(msg.Runes[0] - '0')
		}
	default:
		return r, nil
	}

	s, _ := appstate.SessionModalKey(*r.state, key, digit)
	*r.state = s
	return r, nil
}

// buildSearchScope indexes the whole viewed session (main plus every
// subagent conversation) rather than just the focused pane — this also
// lets the tab bar's per-subagent match indicator find matches living
// in tabs other than the one currently focused.
func (r *Root) buildSearchScope() []search.ScopedEntry {
	sv := r.state.Log.ViewedSessionView(r.state.Viewed)
	if sv == nil {
		return nil
	}
	var scope []search.ScopedEntry
	add := func(cv *viewstate.ConversationViewState) {
		for _, e := range cv.Iter() {
			scope = append(scope, search.ScopedEntry{Entry: e, Blocks: search.BlocksOf(e)})
		}
	}
	add(sv.Main)
	for _, aid := range sv.SubagentIDs() {
		add(sv.Subagent(aid))
	}
	return scope
}

// currentConversation resolves the conversation the content pane is
// currently showing, mirroring appstate's own (private)
// focusedConversation via exported accessors only, so it always
// re-resolves through the viewed-session selector instead of caching a
// stale pointer across a session switch.
func (r *Root) currentConversation() *viewstate.ConversationViewState {
	sv := r.state.Log.ViewedSessionView(r.state.Viewed)
	if sv == nil {
		return nil
	}
	switch r.state.Focus {
	case appstate.FocusMain:
		return sv.Main
	case appstate.FocusSubagent:
		ids := sv.SubagentIDs()
		if r.state.SubagentTab <= 0 || r.state.SubagentTab > len(ids) {
			return nil
		}
		return sv.Subagent(ids[r.state.SubagentTab-1])
	default:
		return nil
	}
}

// hitKind discriminates the mouse.Region.Data payloads registered in
// View's hit-map rebuild.
type hitKind int

const (
	hitTab hitKind = iota
	hitStatsTab
	hitContent
	hitModalRow
)

type hitData struct {
	Kind           hitKind
	Index          int // tab index (0-based) or modal row index
	Top, Left      int // content pane's screen origin, for HitTest's local coordinates
	ViewportHeight int
}

func (r *Root) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	action := r.mouseHandler.HandleMouse(msg)
	viewport := r.contentHeight()

	switch action.Type {
	case mouse.ActionClick, mouse.ActionDoubleClick:
		r.dispatchClick(action)
	case mouse.ActionScrollUp:
		s, _ := appstate.Scroll(*r.state, appstate.ScrollUp, viewport)
		*r.state = s
	case mouse.ActionScrollDown:
		s, _ := appstate.Scroll(*r.state, appstate.ScrollDown, viewport)
		*r.state = s
	case mouse.ActionScrollLeft:
		s, _ := appstate.ScrollHorizontal(*r.state, action.Delta)
		*r.state = s
	case mouse.ActionScrollRight:
		s, _ := appstate.ScrollHorizontal(*r.state, action.Delta)
		*r.state = s
	}
	return r, nil
}

func (r *Root) dispatchClick(action mouse.MouseAction) {
	if action.Region == nil {
		return
	}
	data, ok := action.Region.Data.(hitData)
	if !ok {
		return
	}

	switch data.Kind {
	case hitTab:
		s, _ := appstate.SelectTab(*r.state, data.Index+1)
		*r.state = s
	case hitStatsTab:
		s, _ := appstate.FocusStatsPane(*r.state)
		*r.state = s
	case hitContent:
		cv := r.currentConversation()
		if cv == nil {
			return
		}
		localY := action.Y - data.Top
		localX := action.X - data.Left
		res := cv.HitTest(localY, localX, data.ViewportHeight)
		if !res.Hit {
			return
		}
		cv.SetFocusedMessage(res.EntryIndex)
		s, _ := appstate.ToggleExpand(*r.state)
		*r.state = s
	case hitModalRow:
		s, _ := appstate.SessionModalKey(*r.state, appstate.ModalSelectDigit, data.Index+1)
		*r.state = s
	}
}
