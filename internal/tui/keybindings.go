package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgreenblatt/cclv-sub001/internal/appstate"
	"github.com/rgreenblatt/cclv-sub001/internal/keymap"
)

// registerDefaultBindings wires the program's keyboard contract onto
// r's keymap.Registry as closures over r, since keymap.Command.Handler
// takes no arguments (grounded on the teacher's internal/keymap, kept
// near-verbatim: per-instance binding happens at the call site, not
// inside the registry).
func registerDefaultBindings(r *Root) {
	apply := func(id string, fn func(appstate.AppState) (appstate.AppState, bool)) keymap.Command {
		return keymap.Command{ID: id, Name: id, Handler: func() tea.Cmd {
			s, _ := fn(*r.state)
			*r.state = s
			return nil
		}}
	}

	scrollCmd := func(id string, dir appstate.ScrollDir) keymap.Command {
		return keymap.Command{ID: id, Name: id, Handler: func() tea.Cmd {
			s, _ := appstate.Scroll(*r.state, dir, r.contentHeight())
			*r.state = s
			return nil
		}}
	}

	commands := []keymap.Command{
		apply("cycle_focus", appstate.CycleFocus),
		apply("next_tab", appstate.NextTab),
		apply("prev_tab", appstate.PrevTab),
		scrollCmd("scroll_up", appstate.ScrollUp),
		scrollCmd("scroll_down", appstate.ScrollDown),
		scrollCmd("scroll_page_up", appstate.ScrollPageUp),
		scrollCmd("scroll_page_down", appstate.ScrollPageDown),
		scrollCmd("scroll_home", appstate.ScrollHome),
		scrollCmd("scroll_end", appstate.ScrollEnd),
		apply("toggle_expand", appstate.ToggleExpand),
		apply("toggle_wrap_entry", appstate.ToggleWrapEntry),
		apply("toggle_wrap_global", appstate.ToggleWrapGlobal),
		apply("activate_search", appstate.ActivateSearch),
		apply("search_next", appstate.SearchNext),
		apply("search_prev", appstate.SearchPrev),
		apply("toggle_session_modal", appstate.ToggleSessionModal),
		apply("toggle_help", appstate.ToggleHelp),
		apply("next_stats_filter", appstate.NextStatsFilter),
		{ID: "quit", Name: "quit", Handler: func() tea.Cmd {
			r.quitting = true
			return tea.Quit
		}},
		{ID: "copy_entry", Name: "copy_entry", Handler: func() tea.Cmd {
			r.copyFocusedEntry()
			return nil
		}},
	}
	for n := 1; n <= 9; n++ {
		n := n
		commands = append(commands, keymap.Command{
			ID:   "select_tab_" + strconv.Itoa(n),
			Name: "select_tab_" + strconv.Itoa(n),
			Handler: func() tea.Cmd {
				s, _ := appstate.SelectTab(*r.state, n)
				*r.state = s
				return nil
			},
		})
	}
	for _, c := range commands {
		r.keys.RegisterCommand(c)
	}

	bindings := []keymap.Binding{
		{Key: "tab", Command: "cycle_focus", Context: "global"},
		{Key: "[", Command: "prev_tab", Context: "global"},
		{Key: "]", Command: "next_tab", Context: "global"},
		{Key: "up", Command: "scroll_up", Context: "global"},
		{Key: "k", Command: "scroll_up", Context: "global"},
		{Key: "down", Command: "scroll_down", Context: "global"},
		{Key: "j", Command: "scroll_down", Context: "global"},
		{Key: "pgup", Command: "scroll_page_up", Context: "global"},
		{Key: "pgdown", Command: "scroll_page_down", Context: "global"},
		{Key: "home", Command: "scroll_home", Context: "global"},
		{Key: "end", Command: "scroll_end", Context: "global"},
		{Key: "enter", Command: "toggle_expand", Context: "global"},
		{Key: "w", Command: "toggle_wrap_entry", Context: "global"},
		{Key: "W", Command: "toggle_wrap_global", Context: "global"},
		{Key: "/", Command: "activate_search", Context: "global"},
		{Key: "n", Command: "search_next", Context: "global"},
		{Key: "N", Command: "search_prev", Context: "global"},
		{Key: "s", Command: "toggle_session_modal", Context: "global"},
		{Key: "S", Command: "toggle_session_modal", Context: "global"},
		{Key: "?", Command: "toggle_help", Context: "global"},
		{Key: "q", Command: "quit", Context: "global"},
		{Key: "f", Command: "next_stats_filter", Context: "global"},
		{Key: "y", Command: "copy_entry", Context: "global"},
	}
	for n := 1; n <= 9; n++ {
		bindings = append(bindings, keymap.Binding{
			Key:     strconv.Itoa(n),
			Command: "select_tab_" + strconv.Itoa(n),
			Context: "global",
		})
	}
	for _, b := range bindings {
		r.keys.RegisterBinding(b)
	}

	for cmdID, key := range r.cfg.Keymap.Overrides {
		r.keys.SetUserOverride(key, cmdID)
	}
}
