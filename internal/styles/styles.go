// Package styles holds the fixed color palette and lipgloss style
// definitions the renderer and TUI glue use. Trimmed down from the
// teacher's full multi-theme registry (wilbur182-forge
// internal/styles/themes.go, which supports user-switchable named
// themes for a whole multi-plugin dashboard) to this program's fixed
// role palette, keeping the teacher's lipgloss.Style composition
// idiom.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette colors, grounded on the teacher's ColorPalette field names.
var (
	UserColor      = lipgloss.Color("#7AA2F7") // cyan-ish
	AssistantColor = lipgloss.Color("#9ECE6A") // green
	SystemColor    = lipgloss.Color("#565F89") // gray
	ToolHeaderColor = lipgloss.Color("#E0AF68") // yellow
	ErrorColor     = lipgloss.Color("#F7768E") // red
	FocusedGutterColor = lipgloss.Color("#7DCFFF") // cyan
	DimGutterColor      = lipgloss.Color("#414868")
	SearchHighlightBg   = lipgloss.Color("#E0AF68")
	SearchCurrentBg     = lipgloss.Color("#F7768E")
	BorderNormal   = lipgloss.Color("#414868")
	BorderActive   = lipgloss.Color("#7AA2F7")
	TextMuted      = lipgloss.Color("#565F89")
	AccentColor    = lipgloss.Color("#BB9AF7")
	SelectionBg    = lipgloss.Color("#374151")
)

// Theme bundles the styles the renderer composes per block kind. A
// single fixed instance is used throughout (no runtime theme
// switching in this program).
type Theme struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	ToolHeader lipgloss.Style
	ToolError lipgloss.Style
	Thinking  lipgloss.Style
	GutterFocused lipgloss.Style
	GutterDim     lipgloss.Style
	SearchMatch   lipgloss.Style
	SearchCurrent lipgloss.Style
	Muted         lipgloss.Style
	Divider       lipgloss.Style
}

// Default returns the program's single fixed theme.
func Default() *Theme {
	return &Theme{
		User:      lipgloss.NewStyle().Foreground(UserColor),
		Assistant: lipgloss.NewStyle().Foreground(AssistantColor),
		System:    lipgloss.NewStyle().Foreground(SystemColor),
		ToolHeader: lipgloss.NewStyle().Foreground(ToolHeaderColor).Bold(true),
		ToolError: lipgloss.NewStyle().Foreground(ErrorColor),
		Thinking:  lipgloss.NewStyle().Italic(true).Faint(true),
		GutterFocused: lipgloss.NewStyle().Foreground(FocusedGutterColor),
		GutterDim:     lipgloss.NewStyle().Foreground(DimGutterColor).Faint(true),
		SearchMatch:   lipgloss.NewStyle().Background(SearchHighlightBg),
		SearchCurrent: lipgloss.NewStyle().Background(SearchCurrentBg).Reverse(true),
		Muted:         lipgloss.NewStyle().Foreground(TextMuted),
		Divider:       lipgloss.NewStyle().Foreground(BorderNormal),
	}
}

// RoleStyle returns the base role color for msg role text: User=cyan,
// Assistant=green, System/Summary=gray.
func (t *Theme) RoleStyle(isUser, isAssistant bool) lipgloss.Style {
	switch {
	case isUser:
		return t.User
	case isAssistant:
		return t.Assistant
	default:
		return t.System
	}
}

// GetMarkdownTheme returns the glamour style path used by
// internal/markdown for non-critical prose rendering (the help
// overlay body), grounded on the teacher's styles.GetMarkdownTheme.
func GetMarkdownTheme() string {
	return "dark"
}
