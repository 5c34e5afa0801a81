package tui

import (
	"github.com/artpar/querybench/internal/core"
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	ColorSuccess = lipgloss.Color("#34d399")
	ColorWarning = lipgloss.Color("#fb923c")
	ColorError   = lipgloss.Color("#fb7185")
	ColorFailed  = lipgloss.Color("#8B85C1")

	ColorFocus = lipgloss.Color("62")
	ColorTitle = lipgloss.Color("229")
	ColorMuted = lipgloss.Color("240")
	ColorText  = lipgloss.Color("252")
)

// ToneColor maps a tone to its colour. Unknown tones render muted.
func ToneColor(t core.Tone) lipgloss.Color {
	switch t {
	case core.ToneSuccess:
		return ColorSuccess
	case core.ToneWarning:
		return ColorWarning
	case core.ToneError:
		return ColorError
	case core.ToneFailed:
		return ColorFailed
	default:
		return ColorMuted
	}
}

// ToneText styles text in the tone's colour.
func ToneText(t core.Tone) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ToneColor(t))
}

// ToneBorder is the response-area border for a visual state. The border
// keeps the tone colour whether or not the panel is focused; focus only
// makes it thicker.
func ToneBorder(v core.VisualState, focused bool) lipgloss.Style {
	border := lipgloss.RoundedBorder()
	if focused {
		border = lipgloss.ThickBorder()
	}
	return lipgloss.NewStyle().
		BorderStyle(border).
		BorderForeground(ToneColor(v.Tone))
}

// Styles groups the styles shared by components.
type Styles struct {
	Focused   lipgloss.Style
	Unfocused lipgloss.Style
	Title     lipgloss.Style
	Muted     lipgloss.Style
	TabActive lipgloss.Style
	Tab       lipgloss.Style
	Button    lipgloss.Style
	Cursor    lipgloss.Style
	Error     lipgloss.Style
}

// DefaultStyles returns default styling.
func DefaultStyles() Styles {
	return Styles{
		Focused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorFocus),
		Unfocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorTitle),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		TabActive: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(ColorTitle).
			Background(ColorFocus),
		Tab: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(ColorText).
			Background(lipgloss.Color("236")),
		Button: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(ColorText).
			Background(lipgloss.Color("238")),
		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color("237")),
		Error: lipgloss.NewStyle().
			Foreground(ColorError),
	}
}
