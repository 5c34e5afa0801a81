package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding of the TUI. It implements help.KeyMap.
type KeyMap struct {
	// Tree navigation and editing.
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Toggle key.Binding
	Edit   key.Binding
	Add    key.Binding
	Delete key.Binding

	// Text input.
	Confirm key.Binding
	Cancel  key.Binding

	// Endpoint panel.
	PrevMethod key.Binding
	NextMethod key.Binding
	Preset     key.Binding
	EditID     key.Binding
	Send       key.Binding
	Reset      key.Binding
	CopyBody   key.Binding
	CopyCurl   key.Binding
	Filter     key.Binding
	Section    key.Binding

	// Global.
	NextPanel key.Binding
	PrevPanel key.Binding
	History   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Toggle: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit value")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		Delete: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),

		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		PrevMethod: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev method")),
		NextMethod: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next method")),
		Preset: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "load preset"),
		),
		EditID:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "edit id")),
		Send:     key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "send")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		CopyBody: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy response")),
		CopyCurl: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy as curl")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jq filter")),
		Section:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "payload/response")),

		NextPanel: key.NewBinding(key.WithKeys("ctrl+n", "]"), key.WithHelp("]", "next endpoint")),
		PrevPanel: key.NewBinding(key.WithKeys("ctrl+p", "["), key.WithHelp("[", "prev endpoint")),
		History:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "history")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the help bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.PrevMethod, k.NextMethod, k.Preset, k.Section, k.NextPanel, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.PrevMethod, k.NextMethod, k.Preset, k.EditID, k.Reset},
		{k.Section, k.Up, k.Down, k.Toggle, k.Edit, k.Add, k.Delete},
		{k.CopyBody, k.CopyCurl, k.Filter, k.Top, k.Bottom},
		{k.NextPanel, k.PrevPanel, k.History, k.Help, k.Quit},
	}
}
