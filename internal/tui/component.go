package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Component is the interface for all TUI components.
type Component interface {
	Init() tea.Cmd

	// Update handles messages and returns the updated component.
	Update(msg tea.Msg) (Component, tea.Cmd)

	View() string
	Title() string

	Focused() bool
	Focus()
	Blur()

	SetSize(width, height int)
	Width() int
	Height() int
}

// FocusMsg is sent when a component should gain focus.
type FocusMsg struct{}

// BlurMsg is sent when a component should lose focus.
type BlurMsg struct{}

// BaseComponent holds the title, focus and size shared by components.
// Embed it and override Update and View.
type BaseComponent struct {
	title   string
	focused bool
	width   int
	height  int
}

// NewBaseComponent creates a new base component.
func NewBaseComponent(title string) *BaseComponent {
	return &BaseComponent{
		title: title,
	}
}

// Init initializes the component.
func (c *BaseComponent) Init() tea.Cmd {
	return nil
}

// Update tracks focus and size messages.
func (c *BaseComponent) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
	case FocusMsg:
		c.focused = true
	case BlurMsg:
		c.focused = false
	}
	return c, nil
}

// View renders the title inside a border.
func (c *BaseComponent) View() string {
	return RenderBorder(c.title, c.width, c.height, c.focused)
}

func (c *BaseComponent) Title() string { return c.title }

// SetTitle changes the title.
func (c *BaseComponent) SetTitle(title string) { c.title = title }

func (c *BaseComponent) Focused() bool { return c.focused }
func (c *BaseComponent) Focus()        { c.focused = true }
func (c *BaseComponent) Blur()         { c.focused = false }

// SetSize sets dimensions.
func (c *BaseComponent) SetSize(width, height int) {
	c.width = width
	c.height = height
}

func (c *BaseComponent) Width() int  { return c.width }
func (c *BaseComponent) Height() int { return c.height }

// ComponentList manages a list of components with focus cycling.
type ComponentList struct {
	components []Component
	focusIndex int
}

// NewComponentList creates a new component list.
func NewComponentList() *ComponentList {
	return &ComponentList{
		components: make([]Component, 0),
		focusIndex: -1,
	}
}

// Add adds a component to the list.
func (cl *ComponentList) Add(c Component) {
	cl.components = append(cl.components, c)
}

// Len returns the number of components.
func (cl *ComponentList) Len() int {
	return len(cl.components)
}

// Get returns a component by index.
func (cl *ComponentList) Get(index int) Component {
	if index < 0 || index >= len(cl.components) {
		return nil
	}
	return cl.components[index]
}

// All returns the components in order.
func (cl *ComponentList) All() []Component {
	return cl.components
}

// FocusFirst focuses the first component.
func (cl *ComponentList) FocusFirst() {
	if len(cl.components) == 0 {
		return
	}
	cl.setFocus(0)
}

// FocusNext cycles focus to the next component.
func (cl *ComponentList) FocusNext() {
	if len(cl.components) == 0 {
		return
	}
	cl.setFocus((cl.focusIndex + 1) % len(cl.components))
}

// FocusPrev cycles focus to the previous component.
func (cl *ComponentList) FocusPrev() {
	if len(cl.components) == 0 {
		return
	}
	prev := cl.focusIndex - 1
	if prev < 0 {
		prev = len(cl.components) - 1
	}
	cl.setFocus(prev)
}

// FocusIndex returns the current focus index.
func (cl *ComponentList) FocusIndex() int {
	return cl.focusIndex
}

// SetFocusIndex sets focus to a specific index.
func (cl *ComponentList) SetFocusIndex(index int) {
	if index < 0 || index >= len(cl.components) {
		return
	}
	cl.setFocus(index)
}

// Focused returns the currently focused component.
func (cl *ComponentList) Focused() Component {
	if cl.focusIndex < 0 || cl.focusIndex >= len(cl.components) {
		return nil
	}
	return cl.components[cl.focusIndex]
}

func (cl *ComponentList) setFocus(index int) {
	if cl.focusIndex >= 0 && cl.focusIndex < len(cl.components) {
		cl.components[cl.focusIndex].Blur()
	}
	cl.focusIndex = index
	cl.components[index].Focus()
}

// RenderTitle renders a title bar.
func RenderTitle(title string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Bold(true)

	if focused {
		style = style.Foreground(ColorTitle).Background(ColorFocus)
	} else {
		style = style.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238"))
	}

	return style.Render(title)
}

// RenderBorder renders content with a border.
func RenderBorder(content string, width, height int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		BorderStyle(lipgloss.RoundedBorder())

	if focused {
		style = style.BorderForeground(ColorFocus)
	} else {
		style = style.BorderForeground(ColorMuted)
	}

	return style.Render(content)
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// PadRight pads s with spaces to width runes, truncating longer input.
func PadRight(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
