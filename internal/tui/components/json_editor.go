package components

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/artpar/querybench/internal/jsontree"
	"github.com/artpar/querybench/internal/tui"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type editorMode int

const (
	modeBrowse editorMode = iota
	modeEditValue
	modeAddKey
	modeAddValue
)

// JSONEditor shows a JSON value as a collapsible tree. Unless read-only it
// edits values, adds children and deletes nodes, reporting each change as
// the whole new value.
type JSONEditor struct {
	*tui.BaseComponent

	tree        *jsontree.Editor
	keys        tui.KeyMap
	styles      tui.Styles
	highlighter *JSONHighlighter

	collapsed map[string]bool
	cursor    int
	offset    int

	mode       editorMode
	input      textinput.Model
	target     jsontree.Path
	pendingKey string
	err        string
}

// NewJSONEditor creates an editable tree over a copy of value. onChange
// receives the entire new value after every mutation.
func NewJSONEditor(title string, value any, onChange func(any)) *JSONEditor {
	var opts []jsontree.EditorOption
	if onChange != nil {
		opts = append(opts, jsontree.WithOnChange(onChange))
	}
	return newJSONEditor(title, jsontree.NewEditor(value, opts...))
}

// NewJSONViewer creates a read-only tree.
func NewJSONViewer(title string, value any) *JSONEditor {
	return newJSONEditor(title, jsontree.NewEditor(value, jsontree.ReadOnly()))
}

func newJSONEditor(title string, tree *jsontree.Editor) *JSONEditor {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 4096

	return &JSONEditor{
		BaseComponent: tui.NewBaseComponent(title),
		tree:          tree,
		keys:          tui.DefaultKeyMap(),
		styles:        tui.DefaultStyles(),
		highlighter:   NewJSONHighlighter(),
		collapsed:     make(map[string]bool),
		input:         input,
	}
}

// Value returns a copy of the edited value.
func (e *JSONEditor) Value() any {
	return e.tree.Value()
}

// SetValue replaces the value without reporting a change. Collapse state is
// kept for paths that still exist.
func (e *JSONEditor) SetValue(v any) {
	e.tree.SetValue(v)
	e.cancel()
	e.err = ""
	e.clampCursor()
}

// ReadOnly reports whether editing is disabled.
func (e *JSONEditor) ReadOnly() bool {
	return e.tree.ReadOnly()
}

// Editing reports whether a text prompt is open. Hosts should route all
// keys to the editor while it is.
func (e *JSONEditor) Editing() bool {
	return e.mode != modeBrowse
}

// Err returns the last edit error, if any.
func (e *JSONEditor) Err() string {
	return e.err
}

// Rows returns the visible rows.
func (e *JSONEditor) Rows() []jsontree.Node {
	return jsontree.Flatten(e.tree.Value(), e.collapsed)
}

// Cursor returns the selected row index.
func (e *JSONEditor) Cursor() int {
	return e.cursor
}

// Selected returns the row under the cursor.
func (e *JSONEditor) Selected() (jsontree.Node, bool) {
	rows := e.Rows()
	if e.cursor < 0 || e.cursor >= len(rows) {
		return jsontree.Node{}, false
	}
	return rows[e.cursor], true
}

// Init initializes the component.
func (e *JSONEditor) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (e *JSONEditor) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.SetSize(msg.Width, msg.Height)
		return e, nil
	case tea.KeyMsg:
		if !e.Focused() {
			return e, nil
		}
		if e.Editing() {
			return e.handleInputKey(msg)
		}
		return e.handleBrowseKey(msg)
	}
	return e, nil
}

func (e *JSONEditor) handleBrowseKey(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	rows := e.Rows()
	switch {
	case key.Matches(msg, e.keys.Up):
		e.moveCursor(-1, len(rows))
	case key.Matches(msg, e.keys.Down):
		e.moveCursor(1, len(rows))
	case key.Matches(msg, e.keys.Top):
		e.cursor = 0
		e.offset = 0
	case key.Matches(msg, e.keys.Bottom):
		e.moveCursor(len(rows), len(rows))
	case key.Matches(msg, e.keys.Toggle):
		if node, ok := e.Selected(); ok && node.Kind.IsContainer() {
			id := node.ID()
			e.collapsed[id] = !e.collapsed[id]
		}
	case key.Matches(msg, e.keys.Edit):
		return e, e.beginEdit()
	case key.Matches(msg, e.keys.Add):
		return e, e.beginAdd()
	case key.Matches(msg, e.keys.Delete):
		e.deleteSelected()
	}
	return e, nil
}

func (e *JSONEditor) handleInputKey(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch {
	case key.Matches(msg, e.keys.Cancel):
		e.cancel()
		return e, nil
	case key.Matches(msg, e.keys.Confirm):
		return e, e.commit()
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return e, cmd
}

func (e *JSONEditor) beginEdit() tea.Cmd {
	if e.ReadOnly() {
		e.err = jsontree.ErrReadOnly.Error()
		return nil
	}
	node, ok := e.Selected()
	if !ok {
		return nil
	}
	text, err := json.Marshal(node.Value)
	if err != nil {
		e.err = err.Error()
		return nil
	}
	e.target = node.Path
	e.mode = modeEditValue
	e.input.Placeholder = "JSON value"
	e.input.SetValue(string(text))
	e.input.CursorEnd()
	return e.input.Focus()
}

// beginAdd targets the selected container, or the parent of a scalar.
func (e *JSONEditor) beginAdd() tea.Cmd {
	if e.ReadOnly() {
		e.err = jsontree.ErrReadOnly.Error()
		return nil
	}
	node, ok := e.Selected()
	if !ok {
		return nil
	}
	target := node.Path
	kind := node.Kind
	if !kind.IsContainer() {
		if len(target) == 0 {
			e.err = jsontree.ErrNotContainer.Error()
			return nil
		}
		target = target.Parent()
		parent, err := jsontree.Get(e.tree.Value(), target)
		if err != nil {
			e.err = err.Error()
			return nil
		}
		kind = jsontree.KindOf(parent)
	}
	// Adding into a collapsed container would hide the new child.
	delete(e.collapsed, target.String())

	e.target = target
	e.pendingKey = ""
	e.input.SetValue("")
	if kind == jsontree.KindObject {
		e.mode = modeAddKey
		e.input.Placeholder = "key"
	} else {
		e.mode = modeAddValue
		e.input.Placeholder = "JSON value"
	}
	return e.input.Focus()
}

func (e *JSONEditor) commit() tea.Cmd {
	text := e.input.Value()
	switch e.mode {
	case modeEditValue:
		e.apply(e.tree.Edit(e.target, jsontree.ParseLiteral(text)))
	case modeAddKey:
		if strings.TrimSpace(text) == "" {
			e.err = jsontree.ErrEmptyKey.Error()
			return nil
		}
		e.pendingKey = text
		e.mode = modeAddValue
		e.input.Placeholder = "JSON value"
		e.input.SetValue("")
		return nil
	case modeAddValue:
		e.apply(e.tree.Add(e.target, e.pendingKey, jsontree.ParseLiteral(text)))
	}
	return nil
}

func (e *JSONEditor) deleteSelected() {
	if e.ReadOnly() {
		e.err = jsontree.ErrReadOnly.Error()
		return
	}
	node, ok := e.Selected()
	if !ok {
		return
	}
	if err := e.tree.Remove(node.Path); err != nil {
		e.err = err.Error()
		return
	}
	e.err = ""
	e.clampCursor()
}

// apply closes the prompt on success and keeps it open on failure so the
// text can be corrected.
func (e *JSONEditor) apply(err error) {
	if err != nil {
		e.err = err.Error()
		if errors.Is(err, jsontree.ErrKeyExists) {
			e.mode = modeAddKey
			e.input.Placeholder = "key"
			e.input.SetValue(e.pendingKey)
		}
		return
	}
	e.err = ""
	e.cancel()
	e.clampCursor()
}

func (e *JSONEditor) cancel() {
	e.mode = modeBrowse
	e.pendingKey = ""
	e.target = nil
	e.input.Blur()
	e.input.SetValue("")
}

func (e *JSONEditor) moveCursor(delta, total int) {
	e.cursor += delta
	if e.cursor >= total {
		e.cursor = total - 1
	}
	if e.cursor < 0 {
		e.cursor = 0
	}
	e.scroll()
}

func (e *JSONEditor) clampCursor() {
	e.moveCursor(0, len(e.Rows()))
}

func (e *JSONEditor) scroll() {
	visible := e.visibleRows()
	if visible <= 0 {
		return
	}
	if e.cursor < e.offset {
		e.offset = e.cursor
	}
	if e.cursor >= e.offset+visible {
		e.offset = e.cursor - visible + 1
	}
}

// visibleRows is the body height left after the prompt and error lines.
// Zero means unbounded.
func (e *JSONEditor) visibleRows() int {
	h := e.Height()
	if h <= 0 {
		return 0
	}
	if e.Editing() {
		h--
	}
	if e.err != "" {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the visible rows and, while editing, the prompt.
func (e *JSONEditor) View() string {
	rows := e.Rows()
	end := len(rows)
	if visible := e.visibleRows(); visible > 0 && e.offset+visible < end {
		end = e.offset + visible
	}

	var b strings.Builder
	for i := e.offset; i < end; i++ {
		var line string
		if i == e.cursor && e.Focused() {
			line = e.renderRow(rows[i], false)
			if e.Width() > 0 {
				line = tui.PadRight(line, e.Width())
			}
			line = e.styles.Cursor.Render(line)
		} else {
			line = e.renderRow(rows[i], true)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if e.Editing() {
		b.WriteString("\n" + e.promptLabel() + e.input.View())
	}
	if e.err != "" {
		b.WriteString("\n" + e.styles.Error.Render(e.err))
	}
	return b.String()
}

// renderRow renders one row. The cursor row is plain so that it can be
// padded to the full width before highlighting.
func (e *JSONEditor) renderRow(n jsontree.Node, colour bool) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", n.Depth))
	if n.Kind.IsContainer() {
		if n.Collapsed {
			b.WriteString("▸ ")
		} else {
			b.WriteString("▾ ")
		}
	} else {
		b.WriteString("  ")
	}
	if !colour {
		if n.Label != "" {
			b.WriteString(n.Label + ": ")
		}
		b.WriteString(jsontree.Preview(n.Value))
		return b.String()
	}
	if n.Label != "" {
		b.WriteString(e.highlighter.Key(n.Label) + ": ")
	}
	b.WriteString(e.highlighter.Scalar(n.Value))
	return b.String()
}

func (e *JSONEditor) promptLabel() string {
	switch e.mode {
	case modeEditValue:
		return "edit " + e.target.String() + " "
	case modeAddKey:
		return "new key in " + e.target.String() + " "
	case modeAddValue:
		if e.pendingKey != "" {
			return "value for " + e.target.Child(jsontree.Key(e.pendingKey)).String() + " "
		}
		return "append to " + e.target.String() + " "
	}
	return ""
}
