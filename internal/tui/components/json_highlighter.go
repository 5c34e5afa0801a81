package components

import (
	"strings"

	"github.com/artpar/querybench/internal/jsontree"
	"github.com/charmbracelet/lipgloss"
)

// JSONHighlighter renders decoded JSON values with syntax colours.
type JSONHighlighter struct {
	keyStyle     lipgloss.Style
	stringStyle  lipgloss.Style
	numberStyle  lipgloss.Style
	boolStyle    lipgloss.Style
	nullStyle    lipgloss.Style
	bracketStyle lipgloss.Style
	colonStyle   lipgloss.Style
	indent       string
}

// NewJSONHighlighter creates a new JSON highlighter with default styles.
func NewJSONHighlighter() *JSONHighlighter {
	return &JSONHighlighter{
		keyStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("141")), // Purple
		stringStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // Green
		numberStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // Orange
		boolStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),  // Blue
		nullStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // Gray
		bracketStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")), // Light gray
		colonStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // Gray
		indent:       "  ",
	}
}

// Lines pretty-prints v, one highlighted line per output row. Object keys
// are sorted.
func (h *JSONHighlighter) Lines(v any) []string {
	var lines []string
	h.write(&lines, v, 0, "", true)
	return lines
}

// Highlight is Lines joined with newlines.
func (h *JSONHighlighter) Highlight(v any) string {
	return strings.Join(h.Lines(v), "\n")
}

// Scalar renders a single-line preview of v in its kind's colour.
// Containers render as their size, e.g. {3} or [2].
func (h *JSONHighlighter) Scalar(v any) string {
	text := jsontree.Preview(v)
	switch jsontree.KindOf(v) {
	case jsontree.KindString:
		return h.stringStyle.Render(text)
	case jsontree.KindNumber:
		return h.numberStyle.Render(text)
	case jsontree.KindBool:
		return h.boolStyle.Render(text)
	case jsontree.KindNull:
		return h.nullStyle.Render(text)
	default:
		return h.bracketStyle.Render(text)
	}
}

// Key renders an object key or array label.
func (h *JSONHighlighter) Key(label string) string {
	return h.keyStyle.Render(label)
}

func (h *JSONHighlighter) write(lines *[]string, v any, depth int, prefix string, last bool) {
	pad := strings.Repeat(h.indent, depth)
	comma := ""
	if !last {
		comma = ","
	}

	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			*lines = append(*lines, pad+prefix+h.bracketStyle.Render("{}")+comma)
			return
		}
		*lines = append(*lines, pad+prefix+h.bracketStyle.Render("{"))
		keys := jsontree.SortedKeys(t)
		for i, k := range keys {
			field := h.keyStyle.Render(jsontree.Preview(k)) + h.colonStyle.Render(":") + " "
			h.write(lines, t[k], depth+1, field, i == len(keys)-1)
		}
		*lines = append(*lines, pad+h.bracketStyle.Render("}")+comma)
	case []any:
		if len(t) == 0 {
			*lines = append(*lines, pad+prefix+h.bracketStyle.Render("[]")+comma)
			return
		}
		*lines = append(*lines, pad+prefix+h.bracketStyle.Render("["))
		for i, c := range t {
			h.write(lines, c, depth+1, "", i == len(t)-1)
		}
		*lines = append(*lines, pad+h.bracketStyle.Render("]")+comma)
	default:
		*lines = append(*lines, pad+prefix+h.Scalar(t)+comma)
	}
}
