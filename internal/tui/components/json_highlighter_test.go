package components

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func stripLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = ansi.Strip(l)
	}
	return out
}

func TestNewJSONHighlighter(t *testing.T) {
	assert.NotNil(t, NewJSONHighlighter())
}

func TestJSONHighlighter_Lines(t *testing.T) {
	h := NewJSONHighlighter()

	t.Run("scalars", func(t *testing.T) {
		assert.Equal(t, []string{"null"}, stripLines(h.Lines(nil)))
		assert.Equal(t, []string{"42"}, stripLines(h.Lines(42.0)))
		assert.Equal(t, []string{`"hi"`}, stripLines(h.Lines("hi")))
		assert.Equal(t, []string{"true"}, stripLines(h.Lines(true)))
	})

	t.Run("empty containers stay on one line", func(t *testing.T) {
		assert.Equal(t, []string{"{}"}, stripLines(h.Lines(map[string]any{})))
		assert.Equal(t, []string{"[]"}, stripLines(h.Lines([]any{})))
	})

	t.Run("object keys are sorted", func(t *testing.T) {
		lines := stripLines(h.Lines(map[string]any{"b": 2.0, "a": "x"}))
		assert.Equal(t, []string{
			"{",
			`  "a": "x",`,
			`  "b": 2`,
			"}",
		}, lines)
	})

	t.Run("nested values", func(t *testing.T) {
		v := map[string]any{
			"order": map[string]any{
				"products": []any{
					map[string]any{"id": 1.0, "quantity": 2.0},
				},
				"paid": false,
				"email": nil,
			},
		}
		lines := stripLines(h.Lines(v))
		assert.Equal(t, []string{
			"{",
			`  "order": {`,
			`    "email": null,`,
			`    "paid": false,`,
			`    "products": [`,
			`      {`,
			`        "id": 1,`,
			`        "quantity": 2`,
			`      }`,
			`    ]`,
			`  }`,
			"}",
		}, lines)
	})

	t.Run("escapes strings", func(t *testing.T) {
		lines := stripLines(h.Lines([]any{`say "hi"`}))
		assert.Equal(t, `  "say \"hi\""`, lines[1])
	})

	t.Run("highlight joins lines", func(t *testing.T) {
		out := ansi.Strip(h.Highlight([]any{1.0, 2.0}))
		assert.Equal(t, "[\n  1,\n  2\n]", out)
	})
}

func TestJSONHighlighter_Scalar(t *testing.T) {
	h := NewJSONHighlighter()

	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"x", `"x"`},
		{1.5, "1.5"},
		{false, "false"},
		{map[string]any{"a": 1.0}, "{1}"},
		{[]any{1.0, 2.0}, "[2]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ansi.Strip(h.Scalar(tt.in)))
	}

	assert.Equal(t, "name", ansi.Strip(h.Key("name")))
}
