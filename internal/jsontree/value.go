// Package jsontree edits arbitrary JSON values as trees.
//
// Values are the shapes produced by encoding/json when decoding into any:
// map[string]any, []any, string, bool, nil and numbers. Every mutation
// returns a new value and leaves its input untouched.
package jsontree

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrPathNotFound = errors.New("path not found")
	ErrNotContainer = errors.New("value is not an object or array")
	ErrKeyExists    = errors.New("key already exists")
	ErrEmptyKey     = errors.New("object key cannot be empty")
	ErrRootDelete   = errors.New("cannot delete the root value")
	ErrReadOnly     = errors.New("editor is read-only")
)

// Kind is the JSON type of a value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "null"
	}
}

// KindOf returns the JSON kind of v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	default:
		return KindString
	}
}

// IsContainer reports whether the kind has children.
func (k Kind) IsContainer() bool {
	return k == KindObject || k == KindArray
}

// Clone deep-copies objects and arrays. Scalars are returned as-is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = Clone(child)
		}
		return out
	default:
		return v
	}
}

// SortedKeys returns the keys of an object in display order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseLiteral interprets edited text. Valid JSON is decoded; anything else
// is kept as a string, so typing `abc` yields "abc" and `42` yields 42.
func ParseLiteral(text string) any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v
	}
	return text
}

// Preview renders v on a single line.
func Preview(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	case map[string]any:
		return fmt.Sprintf("{%d}", len(t))
	case []any:
		return fmt.Sprintf("[%d]", len(t))
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
