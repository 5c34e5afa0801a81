package jsontree

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment addresses one child: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key builds an object segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index builds an array segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

// Path addresses a node from the root. The empty path is the root.
type Path []Segment

// Child returns a new path extended by seg.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Parent returns the path of the containing node.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// String renders the path as $.a.b[0].
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, seg := range p {
		if seg.IsIndex {
			sb.WriteString("[" + strconv.Itoa(seg.Index) + "]")
		} else {
			sb.WriteString("." + seg.Key)
		}
	}
	return sb.String()
}

// Get returns the value at path.
func Get(root any, path Path) (any, error) {
	cur := root
	for i, seg := range path {
		next, ok := child(cur, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path[:i+1])
		}
		cur = next
	}
	return cur, nil
}

func child(v any, seg Segment) (any, bool) {
	if seg.IsIndex {
		arr, ok := v.([]any)
		if !ok || seg.Index < 0 || seg.Index >= len(arr) {
			return nil, false
		}
		return arr[seg.Index], true
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	c, ok := obj[seg.Key]
	return c, ok
}

// Set returns a copy of root with the value at path replaced.
// The empty path replaces the whole value.
func Set(root any, path Path, value any) (any, error) {
	if len(path) == 0 {
		return Clone(value), nil
	}
	return rewrite(root, path, func(parent any, last Segment) error {
		if _, ok := child(parent, last); !ok {
			return fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		switch p := parent.(type) {
		case map[string]any:
			p[last.Key] = Clone(value)
		case []any:
			p[last.Index] = Clone(value)
		}
		return nil
	})
}

// Insert returns a copy of root with a new child added to the container at
// path. Objects take key; arrays append and ignore key.
func Insert(root any, path Path, key string, value any) (any, error) {
	out := Clone(root)
	target, err := Get(out, path)
	if err != nil {
		return nil, err
	}
	var updated any
	switch t := target.(type) {
	case map[string]any:
		if key == "" {
			return nil, ErrEmptyKey
		}
		if _, exists := t[key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrKeyExists, key)
		}
		t[key] = Clone(value)
		updated = t
	case []any:
		updated = append(t, Clone(value))
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, path)
	}
	if len(path) == 0 {
		return updated, nil
	}
	return Set(out, path, updated)
}

// Delete returns a copy of root without the node at path.
func Delete(root any, path Path) (any, error) {
	if len(path) == 0 {
		return nil, ErrRootDelete
	}
	out := Clone(root)
	parentPath := path.Parent()
	parent, err := Get(out, parentPath)
	if err != nil {
		return nil, err
	}
	last := path[len(path)-1]
	if _, ok := child(parent, last); !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	var updated any
	switch p := parent.(type) {
	case map[string]any:
		delete(p, last.Key)
		updated = p
	case []any:
		trimmed := make([]any, 0, len(p)-1)
		trimmed = append(trimmed, p[:last.Index]...)
		updated = append(trimmed, p[last.Index+1:]...)
	}
	if len(parentPath) == 0 {
		return updated, nil
	}
	return Set(out, parentPath, updated)
}

// rewrite clones root, locates the parent of path and lets fn mutate it.
func rewrite(root any, path Path, fn func(parent any, last Segment) error) (any, error) {
	out := Clone(root)
	parent, err := Get(out, path.Parent())
	if err != nil {
		return nil, err
	}
	if !KindOf(parent).IsContainer() {
		return nil, fmt.Errorf("%w: %s", ErrNotContainer, path.Parent())
	}
	if err := fn(parent, path[len(path)-1]); err != nil {
		return nil, err
	}
	return out, nil
}
