package jsontree

import "strconv"

// Node is one visible row of a flattened tree.
type Node struct {
	Path      Path
	Depth     int
	Label     string // object key, [index], or empty for the root
	Kind      Kind
	Value     any
	Collapsed bool
	Children  int
}

// ID identifies the node across re-flattening.
func (n Node) ID() string {
	return n.Path.String()
}

// Flatten walks root in display order. Children of nodes whose path is in
// collapsed are skipped.
func Flatten(root any, collapsed map[string]bool) []Node {
	var nodes []Node
	walk(root, nil, 0, "", collapsed, &nodes)
	return nodes
}

func walk(v any, path Path, depth int, label string, collapsed map[string]bool, out *[]Node) {
	kind := KindOf(v)
	node := Node{
		Path:  path,
		Depth: depth,
		Label: label,
		Kind:  kind,
		Value: v,
	}
	switch t := v.(type) {
	case map[string]any:
		node.Children = len(t)
	case []any:
		node.Children = len(t)
	}
	node.Collapsed = kind.IsContainer() && collapsed[path.String()]
	*out = append(*out, node)

	if node.Collapsed {
		return
	}
	switch t := v.(type) {
	case map[string]any:
		for _, k := range SortedKeys(t) {
			walk(t[k], path.Child(Key(k)), depth+1, k, collapsed, out)
		}
	case []any:
		for i, c := range t {
			walk(c, path.Child(Index(i)), depth+1, "["+strconv.Itoa(i)+"]", collapsed, out)
		}
	}
}
