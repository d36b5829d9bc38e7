package query

import "fmt"

// ChildPath is the path of child i below parent, e.g. "children[1].children[0]".
func ChildPath(parent string, i int) string {
	if parent == "" {
		return fmt.Sprintf("children[%d]", i)
	}
	return fmt.Sprintf("%s.children[%d]", parent, i)
}

// Walk visits n and its descendants depth-first, parents before children.
// The root's path is "". Returning an error stops the walk.
func Walk(n Node, fn func(n Node, path string) error) error {
	return walk(n, "", fn)
}

func walk(n Node, path string, fn func(Node, string) error) error {
	if err := fn(n, path); err != nil {
		return err
	}
	for i, child := range Children(n) {
		if err := walk(child, ChildPath(path, i), fn); err != nil {
			return err
		}
	}
	return nil
}

// Stats counts the nodes of a tree and measures its depth (a lone leaf has
// depth 1).
func Stats(n Node) (nodes, depth int) {
	if n == nil {
		return 0, 0
	}
	nodes = 1
	maxChild := 0
	for _, child := range Children(n) {
		cn, cd := Stats(child)
		nodes += cn
		if cd > maxChild {
			maxChild = cd
		}
	}
	return nodes, maxChild + 1
}

// Leaves returns every leaf in left-to-right order.
func Leaves(n Node) []*Leaf {
	var out []*Leaf
	_ = Walk(n, func(n Node, _ string) error {
		if leaf, ok := n.(*Leaf); ok {
			out = append(out, leaf)
		}
		return nil
	})
	return out
}
