package predicate

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Shape is the combinator skeleton of a predicate with each leaf's SQL and
// arguments. Two predicates with equal shapes render identically.
type Shape struct {
	Op       string // "AND", "OR" or "LEAF"
	SQL      string // leaf SQL, "?" placeholders
	Args     []any
	Children []Shape
}

// ShapeOf walks p's AND / OR combinators down to the leaves.
func ShapeOf(p Predicate) (Shape, error) {
	switch p := p.(type) {
	case sq.And:
		return combinator("AND", p)
	case sq.Or:
		return combinator("OR", p)
	}
	sql, args, err := p.ToSql()
	if err != nil {
		return Shape{}, err
	}
	return Shape{Op: "LEAF", SQL: sql, Args: args}, nil
}

func combinator(op string, children []sq.Sqlizer) (Shape, error) {
	s := Shape{Op: op, Children: make([]Shape, 0, len(children))}
	for _, child := range children {
		cs, err := ShapeOf(child)
		if err != nil {
			return Shape{}, err
		}
		s.Children = append(s.Children, cs)
	}
	return s, nil
}

// String renders the skeleton only, e.g. "AND(OR(LEAF,LEAF),LEAF)".
func (s Shape) String() string {
	if s.Op == "LEAF" {
		return s.Op
	}
	parts := make([]string, len(s.Children))
	for i, c := range s.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s(%s)", s.Op, strings.Join(parts, ","))
}

// Leaves returns the leaf shapes in left-to-right order.
func (s Shape) Leaves() []Shape {
	if s.Op == "LEAF" {
		return []Shape{s}
	}
	var out []Shape
	for _, c := range s.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}
