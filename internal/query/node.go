package query

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/qengine/internal/ir"
)

// Node type discriminators.
const (
	TypeAnd     = "AndQuery"
	TypeOr      = "OrQuery"
	TypeString  = "StringQuery"
	TypeNumeric = "NumericQuery"
	TypeBool    = "BoolQuery"
	TypeDate    = "DateQuery"
)

// leafKinds maps leaf discriminators to the field kind they imply.
var leafKinds = map[string]ir.Kind{
	TypeString:  ir.KindString,
	TypeNumeric: ir.KindNumeric,
	TypeBool:    ir.KindBoolean,
	TypeDate:    ir.KindDate,
}

// LeafType returns the leaf discriminator for kind.
func LeafType(kind ir.Kind) (string, bool) {
	for name, k := range leafKinds {
		if k == kind {
			return name, true
		}
	}
	return "", false
}

// Node is a decoded query node.
//
// This is a sealed interface - only *And, *Or and *Leaf implement it.
type Node interface {
	queryNode()

	// Type returns the JSON discriminator of the node.
	Type() string
}

// And is the conjunction of its children. Children is never empty.
type And struct {
	Children []Node
}

// Or is the disjunction of its children. Children is never empty.
type Or struct {
	Children []Node
}

// Leaf is a single column comparison.
type Leaf struct {
	// Kind is the query kind implied by the leaf's discriminator.
	Kind ir.Kind

	Column   string
	Operator string

	// ValueKind is the declared valueType, or ir.KindInvalid when absent.
	ValueKind ir.Kind

	// Value is the parsed literal when ValueKind is declared. ir.Null marks
	// an absent or null value.
	Value ir.Value

	// Raw is the literal as it appeared in the input; nil when absent.
	Raw json.RawMessage
}

func (*And) queryNode()  {}
func (*Or) queryNode()   {}
func (*Leaf) queryNode() {}

func (*And) Type() string { return TypeAnd }
func (*Or) Type() string  { return TypeOr }

func (l *Leaf) Type() string {
	name, ok := LeafType(l.Kind)
	if !ok {
		return fmt.Sprintf("Query(%s)", l.Kind)
	}
	return name
}

// ValueDeclared reports whether the input carried a valueType.
func (l *Leaf) ValueDeclared() bool {
	return l.ValueKind != ir.KindInvalid
}

// Children returns the children of a composite node, or nil for a leaf.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *And:
		return n.Children
	case *Or:
		return n.Children
	}
	return nil
}
