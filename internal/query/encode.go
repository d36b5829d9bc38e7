package query

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/qengine/internal/ir"
)

type encodedComposite struct {
	Type     string            `json:"type"`
	Children []json.RawMessage `json:"children"`
}

type encodedLeaf struct {
	Type      string          `json:"type"`
	Column    string          `json:"column"`
	Operator  string          `json:"operator"`
	Value     json.RawMessage `json:"value,omitempty"`
	ValueType string          `json:"valueType,omitempty"`
}

// Encode renders n as canonical JSON: fixed key order, the "operator" key
// and parsed values in their canonical form. Strings are NFC normalized here
// only; the compiled predicate binds them unchanged.
func Encode(n Node) ([]byte, error) {
	switch n := n.(type) {
	case *And, *Or:
		children := Children(n)
		out := encodedComposite{Type: n.Type(), Children: make([]json.RawMessage, 0, len(children))}
		for _, child := range children {
			b, err := Encode(child)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, b)
		}
		return json.Marshal(out)

	case *Leaf:
		out := encodedLeaf{Type: n.Type(), Column: n.Column, Operator: n.Operator}
		if n.ValueDeclared() {
			out.ValueType = n.ValueKind.String()
			v, err := encodeValue(n.Value)
			if err != nil {
				return nil, err
			}
			out.Value = v
		} else if n.Raw != nil {
			out.Value = n.Raw
		}
		return json.Marshal(out)
	}
	return nil, fmt.Errorf("cannot encode query node %T", n)
}

func encodeValue(v ir.Value) (json.RawMessage, error) {
	switch v := v.(type) {
	case nil, ir.Null:
		return nil, nil
	case ir.Numeric:
		return json.RawMessage(v.String()), nil
	case ir.String:
		return json.Marshal(norm.NFC.String(string(v)))
	case ir.List:
		items := make([]json.RawMessage, 0, len(v.Items))
		for _, item := range v.Items {
			b, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, b)
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Arg())
}
