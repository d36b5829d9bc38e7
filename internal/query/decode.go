package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/qerr"
)

// Default limits applied when a Limits field is zero.
const (
	DefaultMaxDepth = 32
	DefaultMaxNodes = 1000
)

// Limits bounds the size of a decoded tree.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

// DefaultLimits returns the default decode limits.
func DefaultLimits() Limits {
	return Limits{MaxDepth: DefaultMaxDepth, MaxNodes: DefaultMaxNodes}
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxNodes <= 0 {
		l.MaxNodes = DefaultMaxNodes
	}
	return l
}

// Decode parses a substituted JSON query into a validated tree.
func Decode(raw []byte, limits Limits) (Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, qerr.Malformed("query is not valid JSON")
	}
	d := &decoder{limits: limits.withDefaults()}
	return d.node(raw, "", 1)
}

type decoder struct {
	limits Limits
	nodes  int
}

func (d *decoder) node(raw json.RawMessage, path string, depth int) (Node, error) {
	if depth > d.limits.MaxDepth {
		return nil, qerr.Invalid("query nesting exceeds the maximum depth of %d", d.limits.MaxDepth).WithPath(path)
	}
	d.nodes++
	if d.nodes > d.limits.MaxNodes {
		return nil, qerr.Invalid("query exceeds the maximum of %d nodes", d.limits.MaxNodes).WithPath(path)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, qerr.Malformed("query node must be a JSON object").WithPath(path)
	}

	typ, present, err := stringField(fields, "type")
	if err != nil || !present || typ == "" {
		return nil, qerr.Malformed("query node is missing its type").WithPath(path)
	}

	switch typ {
	case TypeAnd, TypeOr:
		children, err := d.children(typ, fields, path, depth)
		if err != nil {
			return nil, err
		}
		if typ == TypeAnd {
			return &And{Children: children}, nil
		}
		return &Or{Children: children}, nil
	}

	kind, ok := leafKinds[typ]
	if !ok {
		return nil, qerr.Malformed("unknown query type %q", typ).WithPath(path)
	}
	return d.leaf(kind, fields, path)
}

func (d *decoder) children(typ string, fields map[string]json.RawMessage, path string, depth int) ([]Node, error) {
	var items []json.RawMessage
	if raw, ok := fields["children"]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, qerr.Malformed("%s children must be an array", typ).WithPath(path)
		}
	}
	if len(items) == 0 {
		return nil, qerr.Invalid("%s requires at least one child", typ).WithPath(path)
	}

	out := make([]Node, 0, len(items))
	for i, item := range items {
		child, err := d.node(item, ChildPath(path, i), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func (d *decoder) leaf(kind ir.Kind, fields map[string]json.RawMessage, path string) (Node, error) {
	column, _, err := stringField(fields, "column")
	if err != nil {
		return nil, qerr.Invalid("column must be a string").WithPath(path)
	}
	column = strings.TrimSpace(column)
	if column == "" {
		return nil, qerr.Invalid("Column cannot be null or empty").WithPath(path)
	}

	operator, present, err := stringField(fields, "operator")
	if err == nil && !present {
		operator, _, err = stringField(fields, "operatorName")
	}
	if err != nil {
		return nil, qerr.Invalid("operator must be a string").WithColumn(column).WithPath(path)
	}
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return nil, qerr.Invalid("Operator cannot be null or empty").WithColumn(column).WithPath(path)
	}

	leaf := &Leaf{Kind: kind, Column: column, Operator: operator}
	if raw, ok := fields["value"]; ok && !isNull(raw) {
		leaf.Raw = raw
	}

	vt, present, err := stringField(fields, "valueType")
	if err != nil {
		return nil, qerr.Invalid("valueType must be a string").WithColumn(column).WithOperator(operator).WithPath(path)
	}
	if !present {
		return leaf, nil
	}

	leaf.ValueKind, err = ir.ParseKind(vt)
	if err != nil {
		return nil, qerr.Wrap(qerr.InvalidQuery, err, "invalid valueType").
			WithColumn(column).WithOperator(operator).WithPath(path)
	}
	leaf.Value, err = ParseValue(leaf.Raw, leaf.ValueKind)
	if err != nil {
		return nil, qerr.Annotate(err, column, operator, path)
	}
	return leaf, nil
}

// ParseValue parses a leaf literal as kind, reporting malformed literals as
// QueryDeserialization errors.
func ParseValue(raw json.RawMessage, kind ir.Kind) (ir.Value, error) {
	v, err := ir.Parse(raw, kind)
	if err != nil {
		var pe *ir.ParseError
		if errors.As(err, &pe) {
			e := qerr.Wrap(qerr.QueryDeserialization, err, "cannot read value as %s", kind)
			e.Fragment = qerr.Fragment(pe.Literal)
			return nil, e
		}
		return nil, qerr.Wrap(qerr.InvalidQuery, err, "cannot read value")
	}
	return v, nil
}

// stringField reads fields[name] as a string. A missing key or JSON null
// reports present=false.
func stringField(fields map[string]json.RawMessage, name string) (s string, present bool, err error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return "", false, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true, err
	}
	return s, true, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
