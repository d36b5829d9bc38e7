// Package schema resolves query column names to typed fields.
//
// A schema comes from a YAML or CUE file, from database introspection, or
// is built in code. Without a schema the compiler trusts each leaf's query
// kind and only accepts plain identifiers as column names.
package schema

import (
	"regexp"
	"sort"

	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
)

// identifier is a bare or table-qualified SQL identifier.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Resolver maps a column name to a typed field reference.
type Resolver interface {
	ResolveField(column string) (predicate.Field, error)
}

// ValidIdentifier reports whether column is safe to splice into SQL.
func ValidIdentifier(column string) bool {
	return identifier.MatchString(column)
}

// Infer builds a field without a schema: the column must be a plain
// identifier and its kind is taken on trust.
func Infer(column string, kind ir.Kind) (predicate.Field, error) {
	if !ValidIdentifier(column) {
		return predicate.Field{}, qerr.Invalid("column %q is not a valid identifier", column).WithColumn(column)
	}
	return predicate.Field{Column: column, Kind: kind}, nil
}

// Static is a fixed column table.
type Static struct {
	table  string
	fields map[string]predicate.Field
}

// NewStatic builds a schema for table from column kinds.
func NewStatic(table string, columns map[string]ir.Kind) (*Static, error) {
	s := &Static{table: table, fields: make(map[string]predicate.Field, len(columns))}
	for name, kind := range columns {
		if !ValidIdentifier(name) {
			return nil, qerr.Invalid("column %q is not a valid identifier", name)
		}
		if !kind.Valid() {
			return nil, qerr.Invalid("column %s has no valid kind", name)
		}
		s.fields[name] = predicate.Field{Column: name, Kind: kind}
	}
	return s, nil
}

// MustStatic is NewStatic for literal tables.
func MustStatic(table string, columns map[string]ir.Kind) *Static {
	s, err := NewStatic(table, columns)
	if err != nil {
		panic(err)
	}
	return s
}

// ResolveField returns the field for column or an InvalidQuery error naming
// the unknown column.
func (s *Static) ResolveField(column string) (predicate.Field, error) {
	f, ok := s.fields[column]
	if !ok {
		return predicate.Field{}, qerr.Invalid("unknown column %s", column).WithColumn(column)
	}
	return f, nil
}

// Table is the table the schema describes; empty when unknown.
func (s *Static) Table() string {
	return s.table
}

// Columns lists the column names, sorted.
func (s *Static) Columns() []string {
	out := make([]string, 0, len(s.fields))
	for name := range s.fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
