// Package querysql renders predicates as parameterized SQL for a dialect.
//
// Values are never interpolated: every literal travels as a bound argument
// and placeholders follow the dialect ("?" for SQLite, "$n" for Postgres).
package querysql

import (
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/schema"
)

// Statement is rendered SQL with its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Render renders p as a WHERE-clause fragment.
func Render(p predicate.Predicate, d predicate.Dialect) (Statement, error) {
	if p == nil {
		return Statement{}, fmt.Errorf("cannot render nil predicate")
	}
	sql, args, err := p.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("render predicate: %w", err)
	}
	sql, err = d.PlaceholderFormat().ReplacePlaceholders(sql)
	if err != nil {
		return Statement{}, fmt.Errorf("render placeholders: %w", err)
	}
	return Statement{SQL: sql, Args: args}, nil
}

// Select describes the statement RenderSelect wraps around a predicate.
type Select struct {
	// Table is the source table. Required.
	Table string

	// Bindings maps source columns to output names. Empty selects "*".
	// A binding to the same name is rendered without an alias.
	Bindings map[string]string

	// OrderBy columns, rendered in order.
	OrderBy []string
}

// RenderSelect renders "SELECT ... FROM table WHERE p".
func RenderSelect(s Select, p predicate.Predicate, d predicate.Dialect) (Statement, error) {
	if !schema.ValidIdentifier(s.Table) {
		return Statement{}, fmt.Errorf("table %q is not a valid identifier", s.Table)
	}
	for _, col := range s.OrderBy {
		if !schema.ValidIdentifier(col) {
			return Statement{}, fmt.Errorf("order by column %q is not a valid identifier", col)
		}
	}
	columns, err := selectColumns(s.Bindings)
	if err != nil {
		return Statement{}, err
	}

	b := sq.Select(columns...).From(s.Table).PlaceholderFormat(d.PlaceholderFormat())
	if p != nil {
		b = b.Where(p)
	}
	if len(s.OrderBy) > 0 {
		b = b.OrderBy(s.OrderBy...)
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("render select: %w", err)
	}
	return Statement{SQL: sql, Args: args}, nil
}

// selectColumns converts bindings to a column list.
// Example: {"item_id": "itemId"} → "item_id AS itemId"
// Keys are sorted for deterministic output.
func selectColumns(bindings map[string]string) ([]string, error) {
	if len(bindings) == 0 {
		return []string{"*"}, nil
	}

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, source := range keys {
		alias := bindings[source]
		if !schema.ValidIdentifier(source) || !schema.ValidIdentifier(alias) {
			return nil, fmt.Errorf("binding %s AS %s is not a valid identifier pair", source, alias)
		}
		if source == alias {
			parts = append(parts, source)
		} else {
			parts = append(parts, fmt.Sprintf("%s AS %s", source, alias))
		}
	}
	return parts, nil
}
