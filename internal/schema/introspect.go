package schema

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
)

type columnInfo struct {
	Name string `db:"name"`
	Type string `db:"type"`
}

// Introspect reads the column list of table from a live database.
// Columns whose SQL type has no kind are skipped.
func Introspect(ctx context.Context, db *sqlx.DB, dialect predicate.Dialect, table string) (*Static, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("table %q is not a valid identifier", table)
	}

	var cols []columnInfo
	var err error
	switch dialect.(type) {
	case predicate.SQLite:
		err = db.SelectContext(ctx, &cols,
			`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	case predicate.Postgres:
		schemaName, tableName := "public", table
		if i := strings.IndexByte(table, '.'); i >= 0 {
			schemaName, tableName = table[:i], table[i+1:]
		}
		err = db.SelectContext(ctx, &cols, db.Rebind(
			`SELECT column_name AS name, data_type AS type
			   FROM information_schema.columns
			  WHERE table_schema = ? AND table_name = ?
			  ORDER BY ordinal_position`), schemaName, tableName)
	default:
		return nil, fmt.Errorf("introspection is not supported for dialect %s", dialect.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", table)
	}

	columns := make(map[string]ir.Kind, len(cols))
	for _, c := range cols {
		kind, ok := KindForSQLType(c.Type)
		if !ok {
			slog.Debug("column type not mapped, skipping", "table", table, "column", c.Name, "type", c.Type)
			continue
		}
		columns[c.Name] = kind
	}
	return NewStatic(table, columns)
}

// KindForSQLType maps a declared SQL column type to a kind, following
// SQLite's affinity rules loosely so Postgres type names map too.
func KindForSQLType(sqlType string) (ir.Kind, bool) {
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	switch {
	case t == "":
		return ir.KindInvalid, false
	case strings.Contains(t, "INTERVAL"), strings.Contains(t, "POINT"):
		return ir.KindInvalid, false
	case strings.Contains(t, "BOOL"):
		return ir.KindBoolean, true
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIMESTAMP"):
		return ir.KindDate, true
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"),
		strings.Contains(t, "CLOB"), strings.Contains(t, "UUID"):
		return ir.KindString, true
	case strings.Contains(t, "INT"), strings.Contains(t, "REAL"),
		strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"),
		strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return ir.KindNumeric, true
	}
	return ir.KindInvalid, false
}
