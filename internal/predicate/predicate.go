// Package predicate is the condition backend the compiler targets.
//
// Predicates are squirrel Sqlizer trees: leaf comparisons built per field and
// composed with n-ary AND / OR. Rendering to SQL text happens later, in
// querysql, so a predicate stays dialect-independent except for date
// expressions, which the Builder renders through its Dialect.
package predicate

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/qengine/internal/ir"
)

// Predicate is a composable boolean SQL expression.
type Predicate = sq.Sqlizer

// Field is a typed column reference produced by schema resolution.
type Field struct {
	// Column is the SQL column expression, e.g. "salary" or "e.salary".
	Column string

	// Kind is the column's semantic type.
	Kind ir.Kind
}

// Builder constructs leaf predicates and combinators.
// The zero value renders date expressions for SQLite.
type Builder struct {
	dialect Dialect
}

// NewBuilder creates a Builder for the given dialect.
func NewBuilder(d Dialect) Builder {
	return Builder{dialect: d}
}

// Dialect returns the builder's dialect.
func (b Builder) Dialect() Dialect {
	if b.dialect == nil {
		return SQLite{}
	}
	return b.dialect
}

// Eq compares for equality. A null value yields IS NULL and a list yields IN.
func (b Builder) Eq(f Field, v ir.Value) Predicate {
	return sq.Eq{f.Column: arg(v)}
}

// NotEq compares for inequality. A null value yields IS NOT NULL.
func (b Builder) NotEq(f Field, v ir.Value) Predicate {
	return sq.NotEq{f.Column: arg(v)}
}

func (b Builder) Gt(f Field, v ir.Value) Predicate {
	return sq.Gt{f.Column: arg(v)}
}

func (b Builder) GtOrEq(f Field, v ir.Value) Predicate {
	return sq.GtOrEq{f.Column: arg(v)}
}

func (b Builder) Lt(f Field, v ir.Value) Predicate {
	return sq.Lt{f.Column: arg(v)}
}

func (b Builder) LtOrEq(f Field, v ir.Value) Predicate {
	return sq.LtOrEq{f.Column: arg(v)}
}

// Like matches f against pattern verbatim; wildcards are the caller's.
func (b Builder) Like(f Field, pattern string) Predicate {
	return sq.Like{f.Column: pattern}
}

func (b Builder) IsNull(f Field) Predicate {
	return sq.Eq{f.Column: nil}
}

func (b Builder) IsNotNull(f Field) Predicate {
	return sq.NotEq{f.Column: nil}
}

// In matches any item of list.
func (b Builder) In(f Field, list ir.List) Predicate {
	return sq.Eq{f.Column: list.Arg()}
}

// NotIn matches no item of list.
func (b Builder) NotIn(f Field, list ir.List) Predicate {
	return sq.NotEq{f.Column: list.Arg()}
}

// DatePartEq extracts part from f and compares it to n.
func (b Builder) DatePartEq(f Field, part DatePart, n int64) Predicate {
	return sq.Expr(b.Dialect().DatePart(part, f.Column)+" = ?", n)
}

// DateEq compares the calendar date of f to d.
func (b Builder) DateEq(f Field, d ir.Date) Predicate {
	return sq.Expr(b.Dialect().DateOnly(f.Column)+" = ?", d.Arg())
}

// Const is a predicate that is always true or always false.
func (b Builder) Const(ok bool) Predicate {
	if ok {
		return sq.Expr("1 = 1")
	}
	return sq.Expr("1 = 0")
}

// And conjoins ps in order. A single predicate is returned unchanged.
func (b Builder) And(ps ...Predicate) Predicate {
	if len(ps) == 1 {
		return ps[0]
	}
	return sq.And(ps)
}

// Or disjoins ps in order. A single predicate is returned unchanged.
func (b Builder) Or(ps ...Predicate) Predicate {
	if len(ps) == 1 {
		return ps[0]
	}
	return sq.Or(ps)
}

func arg(v ir.Value) any {
	if ir.IsNull(v) {
		return nil
	}
	return v.Arg()
}
