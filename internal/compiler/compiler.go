// Package compiler turns a decoded query tree into a predicate.
//
// Compilation is a single recursive pass. Composite nodes compile their
// children in order and combine them; leaves resolve their column, pick an
// operator by (name, field kind, value kind) and apply it. The first error
// stops the pass and no partial predicate is returned.
//
// A DateQuery leaf whose column is a YYYY-MM-DD literal, typically a
// substituted [today], is evaluated at compile time and becomes a constant
// predicate.
package compiler

import (
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/operator"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
	"github.com/roach88/qengine/internal/query"
	"github.com/roach88/qengine/internal/reqctx"
	"github.com/roach88/qengine/internal/schema"
)

// Compiler compiles query trees. It holds no per-request state and is safe
// for concurrent use.
type Compiler struct {
	resolver *operator.Resolver
	schema   schema.Resolver
	builder  predicate.Builder
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithSchema resolves columns through s. Without it, column names must be
// plain identifiers and each leaf's query kind is trusted.
func WithSchema(s schema.Resolver) Option {
	return func(c *Compiler) { c.schema = s }
}

// WithDialect selects how date expressions are rendered.
func WithDialect(d predicate.Dialect) Option {
	return func(c *Compiler) { c.builder = predicate.NewBuilder(d) }
}

// New creates a Compiler resolving operators through resolver.
func New(resolver *operator.Resolver, opts ...Option) *Compiler {
	c := &Compiler{
		resolver: resolver,
		builder:  predicate.NewBuilder(predicate.SQLite{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile builds the predicate for n.
func (c *Compiler) Compile(n query.Node, qc *reqctx.Context) (predicate.Predicate, error) {
	env := operator.Env{Builder: c.builder, Context: qc}
	return c.compile(n, env, "")
}

func (c *Compiler) compile(n query.Node, env operator.Env, path string) (predicate.Predicate, error) {
	switch n := n.(type) {
	case *query.And:
		children, err := c.compileChildren(n.Children, env, path)
		if err != nil {
			return nil, err
		}
		return c.builder.And(children...), nil

	case *query.Or:
		children, err := c.compileChildren(n.Children, env, path)
		if err != nil {
			return nil, err
		}
		return c.builder.Or(children...), nil

	case *query.Leaf:
		p, err := c.compileLeaf(n, env)
		if err != nil {
			return nil, qerr.Annotate(err, n.Column, n.Operator, path)
		}
		return p, nil
	}
	return nil, qerr.Invalid("unsupported query node %T", n).WithPath(path)
}

func (c *Compiler) compileChildren(children []query.Node, env operator.Env, path string) ([]predicate.Predicate, error) {
	if len(children) == 0 {
		return nil, qerr.Invalid("composite query requires at least one child").WithPath(path)
	}
	out := make([]predicate.Predicate, 0, len(children))
	for i, child := range children {
		p, err := c.compile(child, env, query.ChildPath(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Compiler) compileLeaf(leaf *query.Leaf, env operator.Env) (predicate.Predicate, error) {
	if date, ok := literalDate(leaf); ok {
		return c.evaluateLeaf(leaf, date, env)
	}

	field, err := c.resolveField(leaf)
	if err != nil {
		return nil, err
	}

	valueKind := leaf.ValueKind
	if !leaf.ValueDeclared() {
		valueKind, err = c.resolver.ResolveValueType(leaf.Operator, field.Kind)
		if err != nil {
			return nil, err
		}
	}

	op, err := c.resolver.Resolve(leaf.Operator, field.Kind, valueKind)
	if err != nil {
		return nil, err
	}

	value, err := c.leafValue(leaf, field.Kind, valueKind)
	if err != nil {
		return nil, err
	}

	p, err := op.Apply(env, field, value)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, qerr.Invalid("operator %s produced no predicate", leaf.Operator)
	}
	return p, nil
}

// literalDate reports whether leaf tests a date literal instead of a column.
// Column names never start with a digit, so the two cannot be confused.
func literalDate(leaf *query.Leaf) (ir.Date, bool) {
	if leaf.Kind != ir.KindDate {
		return ir.Date{}, false
	}
	d, err := ir.ParseDate(leaf.Column)
	if err != nil {
		return ir.Date{}, false
	}
	return d, true
}

func (c *Compiler) evaluateLeaf(leaf *query.Leaf, date ir.Date, env operator.Env) (predicate.Predicate, error) {
	valueKind := leaf.ValueKind
	if !leaf.ValueDeclared() {
		var err error
		valueKind, err = c.resolver.ResolveValueType(leaf.Operator, ir.KindDate)
		if err != nil {
			return nil, err
		}
	}

	ev, err := c.resolver.ResolveEvaluator(leaf.Operator, valueKind)
	if err != nil {
		return nil, err
	}
	value, err := c.leafValue(leaf, ir.KindDate, valueKind)
	if err != nil {
		return nil, err
	}
	ok, err := ev.Evaluate(env, date, value)
	if err != nil {
		return nil, err
	}
	return c.builder.Const(ok), nil
}

func (c *Compiler) resolveField(leaf *query.Leaf) (predicate.Field, error) {
	if c.schema == nil {
		return schema.Infer(leaf.Column, leaf.Kind)
	}
	field, err := c.schema.ResolveField(leaf.Column)
	if err != nil {
		return predicate.Field{}, err
	}
	if field.Kind != leaf.Kind {
		return predicate.Field{}, qerr.Invalid("column %s is %s but the query is a %s",
			leaf.Column, field.Kind, leaf.Type())
	}
	return field, nil
}

// leafValue returns the literal to hand the operator. Declared values were
// parsed at decode time; the rest are parsed now that the value kind is
// known. Nullary operators get Null without their literal being read.
func (c *Compiler) leafValue(leaf *query.Leaf, fieldKind, valueKind ir.Kind) (ir.Value, error) {
	if c.resolver.IsNullary(leaf.Operator, fieldKind) {
		return ir.Null{}, nil
	}
	if leaf.ValueDeclared() {
		if leaf.Value == nil {
			return ir.Null{}, nil
		}
		return leaf.Value, nil
	}
	return query.ParseValue(leaf.Raw, valueKind)
}
