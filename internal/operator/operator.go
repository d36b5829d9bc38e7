package operator

import (
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/reqctx"
)

// Env is what an operator may consult besides its field and value.
type Env struct {
	// Builder constructs predicates for the target dialect.
	Builder predicate.Builder

	// Context is the request context; date-relative operators read Now.
	Context *reqctx.Context
}

// Operator builds a predicate for one leaf comparison.
type Operator interface {
	Apply(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error)
}

// Evaluator is implemented by operators that can test a literal date in
// place of a column, as in "[today] dayOfWeek 1". The outcome is known at
// compile time and becomes a constant predicate.
type Evaluator interface {
	Evaluate(env Env, date ir.Date, value ir.Value) (bool, error)
}

// Func adapts a function to the Operator interface.
type Func func(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error)

// Apply calls f.
func (f Func) Apply(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error) {
	return f(env, field, value)
}

// Descriptor is the static registration record of an operator.
type Descriptor struct {
	// Name is the operator name used in queries, e.g. "greaterThan".
	Name string

	// FieldKinds are the field kinds Impl handles.
	FieldKinds []ir.Kind

	// ValueKinds are the literal kinds Impl accepts.
	ValueKinds []ir.Kind

	// Nullary operators never consult their value.
	Nullary bool

	// Description is shown by the CLI's operator listing.
	Description string

	Impl Operator
}
