package operator

import (
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/qerr"
)

// Resolver finds operators in a Registry and reports misses as
// OperatorNotFound errors.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver over registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Registry returns the underlying registry.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve returns the operator registered for (name, field) that accepts
// value kind value.
func (r *Resolver) Resolve(name string, field, value ir.Kind) (Operator, error) {
	op, ok := r.registry.Get(name, field, value)
	if !ok {
		return nil, qerr.NotFound(name,
			"Operator %s does not support field type %s with value type %s", name, field, value)
	}
	return op, nil
}

// ResolveEvaluator returns the DATE operator registered under name when it
// accepts value kind value and can evaluate a literal date.
func (r *Resolver) ResolveEvaluator(name string, value ir.Kind) (Evaluator, error) {
	op, err := r.Resolve(name, ir.KindDate, value)
	if err != nil {
		return nil, err
	}
	ev, ok := op.(Evaluator)
	if !ok {
		return nil, qerr.NotFound(name, "Operator %s cannot evaluate a literal date", name)
	}
	return ev, nil
}

// ResolveValueType picks the kind to decode an undeclared literal into.
//
// The field's own kind wins when name supports it. Otherwise the supported
// kind with the lexicographically smallest canonical name is returned.
func (r *Resolver) ResolveValueType(name string, field ir.Kind) (ir.Kind, error) {
	supported := r.registry.SupportedValueTypes(name)
	if supported.Cardinality() == 0 {
		return ir.KindInvalid, qerr.NotFound(name, "no value types registered for operator %s", name)
	}
	if supported.Contains(field) {
		return field, nil
	}
	return sortedKinds(supported)[0], nil
}

// IsNullary reports whether the operator registered for (name, field)
// ignores its value.
func (r *Resolver) IsNullary(name string, field ir.Kind) bool {
	d, ok := r.registry.Lookup(name, field)
	return ok && d.Nullary
}
