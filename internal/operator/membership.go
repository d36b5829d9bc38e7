package operator

import (
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
)

// membership builds in / notIn. The value must be a non-empty list whose
// elements have the field's kind.
func membership(name string, negate bool) Func {
	return func(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error) {
		if ir.IsNull(value) {
			return nil, qerr.Invalid("Value for operator %s cannot be null", name)
		}
		list, ok := value.(ir.List)
		if !ok {
			return nil, qerr.Invalid("%s expects a list of values", name)
		}
		if len(list.Items) == 0 {
			return nil, qerr.Invalid("%s requires at least one value", name)
		}
		if list.Elem != field.Kind {
			return nil, qerr.Invalid("%s expects %s values, got %s", name, field.Kind, list.Elem)
		}
		if negate {
			return env.Builder.NotIn(field, list), nil
		}
		return env.Builder.In(field, list), nil
	}
}

func membershipDescriptors() []Descriptor {
	var out []Descriptor
	for _, k := range ir.Kinds() {
		out = append(out,
			Descriptor{
				Name: "in", FieldKinds: []ir.Kind{k}, ValueKinds: []ir.Kind{k},
				Description: "Field equals one of the listed values",
				Impl:        membership("in", false),
			},
			Descriptor{
				Name: "notIn", FieldKinds: []ir.Kind{k}, ValueKinds: []ir.Kind{k},
				Description: "Field equals none of the listed values",
				Impl:        membership("notIn", true),
			},
		)
	}
	return out
}
