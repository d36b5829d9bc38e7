package operator

import (
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
)

func nullCheckDescriptors() []Descriptor {
	all := ir.Kinds()
	return []Descriptor{
		{
			Name: "isNull", FieldKinds: all, ValueKinds: all, Nullary: true,
			Description: "Field has no value",
			Impl: Func(func(env Env, field predicate.Field, _ ir.Value) (predicate.Predicate, error) {
				return env.Builder.IsNull(field), nil
			}),
		},
		{
			Name: "isNotNull", FieldKinds: all, ValueKinds: all, Nullary: true,
			Description: "Field has a value",
			Impl: Func(func(env Env, field predicate.Field, _ ir.Value) (predicate.Predicate, error) {
				return env.Builder.IsNotNull(field), nil
			}),
		},
	}
}
