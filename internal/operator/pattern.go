package operator

import (
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
)

// pattern builds like / startsWith / endsWith. The value is used verbatim
// between prefix and suffix; an empty value is allowed.
func pattern(name, prefix, suffix string) Func {
	return func(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error) {
		if ir.IsNull(value) {
			return nil, qerr.Invalid("Value for operator %s cannot be null", name)
		}
		if err := requireField(name, field.Kind, ir.KindString); err != nil {
			return nil, err
		}
		if err := requireKind(name, value, ir.KindString); err != nil {
			return nil, err
		}
		s := string(value.(ir.String))
		return env.Builder.Like(field, prefix+s+suffix), nil
	}
}

func patternDescriptors() []Descriptor {
	str := []ir.Kind{ir.KindString}
	return []Descriptor{
		{
			Name: "like", FieldKinds: str, ValueKinds: str,
			Description: "Field matches the value as a LIKE pattern",
			Impl:        pattern("like", "", ""),
		},
		{
			Name: "startsWith", FieldKinds: str, ValueKinds: str,
			Description: "Field starts with the value",
			Impl:        pattern("startsWith", "", "%"),
		},
		{
			Name: "endsWith", FieldKinds: str, ValueKinds: str,
			Description: "Field ends with the value",
			Impl:        pattern("endsWith", "%", ""),
		},
	}
}
