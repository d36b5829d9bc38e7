package operator

import (
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
)

// equality builds equals / notEquals. A null value becomes an
// IS NULL / IS NOT NULL check.
func equality(name string, negate bool) Func {
	return func(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error) {
		if ir.IsNull(value) {
			if negate {
				return env.Builder.IsNotNull(field), nil
			}
			return env.Builder.IsNull(field), nil
		}
		if err := requireKind(name, value, field.Kind); err != nil {
			return nil, err
		}
		if negate {
			return env.Builder.NotEq(field, value), nil
		}
		return env.Builder.Eq(field, value), nil
	}
}

type orderingFunc func(b predicate.Builder, f predicate.Field, v ir.Value) predicate.Predicate

// ordering builds greaterThan, lessThan and their inclusive forms.
func ordering(name string, build orderingFunc) Func {
	return func(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error) {
		if err := requireValue(value, "Value cannot be null"); err != nil {
			return nil, err
		}
		if err := requireKind(name, value, field.Kind); err != nil {
			return nil, err
		}
		return build(env.Builder, field, value), nil
	}
}

func comparisonDescriptors() []Descriptor {
	var out []Descriptor
	for _, k := range ir.Kinds() {
		out = append(out,
			Descriptor{
				Name:        "equals",
				FieldKinds:  []ir.Kind{k},
				ValueKinds:  []ir.Kind{k},
				Description: "Field equals the value; null matches missing values",
				Impl:        equality("equals", false),
			},
			Descriptor{
				Name:        "notEquals",
				FieldKinds:  []ir.Kind{k},
				ValueKinds:  []ir.Kind{k},
				Description: "Field differs from the value; null matches present values",
				Impl:        equality("notEquals", true),
			},
		)
	}

	orderings := []struct {
		name, desc string
		build      orderingFunc
	}{
		{"greaterThan", "Field is strictly greater than the value", predicate.Builder.Gt},
		{"greaterThanEqual", "Field is greater than or equal to the value", predicate.Builder.GtOrEq},
		{"lessThan", "Field is strictly less than the value", predicate.Builder.Lt},
		{"lessThanEqual", "Field is less than or equal to the value", predicate.Builder.LtOrEq},
	}
	for _, o := range orderings {
		for _, k := range []ir.Kind{ir.KindNumeric, ir.KindDate} {
			out = append(out, Descriptor{
				Name:        o.name,
				FieldKinds:  []ir.Kind{k},
				ValueKinds:  []ir.Kind{k},
				Description: o.desc,
				Impl:        ordering(o.name, o.build),
			})
		}
	}
	return out
}
