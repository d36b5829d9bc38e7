package operator

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/qerr"
)

// requireValue rejects a null value with message.
func requireValue(value ir.Value, message string) error {
	if ir.IsNull(value) {
		return qerr.Invalid("%s", message)
	}
	return nil
}

func requireKind(name string, value ir.Value, kind ir.Kind) error {
	if value.Kind() != kind {
		return qerr.Invalid("%s expects a %s value, got %s", name, kind, value.Kind())
	}
	if _, isList := value.(ir.List); isList {
		return qerr.Invalid("%s expects a single %s value, got a list", name, kind)
	}
	return nil
}

func requireField(name string, field ir.Kind, allowed ...ir.Kind) error {
	for _, k := range allowed {
		if field == k {
			return nil
		}
	}
	return qerr.Invalid("%s does not support %s fields", name, field)
}

// wholeNumber reads a NUMERIC value that must be integral.
func wholeNumber(label string, value ir.Value) (int64, error) {
	label = cases.Title(language.English).String(label)
	n, ok := value.(ir.Numeric)
	if !ok {
		return 0, qerr.Invalid("%s value must be numeric, got %s", label, value.Kind())
	}
	i, ok := n.Int64()
	switch {
	case ok:
	case n.IsInteger():
		return 0, qerr.Invalid("%s value %s is out of range", label, qerr.Fragment(n.String()))
	default:
		return 0, qerr.Invalid("%s value must be a whole number, got %s", label, qerr.Fragment(n.String()))
	}
	return i, nil
}

// nullMessage is "<Label> value cannot be null" with the label title-cased.
// Casers are stateful, so one is made per call.
func nullMessage(label string) string {
	return cases.Title(language.English).String(label) + " value cannot be null"
}
