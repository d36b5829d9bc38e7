package ir

import (
	"fmt"
	"strings"
)

// Kind is the semantic type of a field or a literal value.
//
// Kinds are used as dispatch keys by the operator registry, so the set is
// closed and every Kind has a canonical upper-case name.
type Kind int

const (
	// KindInvalid is the zero Kind; it never appears in a decoded query.
	KindInvalid Kind = iota
	KindString
	KindNumeric
	KindBoolean
	KindDate
)

var kindNames = map[Kind]string{
	KindString:  "STRING",
	KindNumeric: "NUMERIC",
	KindBoolean: "BOOLEAN",
	KindDate:    "DATE",
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a canonical kind name. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == want {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown value type %q: must be one of %v", s, Kinds())
}

// Kinds returns every valid kind sorted by canonical name.
func Kinds() []Kind {
	return []Kind{KindBoolean, KindDate, KindNumeric, KindString}
}
