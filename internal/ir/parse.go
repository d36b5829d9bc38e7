package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports a literal that is present but cannot be read as the
// declared kind. It is never returned for an absent value.
type ParseError struct {
	Kind    Kind
	Literal string // raw JSON text of the literal
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("value %s is not a valid %s: %s", e.Literal, e.Kind, e.Reason)
}

// Parse decodes a raw JSON literal according to the declared kind rather
// than JSON's native type.
//
// Strings are kept byte for byte; patterns and equality see exactly what
// the caller sent. Absent input (nil, empty or JSON null) yields Null. A JSON array yields a
// List whose items are each parsed as kind; null items are rejected.
func Parse(raw json.RawMessage, kind Kind) (Value, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("cannot parse value as %s", kind)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Null{}, nil
	}

	if trimmed[0] == '[' {
		return parseList(trimmed, kind)
	}
	return parseScalar(trimmed, kind)
}

func parseList(raw []byte, kind Kind) (Value, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Kind: kind, Literal: string(raw), Reason: err.Error()}
	}
	list := List{Elem: kind, Items: make([]Value, 0, len(items))}
	for i, item := range items {
		trimmed := bytes.TrimSpace(item)
		if bytes.Equal(trimmed, []byte("null")) {
			return nil, &ParseError{Kind: kind, Literal: string(raw), Reason: fmt.Sprintf("element %d is null", i)}
		}
		if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
			return nil, &ParseError{Kind: kind, Literal: string(raw), Reason: fmt.Sprintf("element %d is not a scalar", i)}
		}
		v, err := parseScalar(trimmed, kind)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, v)
	}
	return list, nil
}

func parseScalar(raw []byte, kind Kind) (Value, error) {
	fail := func(reason string) error {
		return &ParseError{Kind: kind, Literal: string(raw), Reason: reason}
	}

	switch raw[0] {
	case '{':
		return nil, fail("objects are not literals")
	case '[':
		return nil, fail("nested arrays are not literals")
	}

	// text is the literal's textual content: the unquoted string, or the
	// JSON token itself for numbers and booleans.
	text := string(raw)
	quoted := raw[0] == '"'
	if quoted {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fail(err.Error())
		}
	}

	switch kind {
	case KindString:
		return String(text), nil

	case KindNumeric:
		if !quoted && (text == "true" || text == "false") {
			return nil, fail("booleans are not numbers")
		}
		n, err := NewNumeric(text)
		if err != nil {
			return nil, fail("not a number")
		}
		return n, nil

	case KindBoolean:
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			if quoted {
				return Null{}, nil
			}
		}
		return nil, fail("boolean value can only be true, false or null")

	case KindDate:
		if !quoted {
			return nil, fail("dates must be YYYY-MM-DD strings")
		}
		d, err := ParseDate(text)
		if err != nil {
			return nil, fail("not a YYYY-MM-DD date")
		}
		return d, nil
	}

	return nil, fail("unsupported kind")
}
