// Package qerr defines the error taxonomy shared by every stage of query
// compilation: placeholder substitution, decoding and predicate building.
//
// All errors are request-scoped and non-retriable. Callers branch on Kind
// with Is / KindOf instead of inspecting messages.
package qerr

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind categorizes query errors.
type Kind string

const (
	// MalformedInput: the input is not valid JSON, or the node type
	// discriminator is missing or unrecognized.
	MalformedInput Kind = "MALFORMED_INPUT"

	// InvalidQuery: structural or semantic violations (empty children, empty
	// column, a required value that is missing, unknown columns).
	InvalidQuery Kind = "INVALID_QUERY"

	// OperatorNotFound: no operator is registered for the requested
	// (name, field type) or the value type is not supported by it.
	OperatorNotFound Kind = "OPERATOR_NOT_FOUND"

	// PlaceholderResolution: a token has no registered resolver, or the
	// resolver failed.
	PlaceholderResolution Kind = "PLACEHOLDER_RESOLUTION"

	// QueryDeserialization: a present value cannot be parsed into its
	// declared kind.
	QueryDeserialization Kind = "QUERY_DESERIALIZATION"
)

// Error is a query error with enough context to locate the faulty fragment.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description.
	Message string

	// Column is the leaf column involved, if any.
	Column string

	// Operator is the leaf operator name involved, if any.
	Operator string

	// Token is the placeholder token involved (e.g. "[me]"), if any.
	Token string

	// Path locates the node in the query tree, e.g. "children[1].children[0]".
	Path string

	// Fragment is the surrounding JSON, truncated, when available.
	Fragment string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)

	var ctx []string
	if e.Path != "" {
		ctx = append(ctx, "path="+e.Path)
	}
	if e.Column != "" {
		ctx = append(ctx, "column="+e.Column)
	}
	if e.Operator != "" {
		ctx = append(ctx, "operator="+e.Operator)
	}
	if e.Token != "" {
		ctx = append(ctx, "token="+e.Token)
	}
	if len(ctx) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(ctx, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Malformed creates a MalformedInput error.
func Malformed(format string, args ...any) *Error {
	return New(MalformedInput, format, args...)
}

// Invalid creates an InvalidQuery error.
func Invalid(format string, args ...any) *Error {
	return New(InvalidQuery, format, args...)
}

// NotFound creates an OperatorNotFound error naming the operator.
func NotFound(operator string, format string, args ...any) *Error {
	e := New(OperatorNotFound, format, args...)
	e.Operator = operator
	return e
}

// WithColumn sets Column and returns e.
func (e *Error) WithColumn(column string) *Error {
	e.Column = column
	return e
}

// WithOperator sets Operator and returns e.
func (e *Error) WithOperator(operator string) *Error {
	e.Operator = operator
	return e
}

// WithPath sets Path and returns e.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// err is not a query error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return ""
}

// Is reports whether err is a query error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsInvalidQuery reports whether err is an InvalidQuery error.
func IsInvalidQuery(err error) bool { return Is(err, InvalidQuery) }

// IsOperatorNotFound reports whether err is an OperatorNotFound error.
func IsOperatorNotFound(err error) bool { return Is(err, OperatorNotFound) }

// Annotate fills in the leaf context (column, operator, path) of a query
// error without overwriting context already present. Errors that are not
// query errors are wrapped as InvalidQuery so no failure loses its location.
func Annotate(err error, column, operator, path string) error {
	if err == nil {
		return nil
	}
	var qe *Error
	if !errors.As(err, &qe) {
		qe = Wrap(InvalidQuery, err, "cannot build predicate")
		err = qe
	}
	if qe.Column == "" {
		qe.Column = column
	}
	if qe.Operator == "" {
		qe.Operator = operator
	}
	if qe.Path == "" {
		qe.Path = path
	}
	return err
}

// Fragment truncates a JSON fragment for inclusion in an Error.
func Fragment(s string) string {
	const max = 200
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
