// Package operator implements the named, type-dispatched operators that turn
// a typed field and a literal value into a predicate.
//
// # Registry
//
// Operators are registered once at start-up by an explicit call to
// RegisterBuiltins (or Register for custom operators). The registry key is
// (operator name, field kind); each entry also records the value kinds it
// accepts. Registering the same (name, field kind) twice replaces the
// implementation and unions the value kinds. After start-up the registry is
// only read, so it may be shared by any number of concurrent compilations
// without locks.
//
// # Resolution
//
// Resolver.Resolve performs an exact (name, field kind, value kind) lookup.
// Resolver.ResolveValueType picks the value kind to decode an undeclared
// literal into: the field's own kind when the operator accepts it, otherwise
// the supported kind whose canonical name sorts first. The fallback is a
// deterministic tie-break, not a coercion rule.
//
// # Operator contract
//
// Apply receives the literal already parsed into the resolved value kind,
// or ir.Null when the value was absent. Operators that require a value
// report InvalidQuery with an operator-specific message; nullary operators
// never look at it.
package operator
