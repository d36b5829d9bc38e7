// Package query defines the composite query AST and decodes it from JSON.
//
// GRAMMAR:
//
// Every node is a JSON object with a "type" discriminator:
//
//	{"type": "AndQuery", "children": [<node>, ...]}
//	{"type": "OrQuery",  "children": [<node>, ...]}
//	{"type": "StringQuery" | "NumericQuery" | "BoolQuery" | "DateQuery",
//	 "column": "salary", "operator": "greaterThan",
//	 "value": 70000, "valueType": "NUMERIC"}
//
// "operatorName" is accepted as an alias of "operator". "value" and
// "valueType" are optional.
//
// SEALED INTERFACE:
//
// Node is sealed with a marker method; the only implementations are *And,
// *Or and *Leaf, so consumers can switch exhaustively:
//
//	switch n := node.(type) {
//	case *And:
//	case *Or:
//	case *Leaf:
//	}
//
// VALIDATION:
//
// Decode rejects structural problems before any operator is looked up:
//   - composite nodes with no children ("AndQuery requires at least one child")
//   - leaves with an empty column or operator
//   - trees deeper or larger than Limits allow
//
// A declared valueType makes Decode parse the value immediately, so a
// malformed literal fails as QueryDeserialization while an absent one is
// carried as ir.Null. Without valueType the raw literal is kept for the
// compiler, which parses it once the operator's value type is resolved.
package query
