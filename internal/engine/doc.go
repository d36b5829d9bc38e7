// Package engine runs the full query pipeline for one request.
//
// PIPELINE:
//
// 1. Placeholder substitution on the raw JSON text ([me], [today], ...)
// 2. Decoding into a query tree, enforcing depth and node limits
// 3. Compilation of the tree into a predicate
// 4. Rendering of the predicate as parameterized SQL for the dialect
//
// Each stage either succeeds completely or returns a qerr.Error; no stage
// sees partial output from the one before it. The engine holds only
// immutable configuration and is safe for concurrent use. It never executes
// SQL and caches nothing across requests.
//
// Every request logs one line: Info on success with the request ID, node
// count, depth and dialect, Warn on failure with the error kind.
package engine
