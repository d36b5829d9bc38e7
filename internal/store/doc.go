// Package store provides SQLite-backed history of query compilations.
//
// Every compilation recorded by the CLI becomes one row: the request id,
// the query fingerprint, the dialect, the rendered SQL and its arguments,
// or the error kind when compilation failed. The log is append-only.
//
// # Ordering
//
// Rows are ordered by seq, an autoincrement counter assigned on insert.
// Wall-clock timestamps are stored for display but never used for ordering.
//
// # Idempotency
//
// request_id is UNIQUE and inserts use ON CONFLICT DO NOTHING, so recording
// the same request twice keeps the first row.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
