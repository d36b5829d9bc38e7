// Package harness runs suites of query cases through the engine.
//
// # Suite Format
//
// Suites are YAML files with the following structure:
//
//	name: employees
//	description: "What this suite validates"
//	dialect: sqlite
//	today: "2024-01-10"
//	user: Doe
//	tenant: acme
//	schema:
//	  table: employees
//	  columns:
//	    salary: NUMERIC
//	    last_name: STRING
//	setup: |
//	  CREATE TABLE employees (...);
//	  INSERT INTO employees VALUES (...);
//	cases:
//	  - name: high_earners
//	    query: |
//	      {"type": "NumericQuery", "column": "salary", "operator": "greaterThan", "value": 70000}
//	    expect:
//	      sql: "salary > ?"
//	      args: [70000]
//	      rows: [1, 5]
//	  - name: unknown_column
//	    query: |
//	      {"type": "StringQuery", "column": "nickname", "operator": "equals", "value": "x"}
//	    expect:
//	      error: INVALID_QUERY
//
// # Expectations
//
//   - sql: the rendered WHERE fragment, compared exactly
//   - args: bound arguments, compared by their JSON encoding
//   - error: the error kind; the case must fail with it
//   - rows: ids selected when the fragment runs against the setup database
//     (SQLite suites with a setup script only)
//
// # Deterministic Testing
//
// Every case compiles with the same request context: a fixed request ID,
// the suite's today, user and tenant. Each suite runs against a fresh
// in-memory SQLite database, so golden snapshots are reproducible.
package harness
