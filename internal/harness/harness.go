package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/qengine/internal/engine"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
	"github.com/roach88/qengine/internal/reqctx"
	"github.com/roach88/qengine/internal/schema"
	"github.com/roach88/qengine/internal/testutil"
)

// Harness is the suite execution engine.
// It compiles every case with one deterministic request context.
type Harness struct {
	engine *engine.Engine
	suite  *Suite
	db     *sqlx.DB
	logger *slog.Logger
}

// CaseResult is the outcome of a single case.
type CaseResult struct {
	Name string `json:"name"`

	// SQL and Args are the compiled output. Empty when compilation failed.
	SQL  string `json:"sql,omitempty"`
	Args []any  `json:"args,omitempty"`

	// Error is the error kind, when compilation failed.
	Error string `json:"error,omitempty"`

	// Message is the full error message, when compilation failed.
	Message string `json:"message,omitempty"`

	// Rows lists the key column of the selected rows. Nil when the suite
	// has no database.
	Rows []int `json:"rows,omitempty"`

	// Failures lists the unmet expectations.
	Failures []string `json:"failures,omitempty"`
}

// Pass reports whether every expectation of the case held.
func (c *CaseResult) Pass() bool { return len(c.Failures) == 0 }

// Result is the outcome of a suite execution.
type Result struct {
	Suite string       `json:"suite"`
	Pass  bool         `json:"pass"`
	Cases []CaseResult `json:"cases"`
}

// Failed returns the cases with unmet expectations.
func (r *Result) Failed() []CaseResult {
	var out []CaseResult
	for _, c := range r.Cases {
		if !c.Pass() {
			out = append(out, c)
		}
	}
	return out
}

// Run executes a suite and returns the result.
//
// Each suite runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database and run the setup script
// 2. Build an engine for the suite's dialect and schema
// 3. Compile every case and execute it against the database
// 4. Check each case's expectations
func Run(suite *Suite) (*Result, error) {
	h, err := newHarness(suite)
	if err != nil {
		return nil, err
	}
	defer h.close()

	result := &Result{Suite: suite.Name, Pass: true, Cases: make([]CaseResult, 0, len(suite.Cases))}
	for _, c := range suite.Cases {
		cr := h.runCase(c)
		if !cr.Pass() {
			result.Pass = false
			h.logger.Info("case failed", "suite", suite.Name, "case", c.Name, "failures", len(cr.Failures))
		}
		result.Cases = append(result.Cases, cr)
	}
	return result, nil
}

func newHarness(suite *Suite) (*Harness, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithDialect(suite.dialect()),
		engine.WithClock(testutil.NewClock(suite.today().Time())),
	}
	if suite.Schema != nil {
		s, err := schema.NewStatic(suite.Schema.Table, suite.Schema.Columns)
		if err != nil {
			return nil, fmt.Errorf("invalid suite schema: %w", err)
		}
		opts = append(opts, engine.WithSchema(s))
	}

	h := &Harness{
		engine: engine.New(opts...),
		suite:  suite,
		logger: logger,
	}

	if suite.Setup != "" {
		db, err := sqlx.Open("sqlite3", ":memory:")
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory database: %w", err)
		}
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(suite.Setup); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run setup: %w", err)
		}
		h.db = db
	}
	return h, nil
}

func (h *Harness) close() {
	if h.db != nil {
		h.db.Close()
	}
}

func (h *Harness) context() *reqctx.Context {
	return testutil.Context(
		reqctx.WithToday(h.suite.today()),
		reqctx.WithUser(h.suite.User),
		reqctx.WithTenant(h.suite.Tenant),
	)
}

func (h *Harness) runCase(c Case) CaseResult {
	cr := CaseResult{Name: c.Name}

	res, err := h.engine.Compile(context.Background(), []byte(c.Query), h.context())
	if err != nil {
		cr.Error = string(qerr.KindOf(err))
		cr.Message = err.Error()
		if cr.Error == "" {
			cr.Error = "UNKNOWN"
		}
	} else {
		cr.SQL = res.SQL
		cr.Args = res.Args
		if cr.Args == nil {
			cr.Args = []any{}
		}
		if h.db != nil && h.suite.table() != "" {
			cr.Rows, err = h.selectKeys(res.SQL, res.Args)
			if err != nil {
				cr.Failures = append(cr.Failures, fmt.Sprintf("executing predicate: %v", err))
			}
		}
	}

	cr.Failures = append(cr.Failures, checkExpect(c.Expect, &cr)...)
	return cr
}

// selectKeys runs the fragment against the suite database. Only SQLite
// suites carry a database, so the fragment's placeholders are "?".
func (h *Harness) selectKeys(where string, args []any) ([]int, error) {
	if _, ok := h.suite.dialect().(predicate.SQLite); !ok {
		return nil, fmt.Errorf("rows can only be checked for sqlite suites")
	}
	query := fmt.Sprintf("SELECT %[1]s FROM %[2]s WHERE %[3]s ORDER BY %[1]s", h.suite.key(), h.suite.table(), where)
	keys := []int{}
	if err := h.db.Select(&keys, query, args...); err != nil {
		return nil, err
	}
	return keys, nil
}

// checkExpect compares a case's output with its expectations and returns
// one message per mismatch.
func checkExpect(e Expect, cr *CaseResult) []string {
	var failures []string

	if e.Error != "" {
		if cr.Error != e.Error {
			failures = append(failures, fmt.Sprintf("expected error %s, got %s", e.Error, describe(cr)))
		}
		return failures
	}
	if cr.Error != "" {
		return append(failures, fmt.Sprintf("unexpected error: %s", cr.Message))
	}

	if e.SQL != "" && e.SQL != cr.SQL {
		failures = append(failures, fmt.Sprintf("sql: expected %q, got %q", e.SQL, cr.SQL))
	}
	if e.Args != nil {
		want, got := encodeArgs(e.Args), encodeArgs(cr.Args)
		if want != got {
			failures = append(failures, fmt.Sprintf("args: expected %s, got %s", want, got))
		}
	}
	if e.Rows != nil {
		want, got := encodeArgs(e.Rows), encodeArgs(cr.Rows)
		if want != got {
			failures = append(failures, fmt.Sprintf("rows: expected %s, got %s", want, got))
		}
	}
	return failures
}

func describe(cr *CaseResult) string {
	if cr.Error != "" {
		return cr.Error
	}
	return fmt.Sprintf("success (%s)", cr.SQL)
}

// encodeArgs renders values as JSON so that YAML ints and int64 bind
// values compare equal.
func encodeArgs(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
