package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/qengine/internal/compiler"
	"github.com/roach88/qengine/internal/operator"
	"github.com/roach88/qengine/internal/placeholder"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
	"github.com/roach88/qengine/internal/query"
	"github.com/roach88/qengine/internal/querysql"
	"github.com/roach88/qengine/internal/reqctx"
	"github.com/roach88/qengine/internal/schema"
)

// Engine compiles raw JSON queries into SQL.
type Engine struct {
	operators    *operator.Registry
	placeholders *placeholder.Registry
	pass         *placeholder.Pass
	compiler     *compiler.Compiler
	dialect      predicate.Dialect
	schema       schema.Resolver
	limits       query.Limits
	clock        reqctx.Clock
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithOperators replaces the built-in operator catalog.
func WithOperators(r *operator.Registry) Option {
	return func(e *Engine) { e.operators = r }
}

// WithPlaceholders replaces the built-in placeholder tokens.
func WithPlaceholders(r *placeholder.Registry) Option {
	return func(e *Engine) { e.placeholders = r }
}

// WithDialect selects the SQL dialect. Default: SQLite.
func WithDialect(d predicate.Dialect) Option {
	return func(e *Engine) { e.dialect = d }
}

// WithSchema resolves columns through s instead of trusting leaf kinds.
func WithSchema(s schema.Resolver) Option {
	return func(e *Engine) { e.schema = s }
}

// WithLimits bounds the size of decoded queries.
// Zero fields fall back to query.DefaultLimits.
func WithLimits(l query.Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithClock sets the clock NewContext reads "now" from.
func WithClock(c reqctx.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger for per-request lines. Default: slog.Default()
// at the time of each request.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine. Without options it uses the built-in operators and
// placeholders, the SQLite dialect, no schema and the default limits.
func New(opts ...Option) *Engine {
	e := &Engine{
		dialect: predicate.SQLite{},
		limits:  query.DefaultLimits(),
		clock:   reqctx.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.operators == nil {
		e.operators = operator.NewBuiltinRegistry()
	}
	if e.placeholders == nil {
		e.placeholders = placeholder.NewBuiltinRegistry()
	}
	if e.dialect == nil {
		e.dialect = predicate.SQLite{}
	}

	e.pass = placeholder.NewPass(e.placeholders)
	copts := []compiler.Option{compiler.WithDialect(e.dialect)}
	if e.schema != nil {
		copts = append(copts, compiler.WithSchema(e.schema))
	}
	e.compiler = compiler.New(operator.NewResolver(e.operators), copts...)
	return e
}

// NewContext builds a request context reading "now" from the engine clock.
func (e *Engine) NewContext(opts ...reqctx.Option) *reqctx.Context {
	return reqctx.New(e.clock, opts...)
}

// Dialect returns the configured dialect.
func (e *Engine) Dialect() predicate.Dialect { return e.dialect }

// Operators returns the operator registry in use.
func (e *Engine) Operators() *operator.Registry { return e.operators }

// Placeholders returns the placeholder registry in use.
func (e *Engine) Placeholders() *placeholder.Registry { return e.placeholders }

// Result is the output of one compilation.
type Result struct {
	// Substituted is the query JSON after placeholder substitution.
	Substituted []byte

	// Node is the decoded query tree.
	Node query.Node

	// Fingerprint identifies the decoded query; see query.Fingerprint.
	Fingerprint string

	// Predicate is the compiled predicate.
	Predicate predicate.Predicate

	// SQL is the WHERE-clause fragment, with dialect placeholders.
	SQL string

	// Args are the values bound to SQL's placeholders, in order.
	Args []any

	// Select is "SELECT * FROM <table> WHERE ..." when the context names a
	// table, and empty otherwise.
	Select querysql.Statement

	// Nodes and Depth describe the size of the decoded tree.
	Nodes int
	Depth int
}

// Compile runs the pipeline on raw for the request described by qc.
// A nil qc is replaced by a fresh context from the engine clock.
func (e *Engine) Compile(ctx context.Context, raw []byte, qc *reqctx.Context) (*Result, error) {
	if qc == nil {
		qc = e.NewContext()
	}
	res, err := e.compile(ctx, raw, qc)
	if err != nil {
		e.log().Warn("query compilation failed",
			"request_id", qc.RequestID,
			"kind", string(qerr.KindOf(err)),
			"error", err,
		)
		return nil, err
	}
	e.log().Info("query compiled",
		"request_id", qc.RequestID,
		"fingerprint", res.Fingerprint,
		"nodes", res.Nodes,
		"depth", res.Depth,
		"dialect", e.dialect.Name(),
	)
	return res, nil
}

func (e *Engine) compile(ctx context.Context, raw []byte, qc *reqctx.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	substituted, err := e.pass.Substitute(raw, qc)
	if err != nil {
		return nil, err
	}

	node, err := query.Decode(substituted, e.limits)
	if err != nil {
		return nil, err
	}
	fingerprint, err := query.Fingerprint(node)
	if err != nil {
		return nil, qerr.Wrap(qerr.InvalidQuery, err, "cannot encode query")
	}
	nodes, depth := query.Stats(node)
	e.log().Debug("query decoded", "request_id", qc.RequestID, "nodes", nodes, "depth", depth)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pred, err := e.compiler.Compile(node, qc)
	if err != nil {
		return nil, err
	}

	where, err := querysql.Render(pred, e.dialect)
	if err != nil {
		return nil, qerr.Wrap(qerr.InvalidQuery, err, "cannot render predicate")
	}

	res := &Result{
		Substituted: substituted,
		Node:        node,
		Fingerprint: fingerprint,
		Predicate:   pred,
		SQL:         where.SQL,
		Args:        where.Args,
		Nodes:       nodes,
		Depth:       depth,
	}
	if qc.Table != "" {
		res.Select, err = querysql.RenderSelect(querysql.Select{Table: qc.Table}, pred, e.dialect)
		if err != nil {
			return nil, qerr.Wrap(qerr.InvalidQuery, err, "cannot render select for table %s", qc.Table)
		}
	}
	return res, nil
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// Substitute runs only the placeholder pass.
func (e *Engine) Substitute(raw []byte, qc *reqctx.Context) ([]byte, error) {
	if qc == nil {
		qc = e.NewContext()
	}
	return e.pass.Substitute(raw, qc)
}

// Validate decodes raw after substitution without compiling it, for
// callers that only need structural checks.
func (e *Engine) Validate(raw []byte, qc *reqctx.Context) (query.Node, error) {
	substituted, err := e.Substitute(raw, qc)
	if err != nil {
		return nil, err
	}
	node, err := query.Decode(substituted, e.limits)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return node, nil
}
