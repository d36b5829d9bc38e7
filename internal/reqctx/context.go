// Package reqctx holds the request-scoped values consulted while compiling a
// single query: who is asking, for which tenant, and what "now" is.
//
// A Context is built once per request and never mutated afterwards.
// Placeholder resolvers and date-relative operators read from it.
package reqctx

import (
	"time"

	"github.com/google/uuid"

	"github.com/roach88/qengine/internal/ir"
)

// Context is the ambient data for one compilation request.
type Context struct {
	// RequestID correlates log lines for one request.
	RequestID string

	// UserID identifies the caller. Empty when unknown.
	UserID string

	// Tenant identifies the caller's tenant. Empty when unknown.
	Tenant string

	// Table is the default table the predicate targets, if any.
	Table string

	// Now is the instant date-relative operators and placeholders use.
	Now time.Time
}

// Option configures a Context under construction.
type Option func(*Context)

// WithUser sets the caller identity.
func WithUser(id string) Option {
	return func(c *Context) { c.UserID = id }
}

// WithTenant sets the caller's tenant.
func WithTenant(tenant string) Option {
	return func(c *Context) { c.Tenant = tenant }
}

// WithTable sets the default table.
func WithTable(table string) Option {
	return func(c *Context) { c.Table = table }
}

// WithRequestID overrides the generated request ID.
func WithRequestID(id string) Option {
	return func(c *Context) { c.RequestID = id }
}

// WithToday pins "now" to midnight UTC of the given date, regardless of the
// clock. Used to replay a query as if it ran on another day.
func WithToday(d ir.Date) Option {
	return func(c *Context) { c.Now = d.Time() }
}

// New builds a Context whose Now is read from clock once.
// A nil clock means the system clock.
func New(clock Clock, opts ...Option) *Context {
	if clock == nil {
		clock = SystemClock{}
	}
	c := &Context{
		RequestID: uuid.NewString(),
		Now:       clock.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today returns the calendar date of Now in Now's location.
func (c *Context) Today() ir.Date {
	return ir.DateOf(c.Now)
}
