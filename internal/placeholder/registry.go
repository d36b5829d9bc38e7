// Package placeholder resolves bracketed tokens such as [me] or [today]
// inside a raw JSON query before it is decoded.
//
// Each token text maps to a Factory. A fresh Resolver is built for every
// occurrence and asked for the literal that replaces the token.
package placeholder

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/roach88/qengine/internal/reqctx"
)

// tokenPattern is the token grammar. Tokens may appear alone or inside a
// longer string value.
var tokenPattern = regexp.MustCompile(`\[[A-Za-z0-9_]+\]`)

// Resolver computes the replacement literal for one token occurrence.
type Resolver interface {
	Resolve(qc *reqctx.Context) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(qc *reqctx.Context) (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(qc *reqctx.Context) (string, error) {
	return f(qc)
}

// Factory builds a Resolver.
type Factory func() Resolver

// Registry maps exact token text (including brackets) to a Factory.
// Like the operator registry it is filled at start-up and read-only after.
type Registry struct {
	factories map[string]Factory
	help      map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		help:      make(map[string]string),
	}
}

// Register binds token to f. The token must match the token grammar in full.
func (r *Registry) Register(token, description string, f Factory) error {
	if loc := tokenPattern.FindStringIndex(token); loc == nil || loc[0] != 0 || loc[1] != len(token) {
		return fmt.Errorf("invalid placeholder token %q: must look like [name]", token)
	}
	if f == nil {
		return fmt.Errorf("placeholder %s: factory is required", token)
	}
	r.factories[token] = f
	r.help[token] = description
	return nil
}

// MustRegister is Register for static registration lists.
func (r *Registry) MustRegister(token, description string, f Factory) {
	if err := r.Register(token, description, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for token.
func (r *Registry) Lookup(token string) (Factory, bool) {
	f, ok := r.factories[token]
	return f, ok
}

// Tokens lists every registered token, sorted.
func (r *Registry) Tokens() []string {
	out := make([]string, 0, len(r.factories))
	for token := range r.factories {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// Description returns the help text registered with token.
func (r *Registry) Description(token string) string {
	return r.help[token]
}
