package placeholder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/roach88/qengine/internal/qerr"
	"github.com/roach88/qengine/internal/reqctx"
)

// Pass substitutes placeholders using a Registry.
type Pass struct {
	registry *Registry
}

// NewPass creates a substitution pass over registry.
func NewPass(registry *Registry) *Pass {
	return &Pass{registry: registry}
}

// Substitute replaces every token inside string values of raw and returns
// the re-encoded document. Object keys are left alone. Either every token
// resolves or an error is returned and no output is produced.
func (p *Pass) Substitute(raw []byte, qc *reqctx.Context) ([]byte, error) {
	doc, err := parse(raw)
	if err != nil {
		return nil, err
	}
	if qc == nil {
		return nil, qerr.New(qerr.PlaceholderResolution, "no request context to resolve placeholders")
	}

	out, err := p.walk(doc, doc, qc)
	if err != nil {
		return nil, err
	}
	return encode(out)
}

func (p *Pass) walk(v, enclosing any, qc *reqctx.Context) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(v))
		for _, k := range keys {
			child, err := p.walk(v[k], v, qc)
			if err != nil {
				return nil, err
			}
			out[k] = child
		}
		return out, nil

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			child, err := p.walk(item, enclosing, qc)
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil

	case string:
		return p.replace(v, enclosing, qc)
	}
	return v, nil
}

func (p *Pass) replace(s string, enclosing any, qc *reqctx.Context) (string, error) {
	matches := tokenPattern.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		token := s[m[0]:m[1]]
		factory, ok := p.registry.Lookup(token)
		if !ok {
			return "", p.fail(token, enclosing, nil, "no resolver registered for placeholder %s", token)
		}
		literal, err := factory().Resolve(qc)
		if err != nil {
			return "", p.fail(token, enclosing, err, "cannot resolve placeholder %s", token)
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(literal)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func (p *Pass) fail(token string, enclosing any, cause error, format string, args ...any) error {
	e := qerr.Wrap(qerr.PlaceholderResolution, cause, format, args...)
	e.Token = token
	if frag, err := encode(enclosing); err == nil {
		e.Fragment = qerr.Fragment(string(frag))
	}
	return e
}

// Tokens lists the distinct tokens found in string values of raw, in order
// of first appearance.
func Tokens(raw []byte) ([]string, error) {
	doc, err := parse(raw)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool)
	var visit func(v any)
	visit = func(v any) {
		switch v := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				visit(v[k])
			}
		case []any:
			for _, item := range v {
				visit(item)
			}
		case string:
			for _, token := range tokenPattern.FindAllString(v, -1) {
				if !seen[token] {
					seen[token] = true
					out = append(out, token)
				}
			}
		}
	}
	visit(doc)
	return out, nil
}

func parse(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, qerr.Wrap(qerr.MalformedInput, err, "query is not valid JSON")
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, qerr.Malformed("query contains trailing data after the JSON document")
	}
	return doc, nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode substituted query: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
