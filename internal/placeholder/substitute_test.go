package placeholder

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qengine/internal/qerr"
	"github.com/roach88/qengine/internal/reqctx"
)

func fixedContext(opts ...reqctx.Option) *reqctx.Context {
	now := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	return reqctx.New(reqctx.NewFixedClock(now), opts...)
}

func TestSubstituteMe(t *testing.T) {
	pass := NewPass(NewBuiltinRegistry())

	out, err := pass.Substitute([]byte(`{"value": "[me]"}`), fixedContext(reqctx.WithUser("user-42")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": "user-42"}`, string(out))
	assert.Equal(t, `{"value":"user-42"}`, string(out))
}

func TestSubstituteUnregisteredToken(t *testing.T) {
	pass := NewPass(NewBuiltinRegistry())

	out, err := pass.Substitute([]byte(`{"column": "owner", "value": "[ghost]"}`), fixedContext())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, qerr.Is(err, qerr.PlaceholderResolution))
	assert.Contains(t, err.Error(), "[ghost]")

	var qe *qerr.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "[ghost]", qe.Token)
	assert.Contains(t, qe.Fragment, `"column":"owner"`)
}

func TestSubstituteNestedChildren(t *testing.T) {
	pass := NewPass(NewBuiltinRegistry())
	raw := `{
		"type": "AndQuery",
		"children": [
			{"type": "StringQuery", "column": "owner", "operator": "equals", "value": "[me]"},
			{"type": "OrQuery", "children": [
				{"type": "DateQuery", "column": "due", "operator": "equals", "value": "[tomorrow]"},
				{"type": "NumericQuery", "column": "amount", "operator": "greaterThan", "value": 10.50}
			]}
		]
	}`

	out, err := pass.Substitute([]byte(raw), fixedContext(reqctx.WithUser("u1")))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "AndQuery",
		"children": [
			{"type": "StringQuery", "column": "owner", "operator": "equals", "value": "u1"},
			{"type": "OrQuery", "children": [
				{"type": "DateQuery", "column": "due", "operator": "equals", "value": "2024-01-11"},
				{"type": "NumericQuery", "column": "amount", "operator": "greaterThan", "value": 10.50}
			]}
		]
	}`, string(out))
	assert.Contains(t, string(out), `10.50`, "numbers keep their literal text")
}

func TestSubstituteEmbeddedTokens(t *testing.T) {
	pass := NewPass(NewBuiltinRegistry())
	qc := fixedContext(reqctx.WithUser("u1"), reqctx.WithTenant("acme"))

	out, err := pass.Substitute([]byte(`{"value": "[tenant]/[me]/<x>&"}`), qc)
	require.NoError(t, err)
	assert.Equal(t, `{"value":"acme/u1/<x>&"}`, string(out))
}

func TestSubstituteLeavesKeysAlone(t *testing.T) {
	pass := NewPass(NewBuiltinRegistry())
	out, err := pass.Substitute([]byte(`{"[me]": "plain"}`), fixedContext())
	require.NoError(t, err)
	assert.Equal(t, `{"[me]":"plain"}`, string(out))
}

func TestSubstituteReplacementIsOpaque(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("[quote]", "", func() Resolver {
		return ResolverFunc(func(*reqctx.Context) (string, error) { return `a"b[me]`, nil })
	})

	out, err := NewPass(r).Substitute([]byte(`["[quote]"]`), fixedContext())
	require.NoError(t, err)
	assert.Equal(t, `["a\"b[me]"]`, string(out))
}

func TestSubstituteResolverFailureIsWrapped(t *testing.T) {
	cause := errors.New("directory offline")
	r := NewRegistry()
	r.MustRegister("[boom]", "", func() Resolver {
		return ResolverFunc(func(*reqctx.Context) (string, error) { return "", cause })
	})

	_, err := NewPass(r).Substitute([]byte(`{"value": "[boom]"}`), fixedContext())
	require.Error(t, err)
	assert.True(t, qerr.Is(err, qerr.PlaceholderResolution))
	assert.ErrorIs(t, err, cause)
}

func TestSubstituteIsAllOrNothing(t *testing.T) {
	pass := NewPass(NewBuiltinRegistry())
	out, err := pass.Substitute([]byte(`["[today]", "[ghost]"]`), fixedContext())
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestSubstituteMeWithoutUser(t *testing.T) {
	_, err := NewPass(NewBuiltinRegistry()).Substitute([]byte(`"[me]"`), fixedContext())
	require.Error(t, err)
	assert.True(t, qerr.Is(err, qerr.PlaceholderResolution))
	assert.Contains(t, err.Error(), "caller identity is unknown")
}

func TestSubstituteMalformedJSON(t *testing.T) {
	pass := NewPass(NewBuiltinRegistry())
	for _, raw := range []string{`{"value": `, ``, `{} {}`} {
		_, err := pass.Substitute([]byte(raw), fixedContext())
		require.Error(t, err, raw)
		assert.True(t, qerr.Is(err, qerr.MalformedInput), raw)
	}
}

func TestBuiltinDateTokens(t *testing.T) {
	pass := NewPass(NewBuiltinRegistry())
	qc := fixedContext()

	tests := map[string]string{
		"[today]":         "2024-01-10",
		"[yesterday]":     "2024-01-09",
		"[tomorrow]":      "2024-01-11",
		"[now]":           "2024-01-10T09:30:00Z",
		"[current_year]":  "2024",
		"[current_month]": "1",
		"[current_day]":   "10",
	}
	for token, want := range tests {
		t.Run(token, func(t *testing.T) {
			out, err := pass.Substitute([]byte(`"`+token+`"`), qc)
			require.NoError(t, err)
			assert.Equal(t, `"`+want+`"`, string(out))
		})
	}
}

func TestTokens(t *testing.T) {
	got, err := Tokens([]byte(`{"a": "[me] and [today]", "b": ["[me]", "[ghost]"], "[key]": 1}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"[me]", "[today]", "[ghost]"}, got)
}

func TestRegisterValidatesToken(t *testing.T) {
	r := NewRegistry()
	noop := func() Resolver { return ResolverFunc(func(*reqctx.Context) (string, error) { return "", nil }) }

	assert.Error(t, r.Register("me", "", noop))
	assert.Error(t, r.Register("[me]x", "", noop))
	assert.Error(t, r.Register("[m-e]", "", noop))
	assert.Error(t, r.Register("[me]", "", nil))
	require.NoError(t, r.Register("[me]", "who", noop))
	assert.Equal(t, []string{"[me]"}, r.Tokens())
	assert.Equal(t, "who", r.Description("[me]"))
}
