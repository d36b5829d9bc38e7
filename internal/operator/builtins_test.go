package operator

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
	"github.com/roach88/qengine/internal/reqctx"
)

var (
	strField  = predicate.Field{Column: "last_name", Kind: ir.KindString}
	numField  = predicate.Field{Column: "salary", Kind: ir.KindNumeric}
	boolField = predicate.Field{Column: "is_active", Kind: ir.KindBoolean}
	dateField = predicate.Field{Column: "created_date", Kind: ir.KindDate}
)

func testEnv() Env {
	now := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	return Env{
		Builder: predicate.NewBuilder(predicate.SQLite{}),
		Context: reqctx.New(reqctx.NewFixedClock(now)),
	}
}

// apply resolves op for the field's kind and the given value kind, then
// applies it and renders the result.
func apply(t *testing.T, op string, field predicate.Field, value ir.Value) (string, []any, error) {
	t.Helper()
	res := NewResolver(NewBuiltinRegistry())
	kind, err := res.ResolveValueType(op, field.Kind)
	require.NoError(t, err)
	impl, err := res.Resolve(op, field.Kind, kind)
	if err != nil {
		return "", nil, err
	}
	p, err := impl.Apply(testEnv(), field, value)
	if err != nil {
		return "", nil, err
	}
	require.NotNil(t, p)
	sql, args, err := p.ToSql()
	require.NoError(t, err)
	return sql, args, nil
}

func TestEqualsNullBecomesIsNullForEveryKind(t *testing.T) {
	for _, f := range []predicate.Field{strField, numField, boolField, dateField} {
		t.Run(f.Kind.String(), func(t *testing.T) {
			sql, args, err := apply(t, "equals", f, ir.Null{})
			require.NoError(t, err)
			assert.Equal(t, f.Column+" IS NULL", sql)
			assert.Empty(t, args)

			sql, _, err = apply(t, "notEquals", f, ir.Null{})
			require.NoError(t, err)
			assert.Equal(t, f.Column+" IS NOT NULL", sql)
		})
	}
}

func TestEquals(t *testing.T) {
	sql, args, err := apply(t, "equals", boolField, ir.Bool(true))
	require.NoError(t, err)
	assert.Equal(t, "is_active = ?", sql)
	assert.Equal(t, []any{true}, args)

	_, _, err = apply(t, "equals", boolField, ir.String("true"))
	assert.True(t, qerr.IsInvalidQuery(err), "mismatched literal kind")
}

func TestOrderingRejectsNull(t *testing.T) {
	for _, op := range []string{"greaterThan", "greaterThanEqual", "lessThan", "lessThanEqual"} {
		t.Run(op, func(t *testing.T) {
			_, _, err := apply(t, op, numField, ir.Null{})
			require.Error(t, err)
			assert.True(t, qerr.IsInvalidQuery(err))
			assert.Contains(t, err.Error(), "Value cannot be null")
		})
	}
}

func TestOrderingOnDates(t *testing.T) {
	sql, args, err := apply(t, "lessThanEqual", dateField, ir.MustDate("2023-12-31"))
	require.NoError(t, err)
	assert.Equal(t, "created_date <= ?", sql)
	assert.Equal(t, []any{"2023-12-31"}, args)
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		op      string
		value   string
		pattern string
	}{
		{"like", "Doe", "Doe"},
		{"startsWith", "John", "John%"},
		{"endsWith", "Doe", "%Doe"},
		{"startsWith", "", "%"},
	}
	for _, tt := range tests {
		t.Run(tt.op+"/"+tt.value, func(t *testing.T) {
			sql, args, err := apply(t, tt.op, strField, ir.String(tt.value))
			require.NoError(t, err)
			assert.Equal(t, "last_name LIKE ?", sql)
			assert.Equal(t, []any{tt.pattern}, args)
		})
	}
}

func TestPatternsRejectNonStringFields(t *testing.T) {
	for _, op := range []string{"like", "startsWith", "endsWith"} {
		for _, f := range []predicate.Field{numField, boolField, dateField} {
			_, _, err := apply(t, op, f, ir.String("x"))
			require.Error(t, err)
			assert.True(t, qerr.IsOperatorNotFound(err), "%s on %s", op, f.Kind)
			assert.Contains(t, err.Error(), op)
		}
	}
}

func TestPatternNullNamesOperator(t *testing.T) {
	_, _, err := apply(t, "startsWith", strField, ir.Null{})
	require.Error(t, err)
	assert.True(t, qerr.IsInvalidQuery(err))
	assert.Contains(t, err.Error(), "startsWith")
}

func TestNullChecksIgnoreValue(t *testing.T) {
	sql, _, err := apply(t, "isNull", dateField, ir.String("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "created_date IS NULL", sql)

	sql, _, err = apply(t, "isNotNull", numField, nil)
	require.NoError(t, err)
	assert.Equal(t, "salary IS NOT NULL", sql)
}

func TestDatePartOperators(t *testing.T) {
	sql, args, err := apply(t, "dayOfWeek", dateField, ir.NewNumericInt(4))
	require.NoError(t, err)
	assert.Equal(t, "((CAST(strftime('%w', created_date) AS INTEGER) + 6) % 7 + 1) = ?", sql)
	assert.Equal(t, []any{int64(4)}, args)

	a, _, err := apply(t, "dayEqual", dateField, ir.NewNumericInt(15))
	require.NoError(t, err)
	b, _, err := apply(t, "dayOfMonth", dateField, ir.NewNumericInt(15))
	require.NoError(t, err)
	assert.Equal(t, a, b, "dayEqual is an alias of dayOfMonth")

	sql, args, err = apply(t, "yearEqual", dateField, ir.NewNumericInt(2023))
	require.NoError(t, err)
	assert.Equal(t, "CAST(strftime('%Y', created_date) AS INTEGER) = ?", sql)
	assert.Equal(t, []any{int64(2023)}, args)
}

func TestDatePartNullMessages(t *testing.T) {
	tests := map[string]string{
		"dayOfWeek":  "Day value cannot be null",
		"dayOfMonth": "Day value cannot be null",
		"monthEqual": "Month value cannot be null",
		"yearEqual":  "Year value cannot be null",
	}
	for op, msg := range tests {
		t.Run(op, func(t *testing.T) {
			_, _, err := apply(t, op, dateField, ir.Null{})
			require.Error(t, err)
			assert.True(t, qerr.IsInvalidQuery(err))
			var qe *qerr.Error
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, msg, qe.Message)
		})
	}
}

func TestDatePartRejectsFractions(t *testing.T) {
	_, _, err := apply(t, "monthEqual", dateField, ir.MustNumeric("2.5"))
	require.Error(t, err)
	assert.True(t, qerr.IsInvalidQuery(err))
	assert.Contains(t, err.Error(), "whole number")
}

func TestDateOffsets(t *testing.T) {
	// now is fixed at 2024-01-10.
	tests := []struct {
		op   string
		n    int64
		want string
	}{
		{"daysAfter", 5, "2024-01-15"},
		{"daysBefore", 5, "2024-01-05"},
		{"monthsAfter", 2, "2024-03-10"},
		{"monthsBefore", 2, "2023-11-10"},
		{"yearsAfter", 3, "2027-01-10"},
		{"yearsBefore", 3, "2021-01-10"},
		{"daysAfter", 0, "2024-01-10"},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			sql, args, err := apply(t, tt.op, dateField, ir.NewNumericInt(tt.n))
			require.NoError(t, err)
			assert.Equal(t, "date(created_date) = ?", sql)
			assert.Equal(t, []any{tt.want}, args)
		})
	}
}

func TestDateOffsetNullMessages(t *testing.T) {
	tests := map[string]string{
		"daysAfter":    "Day value cannot be null",
		"daysBefore":   "Day value cannot be null",
		"monthsAfter":  "Month value cannot be null",
		"monthsBefore": "Month value cannot be null",
		"yearsAfter":   "Year value cannot be null",
		"yearsBefore":  "Year value cannot be null",
	}
	for op, msg := range tests {
		t.Run(op, func(t *testing.T) {
			_, _, err := apply(t, op, dateField, ir.Null{})
			var qe *qerr.Error
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, qerr.InvalidQuery, qe.Kind)
			assert.Equal(t, msg, qe.Message)
		})
	}
}

func TestDateOffsetOutOfRange(t *testing.T) {
	_, _, err := apply(t, "yearsAfter", dateField, ir.NewNumericInt(9000))
	require.Error(t, err)
	assert.True(t, qerr.IsInvalidQuery(err))

	_, _, err = apply(t, "daysBefore", dateField, ir.NewNumericInt(1_000_000_000))
	require.Error(t, err)
	assert.True(t, qerr.IsInvalidQuery(err))
}

func TestDateValueOverflowIsOutOfRange(t *testing.T) {
	huge := []ir.Numeric{
		ir.MustNumeric("1e99999"),
		ir.MustNumeric("1" + strings.Repeat("0", 100_000)),
	}
	for _, op := range []string{"daysAfter", "yearEqual"} {
		for _, n := range huge {
			_, _, err := apply(t, op, dateField, n)
			require.Error(t, err)
			assert.True(t, qerr.IsInvalidQuery(err), op)
			assert.Contains(t, err.Error(), "out of range", op)
			assert.NotContains(t, err.Error(), "whole number", op)
			assert.Less(t, len(err.Error()), 500, "literal is truncated")
		}
	}
}

func TestDateOperatorsEvaluateLiteralDates(t *testing.T) {
	res := NewResolver(NewBuiltinRegistry())
	// now is fixed at 2024-01-10, a Wednesday.
	tests := []struct {
		op   string
		date string
		n    int64
		want bool
	}{
		{"dayOfWeek", "2024-01-10", 3, true},
		{"dayOfWeek", "2024-01-14", 7, true},
		{"dayOfWeek", "2024-01-10", 4, false},
		{"dayOfMonth", "2024-01-10", 10, true},
		{"monthEqual", "2024-03-01", 3, true},
		{"yearEqual", "2024-01-10", 2023, false},
		{"daysAfter", "2024-01-15", 5, true},
		{"daysBefore", "2024-01-05", 5, true},
		{"monthsAfter", "2024-03-10", 2, true},
		{"monthsBefore", "2023-11-10", 2, true},
		{"yearsAfter", "2027-01-10", 3, true},
		{"yearsBefore", "2021-01-10", 3, true},
		{"yearsBefore", "2021-01-11", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.op+" "+tt.date, func(t *testing.T) {
			ev, err := res.ResolveEvaluator(tt.op, ir.KindNumeric)
			require.NoError(t, err)
			got, err := ev.Evaluate(testEnv(), ir.MustDate(tt.date), ir.NewNumericInt(tt.n))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateRejectsNull(t *testing.T) {
	res := NewResolver(NewBuiltinRegistry())
	for op, msg := range map[string]string{
		"dayOfWeek":   "Day value cannot be null",
		"yearEqual":   "Year value cannot be null",
		"monthsAfter": "Month value cannot be null",
	} {
		ev, err := res.ResolveEvaluator(op, ir.KindNumeric)
		require.NoError(t, err)
		_, err = ev.Evaluate(testEnv(), ir.MustDate("2024-01-10"), ir.Null{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), msg)
	}
}

func TestResolveEvaluatorRequiresDateOperator(t *testing.T) {
	res := NewResolver(NewBuiltinRegistry())

	_, err := res.ResolveEvaluator("equals", ir.KindDate)
	require.Error(t, err)
	assert.True(t, qerr.IsOperatorNotFound(err))

	_, err = res.ResolveEvaluator("dayOfWeek", ir.KindString)
	require.Error(t, err)
	assert.True(t, qerr.IsOperatorNotFound(err))
}

func TestDateOperatorsRejectOtherFields(t *testing.T) {
	for _, op := range []string{"dayOfWeek", "yearEqual", "daysAfter", "monthsBefore"} {
		_, _, err := apply(t, op, strField, ir.NewNumericInt(1))
		require.Error(t, err)
		assert.True(t, qerr.IsOperatorNotFound(err), op)
	}
}

func TestMembership(t *testing.T) {
	list := ir.List{Elem: ir.KindNumeric, Items: []ir.Value{ir.NewNumericInt(1), ir.NewNumericInt(2)}}

	sql, args, err := apply(t, "in", numField, list)
	require.NoError(t, err)
	assert.Equal(t, "salary IN (?,?)", sql)
	assert.Equal(t, []any{int64(1), int64(2)}, args)

	sql, _, err = apply(t, "notIn", numField, list)
	require.NoError(t, err)
	assert.Equal(t, "salary NOT IN (?,?)", sql)
}

func TestMembershipRejects(t *testing.T) {
	tests := []struct {
		name  string
		value ir.Value
	}{
		{"null", ir.Null{}},
		{"scalar", ir.NewNumericInt(1)},
		{"empty", ir.List{Elem: ir.KindNumeric}},
		{"wrong element kind", ir.List{Elem: ir.KindString, Items: []ir.Value{ir.String("a")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := apply(t, "in", numField, tt.value)
			require.Error(t, err)
			assert.True(t, qerr.IsInvalidQuery(err))
		})
	}
}
