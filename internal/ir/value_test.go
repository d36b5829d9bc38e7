package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindNamesAreCanonical(t *testing.T) {
	assert.Equal(t, "STRING", KindString.String())
	assert.Equal(t, "NUMERIC", KindNumeric.String())
	assert.Equal(t, "BOOLEAN", KindBoolean.String())
	assert.Equal(t, "DATE", KindDate.String())
	assert.False(t, KindInvalid.Valid())
}

func TestKindsSortedByName(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 4)
	for i := 1; i < len(kinds); i++ {
		assert.Less(t, kinds[i-1].String(), kinds[i].String())
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" numeric ")
	require.NoError(t, err)
	assert.Equal(t, KindNumeric, k)

	_, err = ParseKind("INTEGER")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTEGER")
}

func TestKindTextRoundTrip(t *testing.T) {
	text, err := KindDate.MarshalText()
	require.NoError(t, err)

	var k Kind
	require.NoError(t, k.UnmarshalText(text))
	assert.Equal(t, KindDate, k)

	_, err = KindInvalid.MarshalText()
	assert.Error(t, err)
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.False(t, IsNull(String("")))
	assert.False(t, IsNull(Bool(false)))
}

func TestNumericIsInteger(t *testing.T) {
	for _, in := range []string{"0", "-3", "70000.00", "1e99999"} {
		assert.True(t, MustNumeric(in).IsInteger(), in)
	}
	for _, in := range []string{"2.5", "-0.001", "1e-3"} {
		assert.False(t, MustNumeric(in).IsInteger(), in)
	}
}

func TestNumericArg(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"70000", int64(70000)},
		{"70000.00", int64(70000)},
		{"-3", int64(-3)},
		{"12.5", "12.5"},
		{"99999999999999999999", "99999999999999999999"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MustNumeric(tt.in).Arg())
		})
	}
}

func TestNumericRejectsNonFinite(t *testing.T) {
	for _, in := range []string{"NaN", "Infinity", "-inf", "abc", ""} {
		_, err := NewNumeric(in)
		assert.Error(t, err, in)
	}
}

func TestNumericEqual(t *testing.T) {
	assert.True(t, MustNumeric("1.0").Equal(NewNumericInt(1)))
	assert.False(t, MustNumeric("1.5").Equal(NewNumericInt(1)))
}

func TestParseDateStrict(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", d.String())
	assert.Equal(t, 3, d.ISOWeekday()) // Wednesday

	for _, bad := range []string{"2023-02-30", "2024-1-10", "10/01/2024", "2024-01-10T00:00:00Z"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateArithmetic(t *testing.T) {
	now := MustDate("2024-01-10")

	assert.Equal(t, "2024-01-15", now.AddDays(5).String())
	assert.Equal(t, "2024-01-05", now.AddDays(-5).String())
	assert.Equal(t, "2024-03-10", now.AddMonths(2).String())
	assert.Equal(t, "2023-11-10", now.AddMonths(-2).String())
	assert.Equal(t, "2027-01-10", now.AddYears(3).String())
	assert.Equal(t, "2021-01-10", now.AddYears(-3).String())
}

func TestDateMonthClamping(t *testing.T) {
	assert.Equal(t, "2024-02-29", MustDate("2024-01-31").AddMonths(1).String())
	assert.Equal(t, "2023-02-28", MustDate("2023-01-31").AddMonths(1).String())
	assert.Equal(t, "2025-02-28", MustDate("2024-02-29").AddYears(1).String())
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	instant := time.Date(2024, 1, 10, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-01-10", DateOf(instant).String())
}

func TestListArg(t *testing.T) {
	l := List{Elem: KindString, Items: []Value{String("a"), String("b")}}
	assert.Equal(t, []any{"a", "b"}, l.Arg())
	assert.Equal(t, KindString, l.Kind())
	assert.Equal(t, `["a", "b"]`, l.String())
}
