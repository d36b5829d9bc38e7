package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Value is a sealed interface representing a decoded query literal.
// Only Null, String, Numeric, Bool, Date and List implement it.
type Value interface {
	// Kind returns the semantic type of the literal. Null reports
	// KindInvalid; a List reports the kind of its elements.
	Kind() Kind

	// Arg returns the representation bound as a SQL parameter.
	Arg() any

	// String renders the literal for diagnostics.
	String() string

	isValue() // Sealed - only these types implement it
}

// Null represents an absent value or JSON null.
// Using an explicit type keeps "no value" distinct from a nil interface
// that was never populated.
type Null struct{}

func (Null) isValue() {}
func (Null) Kind() Kind { return KindInvalid }
func (Null) Arg() any { return nil }
func (Null) String() string { return "null" }

// IsNull reports whether v is absent: either a nil interface or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// String is a STRING literal.
type String string

func (String) isValue() {}
func (String) Kind() Kind { return KindString }
func (s String) Arg() any { return string(s) }
func (s String) String() string { return strconv.Quote(string(s)) }

// Bool is a BOOLEAN literal.
type Bool bool

func (Bool) isValue() {}
func (Bool) Kind() Kind { return KindBoolean }
func (b Bool) Arg() any { return bool(b) }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Numeric is a NUMERIC literal backed by an arbitrary-precision decimal.
type Numeric struct {
	d *apd.Decimal
}

func (Numeric) isValue() {}
func (Numeric) Kind() Kind { return KindNumeric }

// NewNumeric parses a decimal literal. Only finite values are accepted.
func NewNumeric(s string) (Numeric, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Numeric{}, err
	}
	if d.Form != apd.Finite {
		return Numeric{}, fmt.Errorf("%q is not a finite number", s)
	}
	return Numeric{d: d}, nil
}

// NewNumericInt creates a Numeric from an integer.
func NewNumericInt(n int64) Numeric {
	return Numeric{d: apd.New(n, 0)}
}

// MustNumeric is NewNumeric for literals known to be valid (tests, tables).
func MustNumeric(s string) Numeric {
	n, err := NewNumeric(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Decimal returns a copy of the underlying decimal.
func (n Numeric) Decimal() *apd.Decimal {
	var out apd.Decimal
	if n.d != nil {
		out.Set(n.d)
	}
	return &out
}

// IsInteger reports whether the value has no fractional part, whatever its
// magnitude.
func (n Numeric) IsInteger() bool {
	if n.d == nil {
		return true
	}
	var integ, frac apd.Decimal
	n.d.Modf(&integ, &frac)
	return frac.IsZero()
}

// Int64 returns the value as an int64 when it is integral and in range.
func (n Numeric) Int64() (int64, bool) {
	if n.d == nil {
		return 0, true
	}
	var integ, frac apd.Decimal
	n.d.Modf(&integ, &frac)
	if !frac.IsZero() {
		return 0, false
	}
	i, err := integ.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

// Arg binds integral values as int64 and everything else as decimal text,
// so no precision is lost on the way to the driver.
func (n Numeric) Arg() any {
	if i, ok := n.Int64(); ok {
		return i
	}
	return n.String()
}

func (n Numeric) String() string {
	if n.d == nil {
		return "0"
	}
	return n.d.Text('f')
}

// Equal reports numeric equality (1.0 equals 1).
func (n Numeric) Equal(other Numeric) bool {
	return n.Decimal().Cmp(other.Decimal()) == 0
}

// DateLayout is the only accepted textual form of a DATE literal.
const DateLayout = "2006-01-02"

// Date is a DATE literal: a calendar day without time of day or zone.
type Date struct {
	t time.Time // always UTC midnight
}

func (Date) isValue() {}
func (Date) Kind() Kind { return KindDate }

// NewDate creates a Date. Out-of-range components normalize the way
// time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a strict YYYY-MM-DD date. Impossible dates such as
// 2023-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) {
		return Date{}, fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	return Date{t: t}, nil
}

// MustDate is ParseDate for literals known to be valid.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the date as UTC midnight.
func (d Date) Time() time.Time { return d.t }

func (d Date) Year() int { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int { return d.t.Day() }

// ISOWeekday returns the weekday with Monday=1 and Sunday=7.
func (d Date) ISOWeekday() int {
	wd := int(d.t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths shifts the date by n months. When the target month is shorter,
// the day is clamped to its last day (2024-01-31 + 1 month = 2024-02-29).
func (d Date) AddMonths(n int) Date {
	y, m, day := d.t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

// AddYears shifts the date by n years, clamping Feb 29 to Feb 28.
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

func (d Date) Arg() any { return d.String() }
func (d Date) String() string { return d.t.Format(DateLayout) }

// List is an array literal whose elements share one kind.
// It is only meaningful to membership operators (in, notIn).
type List struct {
	Elem  Kind
	Items []Value
}

func (List) isValue() {}
func (l List) Kind() Kind { return l.Elem }

// Arg returns the element arguments as a slice.
func (l List) Arg() any {
	args := make([]any, len(l.Items))
	for i, item := range l.Items {
		args[i] = item.Arg()
	}
	return args
}

func (l List) String() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
