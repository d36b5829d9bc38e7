package operator

import (
	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/predicate"
	"github.com/roach88/qengine/internal/qerr"
)

// dateOperator applies to date columns and also evaluates literal dates.
type dateOperator struct {
	apply Func
	eval  func(env Env, date ir.Date, value ir.Value) (bool, error)
}

func (o dateOperator) Apply(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error) {
	return o.apply(env, field, value)
}

func (o dateOperator) Evaluate(env Env, date ir.Date, value ir.Value) (bool, error) {
	return o.eval(env, date, value)
}

// datePart builds operators comparing one calendar component of a date
// with a whole number.
func datePart(name string, part predicate.DatePart) dateOperator {
	want := func(value ir.Value) (int64, error) {
		if err := requireValue(value, nullMessage(part.Label())); err != nil {
			return 0, err
		}
		return wholeNumber(part.Label(), value)
	}
	return dateOperator{
		apply: func(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error) {
			if err := requireValue(value, nullMessage(part.Label())); err != nil {
				return nil, err
			}
			if err := requireField(name, field.Kind, ir.KindDate); err != nil {
				return nil, err
			}
			n, err := want(value)
			if err != nil {
				return nil, err
			}
			return env.Builder.DatePartEq(field, part, n), nil
		},
		eval: func(_ Env, date ir.Date, value ir.Value) (bool, error) {
			n, err := want(value)
			if err != nil {
				return false, err
			}
			return int64(partOf(part, date)) == n, nil
		},
	}
}

func partOf(part predicate.DatePart, d ir.Date) int {
	switch part {
	case predicate.DayOfWeek:
		return d.ISOWeekday()
	case predicate.DayOfMonth:
		return d.Day()
	case predicate.MonthOfYear:
		return int(d.Month())
	}
	return d.Year()
}

type unit struct {
	label string
	limit int64 // largest offset accepted, in units
	add   func(d ir.Date, n int) ir.Date
}

var (
	days   = unit{label: "day", limit: 3_660_000, add: ir.Date.AddDays}
	months = unit{label: "month", limit: 120_000, add: ir.Date.AddMonths}
	years  = unit{label: "year", limit: 10_000, add: ir.Date.AddYears}
)

// dateOffset builds operators matching dates equal to today moved forward
// (sign=1) or back (sign=-1) by a whole number of units.
func dateOffset(name string, u unit, sign int64) dateOperator {
	target := func(env Env, value ir.Value) (ir.Date, error) {
		if err := requireValue(value, nullMessage(u.label)); err != nil {
			return ir.Date{}, err
		}
		n, err := wholeNumber(u.label, value)
		if err != nil {
			return ir.Date{}, err
		}
		if n > u.limit || n < -u.limit {
			return ir.Date{}, qerr.Invalid("%s offset %d is out of range", u.label, n)
		}
		if env.Context == nil {
			return ir.Date{}, qerr.Invalid("%s requires a request context", name)
		}

		d := u.add(env.Context.Today(), int(sign*n))
		if y := d.Year(); y < 1 || y > 9999 {
			return ir.Date{}, qerr.Invalid("%s offset %d moves outside the calendar", u.label, n)
		}
		return d, nil
	}
	return dateOperator{
		apply: func(env Env, field predicate.Field, value ir.Value) (predicate.Predicate, error) {
			if err := requireValue(value, nullMessage(u.label)); err != nil {
				return nil, err
			}
			if err := requireField(name, field.Kind, ir.KindDate); err != nil {
				return nil, err
			}
			d, err := target(env, value)
			if err != nil {
				return nil, err
			}
			return env.Builder.DateEq(field, d), nil
		},
		eval: func(env Env, date ir.Date, value ir.Value) (bool, error) {
			d, err := target(env, value)
			if err != nil {
				return false, err
			}
			return date.Equal(d), nil
		},
	}
}

func dateDescriptors() []Descriptor {
	date := []ir.Kind{ir.KindDate}
	num := []ir.Kind{ir.KindNumeric}
	d := func(name, desc string, impl Operator) Descriptor {
		return Descriptor{Name: name, FieldKinds: date, ValueKinds: num, Description: desc, Impl: impl}
	}
	return []Descriptor{
		d("dayOfWeek", "ISO weekday of the field (Monday=1) equals the value", datePart("dayOfWeek", predicate.DayOfWeek)),
		d("dayOfMonth", "Day of month of the field equals the value", datePart("dayOfMonth", predicate.DayOfMonth)),
		d("dayEqual", "Alias of dayOfMonth", datePart("dayEqual", predicate.DayOfMonth)),
		d("monthEqual", "Month of the field equals the value", datePart("monthEqual", predicate.MonthOfYear)),
		d("yearEqual", "Year of the field equals the value", datePart("yearEqual", predicate.Year)),
		d("daysAfter", "Field is today plus the given number of days", dateOffset("daysAfter", days, 1)),
		d("daysBefore", "Field is today minus the given number of days", dateOffset("daysBefore", days, -1)),
		d("monthsAfter", "Field is today plus the given number of months", dateOffset("monthsAfter", months, 1)),
		d("monthsBefore", "Field is today minus the given number of months", dateOffset("monthsBefore", months, -1)),
		d("yearsAfter", "Field is today plus the given number of years", dateOffset("yearsAfter", years, 1)),
		d("yearsBefore", "Field is today minus the given number of years", dateOffset("yearsBefore", years, -1)),
	}
}
