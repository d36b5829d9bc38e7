package predicate

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// DatePart names a calendar component extracted from a date column.
type DatePart int

const (
	// DayOfWeek is the ISO weekday, Monday=1 through Sunday=7.
	DayOfWeek DatePart = iota + 1
	// DayOfMonth is 1 through 31.
	DayOfMonth
	// MonthOfYear is 1 through 12.
	MonthOfYear
	// Year is the four digit year.
	Year
)

var datePartNames = map[DatePart]string{
	DayOfWeek:   "Day",
	DayOfMonth:  "Day",
	MonthOfYear: "Month",
	Year:        "Year",
}

// Label is the part name used in error messages ("Day", "Month", "Year").
func (p DatePart) Label() string {
	if name, ok := datePartNames[p]; ok {
		return name
	}
	return fmt.Sprintf("DatePart(%d)", int(p))
}

// Dialect renders the SQL that differs between backends.
type Dialect interface {
	// Name is the dialect's configuration name.
	Name() string

	// PlaceholderFormat rewrites squirrel's "?" placeholders.
	PlaceholderFormat() sq.PlaceholderFormat

	// DatePart returns an integer-valued expression extracting part from column.
	DatePart(part DatePart, column string) string

	// DateOnly returns an expression truncating column to a calendar date
	// comparable with a YYYY-MM-DD argument.
	DateOnly(column string) string
}

// SQLite renders for SQLite, where dates are stored as ISO-8601 text.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }

func (SQLite) DatePart(part DatePart, column string) string {
	switch part {
	case DayOfWeek:
		// strftime %w counts from Sunday=0.
		return fmt.Sprintf("((CAST(strftime('%%w', %s) AS INTEGER) + 6) %% 7 + 1)", column)
	case DayOfMonth:
		return fmt.Sprintf("CAST(strftime('%%d', %s) AS INTEGER)", column)
	case MonthOfYear:
		return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", column)
	case Year:
		return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", column)
	}
	panic(fmt.Sprintf("predicate: unknown date part %d", int(part)))
}

func (SQLite) DateOnly(column string) string {
	return fmt.Sprintf("date(%s)", column)
}

// Postgres renders for PostgreSQL.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) PlaceholderFormat() sq.PlaceholderFormat { return sq.Dollar }

func (Postgres) DatePart(part DatePart, column string) string {
	var field string
	switch part {
	case DayOfWeek:
		field = "ISODOW"
	case DayOfMonth:
		field = "DAY"
	case MonthOfYear:
		field = "MONTH"
	case Year:
		field = "YEAR"
	default:
		panic(fmt.Sprintf("predicate: unknown date part %d", int(part)))
	}
	return fmt.Sprintf("EXTRACT(%s FROM %s)", field, column)
}

func (Postgres) DateOnly(column string) string {
	return fmt.Sprintf("CAST(%s AS DATE)", column)
}

var dialects = map[string]Dialect{
	"sqlite":     SQLite{},
	"sqlite3":    SQLite{},
	"postgres":   Postgres{},
	"postgresql": Postgres{},
}

// DialectByName looks up a dialect by configuration name, case-insensitively.
func DialectByName(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q: must be one of %v", name, DialectNames())
	}
	return d, nil
}

// DialectNames lists the accepted dialect names, sorted.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
