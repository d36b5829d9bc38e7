package placeholder

import (
	"errors"
	"strconv"
	"time"

	"github.com/roach88/qengine/internal/ir"
	"github.com/roach88/qengine/internal/reqctx"
)

func static(fn func(qc *reqctx.Context) (string, error)) Factory {
	return func() Resolver { return ResolverFunc(fn) }
}

func dateRelative(days int) Factory {
	return static(func(qc *reqctx.Context) (string, error) {
		return qc.Today().AddDays(days).String(), nil
	})
}

func todayPart(part func(ir.Date) int) Factory {
	return static(func(qc *reqctx.Context) (string, error) {
		return strconv.Itoa(part(qc.Today())), nil
	})
}

// RegisterBuiltins registers the built-in tokens into r.
func RegisterBuiltins(r *Registry) {
	r.MustRegister("[me]", "Caller's user id", static(func(qc *reqctx.Context) (string, error) {
		if qc.UserID == "" {
			return "", errors.New("caller identity is unknown")
		}
		return qc.UserID, nil
	}))
	r.MustRegister("[tenant]", "Caller's tenant", static(func(qc *reqctx.Context) (string, error) {
		if qc.Tenant == "" {
			return "", errors.New("tenant is unknown")
		}
		return qc.Tenant, nil
	}))
	r.MustRegister("[today]", "Current date, YYYY-MM-DD", dateRelative(0))
	r.MustRegister("[yesterday]", "Previous date, YYYY-MM-DD", dateRelative(-1))
	r.MustRegister("[tomorrow]", "Next date, YYYY-MM-DD", dateRelative(1))
	r.MustRegister("[now]", "Current instant, RFC 3339", static(func(qc *reqctx.Context) (string, error) {
		return qc.Now.Format(time.RFC3339), nil
	}))
	r.MustRegister("[current_year]", "Current year", todayPart(ir.Date.Year))
	r.MustRegister("[current_month]", "Current month number, 1-12", todayPart(func(d ir.Date) int { return int(d.Month()) }))
	r.MustRegister("[current_day]", "Current day of month", todayPart(ir.Date.Day))
}

// NewBuiltinRegistry returns a registry holding the built-in tokens.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}
