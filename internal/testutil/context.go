package testutil

import (
	"github.com/roach88/qengine/internal/reqctx"
)

// RequestID is the request ID of every context built by Context.
const RequestID = "test-request-00000000-0000-0000-0000-000000000001"

// Context builds a request context pinned to Today with a fixed request ID,
// so log lines and compiled output are identical across runs.
// Options are applied after the defaults.
func Context(opts ...reqctx.Option) *reqctx.Context {
	opts = append([]reqctx.Option{reqctx.WithRequestID(RequestID)}, opts...)
	return reqctx.New(NewClock(Today), opts...)
}
