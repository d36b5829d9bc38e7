package store

import (
	"context"
	"fmt"
	"time"
)

// Entry is one recorded compilation.
type Entry struct {
	Seq         int64  `db:"seq" json:"seq"`
	RequestID   string `db:"request_id" json:"request_id"`
	Fingerprint string `db:"fingerprint" json:"fingerprint,omitempty"`
	Dialect     string `db:"dialect" json:"dialect"`
	SQL         string `db:"sql" json:"sql,omitempty"`

	// Args is the JSON array of bind arguments.
	Args string `db:"args" json:"args"`

	Nodes int `db:"nodes" json:"nodes,omitempty"`
	Depth int `db:"depth" json:"depth,omitempty"`

	// ErrorKind and Error are set when compilation failed.
	ErrorKind string `db:"error_kind" json:"error_kind,omitempty"`
	Error     string `db:"error" json:"error,omitempty"`

	// CompiledAt is RFC 3339, UTC.
	CompiledAt string `db:"compiled_at" json:"compiled_at"`
}

// Failed reports whether the entry records a failed compilation.
func (e Entry) Failed() bool { return e.ErrorKind != "" || e.Error != "" }

// Timestamp formats t the way CompiledAt stores it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Record appends e and returns its seq. A request id that is already
// recorded is ignored; the existing row's seq is returned.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.RequestID == "" {
		return 0, fmt.Errorf("record compilation: request id is required")
	}
	if e.Args == "" {
		e.Args = "[]"
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO compilations
		(request_id, fingerprint, dialect, sql, args, nodes, depth, error_kind, error, compiled_at)
		VALUES (:request_id, :fingerprint, :dialect, :sql, :args, :nodes, :depth, :error_kind, :error, :compiled_at)
		ON CONFLICT(request_id) DO NOTHING
	`, e)
	if err != nil {
		return 0, fmt.Errorf("record compilation: %w", err)
	}

	var seq int64
	if err := s.db.GetContext(ctx, &seq, `SELECT seq FROM compilations WHERE request_id = ?`, e.RequestID); err != nil {
		return 0, fmt.Errorf("record compilation: %w", err)
	}
	return seq, nil
}
