package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const selectEntries = `
	SELECT seq, request_id, fingerprint, dialect, sql, args, nodes, depth, error_kind, error, compiled_at
	FROM compilations`

// Recent returns up to limit entries, newest first. A non-positive limit
// returns every entry.
//
// Returns an empty slice (not nil) if nothing was recorded.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	entries := []Entry{}
	if err := s.db.SelectContext(ctx, &entries, selectEntries+` ORDER BY seq DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	return entries, nil
}

// ByFingerprint returns every compilation of the query with the given
// fingerprint, oldest first.
func (s *Store) ByFingerprint(ctx context.Context, fingerprint string) ([]Entry, error) {
	entries := []Entry{}
	if err := s.db.SelectContext(ctx, &entries, selectEntries+` WHERE fingerprint = ? ORDER BY seq ASC`, fingerprint); err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	return entries, nil
}

// Get returns the entry recorded for requestID.
// Returns false if no entry exists.
func (s *Store) Get(ctx context.Context, requestID string) (Entry, bool, error) {
	var e Entry
	err := s.db.GetContext(ctx, &e, selectEntries+` WHERE request_id = ?`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get compilation: %w", err)
	}
	return e, true, nil
}
