package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var compiledAt = Timestamp(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))

func entry(requestID, fingerprint string) Entry {
	return Entry{
		RequestID:   requestID,
		Fingerprint: fingerprint,
		Dialect:     "sqlite",
		SQL:         "salary > ?",
		Args:        "[70000]",
		Nodes:       1,
		Depth:       1,
		CompiledAt:  compiledAt,
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("user_version", fmt.Sprint(currentSchemaVersion)); err != nil {
		t.Error(err)
	}
}

func TestOpen_KeepsExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.Record(ctx, entry("req-1", "fp-a"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	_, ok, err := s2.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecord_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Record(ctx, entry("req-1", "fp-a"))
	require.NoError(t, err)
	second, err := s.Record(ctx, entry("req-2", "fp-a"))
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestRecord_DuplicateRequestIsIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.Record(ctx, entry("req-1", "fp-a"))
	require.NoError(t, err)

	dup := entry("req-1", "fp-b")
	again, err := s.Record(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, seq, again)

	got, ok, err := s.Get(ctx, "req-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fp-a", got.Fingerprint, "first write wins")
}

func TestRecord_RequiresRequestID(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Record(context.Background(), entry("", "fp-a"))
	assert.Error(t, err)
}

func TestRecord_Failure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Record(ctx, Entry{
		RequestID:  "req-err",
		Dialect:    "postgres",
		ErrorKind:  "OPERATOR_NOT_FOUND",
		Error:      `operator "like" not found`,
		CompiledAt: compiledAt,
	})
	require.NoError(t, err)

	got, ok, err := s.Get(ctx, "req-err")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Failed())
	assert.Equal(t, "[]", got.Args, "missing args default to an empty array")
	assert.Empty(t, got.SQL)
	assert.Equal(t, compiledAt, got.CompiledAt)
}

func TestGet_Missing(t *testing.T) {
	s := createTestStore(t)
	_, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for i := 1; i <= 5; i++ {
		_, err := s.Record(ctx, entry(fmt.Sprintf("req-%d", i), "fp"))
		require.NoError(t, err)
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "req-5", recent[0].RequestID)
	assert.Equal(t, "req-4", recent[1].RequestID)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestByFingerprint(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, e := range []Entry{
		entry("req-1", "fp-a"),
		entry("req-2", "fp-b"),
		entry("req-3", "fp-a"),
	} {
		_, err := s.Record(ctx, e)
		require.NoError(t, err)
	}

	got, err := s.ByFingerprint(ctx, "fp-a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.Equal(t, "req-3", got[1].RequestID)
	assert.Equal(t, "salary > ?", got[0].SQL)
	assert.Equal(t, "[70000]", got[0].Args)

	none, err := s.ByFingerprint(ctx, "fp-z")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecord_Concurrent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Record(ctx, entry(fmt.Sprintf("req-%d", i), "fp"))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
