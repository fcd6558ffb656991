package testutil

import (
	"path/filepath"
	"testing"

	"github.com/wesm/streamview/internal/store"
)

// NewTestStore creates a temporary database for testing.
// The database is automatically cleaned up when the test completes.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	// Register close on cleanup
	t.Cleanup(func() {
		st.Close()
	})

	// Initialize schema
	if err := st.InitSchema(); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return st
}

// MustCreateStream inserts a stream and subscribes the given users to it.
func MustCreateStream(t *testing.T, st *store.Store, s store.Stream, subscribers ...int64) *store.Stream {
	t.Helper()
	stream := s
	MustNoErr(t, st.UpsertStream(&stream), "UpsertStream "+s.Name)
	if len(subscribers) > 0 {
		MustNoErr(t, st.Subscribe(stream.ID, subscribers...), "Subscribe "+s.Name)
	}
	return &stream
}
