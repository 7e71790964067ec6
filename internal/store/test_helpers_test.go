package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun writes a run with minimal required fields.
func createTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run := Run{ID: id, Name: "test-" + id, Network: "latch.yaml", ResetPolicy: "retain"}
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run
}

// createTestEvent creates an applied, rendered event.
func createTestEvent(seq, wave int64, connector string, state logic.State) engine.Event {
	return engine.Event{
		Seq:       seq,
		Wave:      wave,
		Connector: logic.ConnectorID(connector),
		Requested: state,
		State:     state,
		Kind:      engine.KindApplied,
		Rendered:  true,
	}
}
