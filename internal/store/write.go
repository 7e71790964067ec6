package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/logicsim/internal/engine"
)

// Run describes one recorded simulation session.
type Run struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Network     string `json:"network,omitempty"`
	ResetPolicy string `json:"reset_policy"`
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same run
// twice is silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("write run: id is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, network, reset_policy)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Name,
		run.Network,
		run.ResetPolicy,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvent appends one event to a run's trace.
// Uses ON CONFLICT(run_id, seq) DO NOTHING for idempotency.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) WriteEvent(ctx context.Context, runID string, ev engine.Event) error {
	if err := insertEvent(ctx, s.db, runID, ev); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// WriteEvents appends events to a run's trace in a single transaction.
// Either all events are written or none are.
func (s *Store) WriteEvents(ctx context.Context, runID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write events: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, ev := range events {
		if err := insertEvent(ctx, tx, runID, ev); err != nil {
			return fmt.Errorf("write events: seq %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write events: commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEvent(ctx context.Context, db execer, runID string, ev engine.Event) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO events
		(run_id, seq, wave, connector, requested, state, caused_by, kind, rendered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		runID,
		ev.Seq,
		ev.Wave,
		string(ev.Connector),
		ev.Requested.String(),
		ev.State.String(),
		string(ev.CausedBy),
		string(ev.Kind),
		ev.Rendered,
	)
	return err
}
