package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
)

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, network, reset_policy
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Name, &run.Network, &run.ResetPolicy)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns every run ordered by ID.
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, network, reset_policy
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Name, &run.Network, &run.ResetPolicy); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEvents returns a run's trace in processing order (ORDER BY seq ASC).
// Returns an empty slice (not nil) if the run has no events.
func (s *Store) ReadEvents(ctx context.Context, runID string) ([]engine.Event, error) {
	return s.queryEvents(ctx, `
		SELECT seq, wave, connector, requested, state, caused_by, kind, rendered
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
}

// ReadConnectorEvents returns the events of one connector in a run, in
// processing order.
func (s *Store) ReadConnectorEvents(ctx context.Context, runID string, id logic.ConnectorID) ([]engine.Event, error) {
	return s.queryEvents(ctx, `
		SELECT seq, wave, connector, requested, state, caused_by, kind, rendered
		FROM events
		WHERE run_id = ? AND connector = ?
		ORDER BY seq ASC
	`, runID, string(id))
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]engine.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []engine.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// scanEvent scans an event from a rows result.
func scanEvent(rows *sql.Rows) (engine.Event, error) {
	var (
		ev                  engine.Event
		connector, causedBy string
		requested, state    string
		kind                string
	)

	err := rows.Scan(&ev.Seq, &ev.Wave, &connector, &requested, &state, &causedBy, &kind, &ev.Rendered)
	if err != nil {
		return engine.Event{}, fmt.Errorf("scan event: %w", err)
	}

	if ev.Requested, err = logic.ParseState(requested); err != nil {
		return engine.Event{}, fmt.Errorf("scan event %d: %w", ev.Seq, err)
	}
	if ev.State, err = logic.ParseState(state); err != nil {
		return engine.Event{}, fmt.Errorf("scan event %d: %w", ev.Seq, err)
	}
	ev.Connector = logic.ConnectorID(connector)
	ev.CausedBy = logic.ConnectorID(causedBy)
	ev.Kind = engine.EventKind(kind)

	return ev, nil
}
