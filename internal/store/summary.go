package store

import (
	"context"
	"fmt"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
)

// RunSummary aggregates a recorded run.
type RunSummary struct {
	Run      Run                               `json:"run"`
	Events   int                               `json:"events"`
	Waves    int                               `json:"waves"` // distinct wave numbers
	LastSeq  int64                             `json:"last_seq"`
	ByKind   map[engine.EventKind]int          `json:"by_kind"`
	Final    map[logic.ConnectorID]logic.State `json:"final"`    // last rendered state per connector
	Resolved []logic.ConnectorID               `json:"resolved"` // in resolution order
}

// Summarize rebuilds a run's outcome from its trace.
//
// The final state of a connector is the state of its last rendered
// event, which is what the network showed when the trace ended. Events
// that were skipped or whose connector was gone do not count.
func (s *Store) Summarize(ctx context.Context, runID string) (RunSummary, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("summarize run %s: %w", runID, err)
	}

	events, err := s.ReadEvents(ctx, runID)
	if err != nil {
		return RunSummary{}, fmt.Errorf("summarize run %s: %w", runID, err)
	}

	sum := RunSummary{
		Run:      run,
		Events:   len(events),
		ByKind:   make(map[engine.EventKind]int),
		Final:    make(map[logic.ConnectorID]logic.State),
		Resolved: []logic.ConnectorID{},
	}

	lastWave := int64(-1)
	for _, ev := range events {
		// seq order implies wave order
		if ev.Wave != lastWave {
			sum.Waves++
			lastWave = ev.Wave
		}
		sum.LastSeq = ev.Seq
		sum.ByKind[ev.Kind]++
		if ev.Rendered {
			sum.Final[ev.Connector] = ev.State
		}
		if ev.Kind == engine.KindSettled || ev.Kind == engine.KindOscillating {
			sum.Resolved = append(sum.Resolved, ev.Connector)
		}
	}

	return sum, nil
}

// GetLastSeq returns the highest seq recorded for a run, or 0 if it has no
// events.
func (s *Store) GetLastSeq(ctx context.Context, runID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM events WHERE run_id = ?
	`, runID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}
