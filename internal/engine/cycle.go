package engine

import (
	"slices"

	"github.com/roach88/logicsim/internal/logic"
)

// Verdict is the outcome of observing a state on a tracked connector.
type Verdict int

const (
	// VerdictExploring means the state was new; the loop keeps running.
	VerdictExploring Verdict = iota
	// VerdictSettled means the loop came back to its only state.
	VerdictSettled
	// VerdictOscillating means the loop revisited a state after visiting
	// at least one other; the connector is frozen to logic.Oscillating.
	VerdictOscillating
)

// String returns a short lower-case name for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictExploring:
		return "exploring"
	case VerdictSettled:
		return "settled"
	case VerdictOscillating:
		return "oscillating"
	default:
		return "unknown"
	}
}

// OscillationDetector tracks connectors proven to sit on a feedback loop.
//
// Tracking starts with Begin once the predecessor graph shows a connector
// is its own transitive predecessor. From then on every state the connector
// takes is recorded. The first repeated state resolves the connector:
//
//	tracked {on}      + on  → settled, keeps on
//	tracked {on, off} + on  → oscillating
//
// Resolved connectors are frozen: the simulation drops their later changes
// until the detector is Reset.
//
// Not safe for concurrent use.
type OscillationDetector struct {
	tracked  map[logic.ConnectorID]map[logic.State]struct{}
	resolved map[logic.ConnectorID]struct{}
}

// NewOscillationDetector creates an empty detector.
func NewOscillationDetector() *OscillationDetector {
	return &OscillationDetector{
		tracked:  make(map[logic.ConnectorID]map[logic.State]struct{}),
		resolved: make(map[logic.ConnectorID]struct{}),
	}
}

// Begin starts tracking id with its first observed state.
// No-op if id is already tracked.
func (d *OscillationDetector) Begin(id logic.ConnectorID, state logic.State) {
	if _, ok := d.tracked[id]; ok {
		return
	}
	d.tracked[id] = map[logic.State]struct{}{state: {}}
}

// IsTracked reports whether id is known to be on a feedback loop.
func (d *OscillationDetector) IsTracked(id logic.ConnectorID) bool {
	_, ok := d.tracked[id]
	return ok
}

// IsResolved reports whether id's loop has been resolved.
func (d *OscillationDetector) IsResolved(id logic.ConnectorID) bool {
	_, ok := d.resolved[id]
	return ok
}

// Observe records a state for a tracked connector and returns the state
// that should actually be applied along with the verdict.
//
// For an untracked connector the state is returned unchanged with
// VerdictExploring and nothing is recorded.
func (d *OscillationDetector) Observe(id logic.ConnectorID, state logic.State) (logic.State, Verdict) {
	states, ok := d.tracked[id]
	if !ok {
		return state, VerdictExploring
	}
	if _, seen := states[state]; !seen {
		states[state] = struct{}{}
		return state, VerdictExploring
	}

	d.resolved[id] = struct{}{}
	if len(states) > 1 {
		return logic.Oscillating, VerdictOscillating
	}
	return state, VerdictSettled
}

// TrackedStates returns the states observed for id since tracking began,
// in State order. Nil if id is not tracked.
func (d *OscillationDetector) TrackedStates(id logic.ConnectorID) []logic.State {
	states, ok := d.tracked[id]
	if !ok {
		return nil
	}
	out := make([]logic.State, 0, len(states))
	for s := range states {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Tracked returns the IDs of all tracked connectors, sorted.
func (d *OscillationDetector) Tracked() []logic.ConnectorID {
	ids := make([]logic.ConnectorID, 0, len(d.tracked))
	for id := range d.tracked {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Resolved returns the IDs of all resolved connectors, sorted.
func (d *OscillationDetector) Resolved() []logic.ConnectorID {
	return sortedIDs(d.resolved)
}

// Reset clears tracked and resolved connectors.
func (d *OscillationDetector) Reset() {
	clear(d.tracked)
	clear(d.resolved)
}
