package engine

import "github.com/roach88/logicsim/internal/logic"

// EventKind says what the simulation did with a scheduled change.
type EventKind string

const (
	// KindApplied: the change was applied as requested.
	KindApplied EventKind = "applied"
	// KindSkipped: the connector's loop was already resolved; change dropped.
	KindSkipped EventKind = "skipped"
	// KindCycleDetected: the connector was found to be its own predecessor
	// and tracking started; the change was applied as requested.
	KindCycleDetected EventKind = "cycle-detected"
	// KindExploring: the connector sits on a loop and took a state the
	// loop had not produced yet; applied as requested.
	KindExploring EventKind = "exploring"
	// KindSettled: the loop repeated its only state; applied and frozen.
	KindSettled EventKind = "settled"
	// KindOscillating: the loop repeated after several states; the
	// connector was frozen to logic.Oscillating.
	KindOscillating EventKind = "oscillating"
)

// Event describes one processed StateChange.
type Event struct {
	Seq       int64             `json:"seq"`
	Wave      int64             `json:"wave"`
	Connector logic.ConnectorID `json:"connector"`
	Requested logic.State       `json:"requested"`
	State     logic.State       `json:"state"` // state actually applied
	CausedBy  logic.ConnectorID `json:"caused_by,omitempty"`
	Kind      EventKind         `json:"kind"`
	Rendered  bool              `json:"rendered"` // false if skipped or the connector was gone
}

// Observer receives an Event for every change the simulation processes, in
// processing order. Observers run synchronously inside the wave loop and
// must not call back into the simulation.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
