package engine

import "github.com/roach88/logicsim/internal/logic"

// StateChange is one scheduled state update of an output connector.
//
// CausedBy is the connector whose own update produced this change, or
// empty for changes reported from outside the simulation (user edits).
// A StateChange is immutable once created and only lives inside a wave.
type StateChange struct {
	Connector logic.ConnectorID
	State     logic.State
	CausedBy  logic.ConnectorID
}

// Notifier accepts state change reports.
type Notifier interface {
	NotifyChange(id logic.ConnectorID, state logic.State)
}

// Connector is an output connector as seen by the simulation.
//
// SetState renders the new state and propagates it through the network.
// Any follow-on change must be reported through n: it carries the
// connector being applied as the cause of whatever it triggers.
type Connector interface {
	SetState(state logic.State, n Notifier)
}

// Registry resolves connector IDs. Lookup returns false for connectors that
// no longer exist; the simulation then skips rendering only.
type Registry interface {
	Lookup(id logic.ConnectorID) (Connector, bool)
}

// RegistryFunc adapts a function to the Registry interface.
type RegistryFunc func(id logic.ConnectorID) (Connector, bool)

// Lookup implements Registry.
func (f RegistryFunc) Lookup(id logic.ConnectorID) (Connector, bool) {
	return f(id)
}

// causeNotifier schedules changes on behalf of the connector being applied.
type causeNotifier struct {
	sim   *Simulation
	cause logic.ConnectorID
}

func (n causeNotifier) NotifyChange(id logic.ConnectorID, state logic.State) {
	n.sim.enqueue(StateChange{Connector: id, State: state, CausedBy: n.cause})
}
