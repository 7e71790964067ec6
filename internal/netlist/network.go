package netlist

import (
	"fmt"
	"slices"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
)

// Network is a built, simulatable set of elements and wires.
//
// It implements engine.Registry. A Network is not safe for concurrent use;
// it is driven by the same goroutine as its simulation.
type Network struct {
	name     string
	elements map[string]*element
	order    []string // element IDs in declaration order
	outputs  map[logic.ConnectorID]*OutputConnector
	inputs   map[logic.ConnectorID]*inputConnector
}

type element struct {
	spec    ElementSpec
	ins     []*inputConnector
	out     *OutputConnector
	emitted logic.State // last value reported for out
}

type inputConnector struct {
	id     logic.ConnectorID
	owner  *element
	state  logic.State
	driver *OutputConnector
}

// OutputConnector is a connector driven by its element. It is what the
// engine renders states into.
type OutputConnector struct {
	id     logic.ConnectorID
	owner  *element
	state  logic.State
	fanout []*inputConnector
}

// ID returns the connector's ID.
func (o *OutputConnector) ID() logic.ConnectorID {
	return o.id
}

// State returns the connector's current state.
func (o *OutputConnector) State() logic.State {
	return o.state
}

// SetState implements engine.Connector.
//
// The state is copied into every input connector on the connector's wires,
// then each element owning one of them is re-evaluated once, in wire order.
func (o *OutputConnector) SetState(state logic.State, n engine.Notifier) {
	o.state = state

	var touched []*element
	for _, in := range o.fanout {
		in.state = state
		if !slices.Contains(touched, in.owner) {
			touched = append(touched, in.owner)
		}
	}
	for _, el := range touched {
		el.evaluate(n)
	}
}

// evaluate recomputes the element's output and reports it if it changed.
func (e *element) evaluate(n engine.Notifier) {
	if e.out == nil || e.spec.Kind == KindInput {
		return
	}
	in := make([]logic.State, len(e.ins))
	for i, c := range e.ins {
		in[i] = c.state
	}
	next := eval(e.spec.Kind, in)
	if next == e.emitted {
		return
	}
	e.emitted = next
	n.NotifyChange(e.out.id, next)
}

// Build validates a description and builds the network. All validation
// problems are reported together, joined with errors.Join.
func Build(desc *Description) (*Network, error) {
	if err := Validate(desc); err != nil {
		return nil, err
	}

	nw := &Network{
		name:     desc.Name,
		elements: make(map[string]*element, len(desc.Elements)),
		outputs:  make(map[logic.ConnectorID]*OutputConnector),
		inputs:   make(map[logic.ConnectorID]*inputConnector),
	}

	for _, spec := range desc.Elements {
		el := &element{spec: spec}
		for i := 0; i < spec.inputCount(); i++ {
			in := &inputConnector{id: logic.PortID(spec.ID, spec.inputPort(i)), owner: el}
			el.ins = append(el.ins, in)
			nw.inputs[in.id] = in
		}
		if spec.hasOutput() {
			el.out = &OutputConnector{id: logic.PortID(spec.ID, "out"), owner: el}
			nw.outputs[el.out.id] = el.out
		}
		nw.elements[spec.ID] = el
		nw.order = append(nw.order, spec.ID)
	}

	for _, w := range desc.Wires {
		from := nw.outputs[logic.NewConnectorID(w.From)]
		for _, to := range w.To {
			in := nw.inputs[logic.NewConnectorID(to)]
			in.driver = from
			from.fanout = append(from.fanout, in)
		}
	}

	return nw, nil
}

// Name returns the network's name.
func (nw *Network) Name() string {
	return nw.name
}

// Elements returns the element IDs in declaration order.
func (nw *Network) Elements() []string {
	return slices.Clone(nw.order)
}

// Lookup implements engine.Registry.
func (nw *Network) Lookup(id logic.ConnectorID) (engine.Connector, bool) {
	out, ok := nw.outputs[id]
	if !ok {
		return nil, false
	}
	return out, true
}

// Output returns the output connector with the given ID.
func (nw *Network) Output(id logic.ConnectorID) (*OutputConnector, bool) {
	out, ok := nw.outputs[id]
	return out, ok
}

// State returns the state of any connector, input or output.
func (nw *Network) State(id logic.ConnectorID) (logic.State, bool) {
	if out, ok := nw.outputs[id]; ok {
		return out.state, true
	}
	if in, ok := nw.inputs[id]; ok {
		return in.state, true
	}
	return logic.Unknown, false
}

// States returns the state of every connector, keyed by ID.
func (nw *Network) States() map[logic.ConnectorID]logic.State {
	out := make(map[logic.ConnectorID]logic.State, len(nw.outputs)+len(nw.inputs))
	for id, c := range nw.outputs {
		out[id] = c.state
	}
	for id, c := range nw.inputs {
		out[id] = c.state
	}
	return out
}

// Connectors returns every connector ID in declaration order, each
// element's inputs before its output.
func (nw *Network) Connectors() []logic.ConnectorID {
	var ids []logic.ConnectorID
	for _, name := range nw.order {
		el := nw.elements[name]
		for _, in := range el.ins {
			ids = append(ids, in.id)
		}
		if el.out != nil {
			ids = append(ids, el.out.id)
		}
	}
	return ids
}

// SetInput reports a new value for an input element, as a user edit would.
// name may be the element ID ("a") or its output connector ("a.out").
// The change takes effect when the simulator next runs.
func (nw *Network) SetInput(name string, state logic.State, sim engine.Notifier) error {
	id := logic.NewConnectorID(name)
	if _, _, ok := id.Split(); !ok {
		id = logic.PortID(name, "out")
	}
	out, ok := nw.outputs[id]
	if !ok || out.owner.spec.Kind != KindInput {
		return fmt.Errorf("%s is not an input element", name)
	}
	sim.NotifyChange(out.id, state)
	return nil
}

// Remove deletes an element and detaches its connectors. Changes already
// scheduled for its output stay in the simulation; rendering them is
// skipped because Lookup no longer finds the connector.
func (nw *Network) Remove(elementID string) bool {
	el, ok := nw.elements[elementID]
	if !ok {
		return false
	}
	for _, in := range el.ins {
		if in.driver != nil {
			in.driver.fanout = slices.DeleteFunc(in.driver.fanout, func(c *inputConnector) bool {
				return c == in
			})
		}
		delete(nw.inputs, in.id)
	}
	if el.out != nil {
		for _, in := range el.out.fanout {
			in.driver = nil
		}
		delete(nw.outputs, el.out.id)
	}
	delete(nw.elements, elementID)
	nw.order = slices.DeleteFunc(nw.order, func(id string) bool { return id == elementID })
	return true
}
