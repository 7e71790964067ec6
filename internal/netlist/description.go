package netlist

import "fmt"

// Kind names an element type.
type Kind string

const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
	KindBuf    Kind = "buf"
	KindNot    Kind = "not"
	KindAnd    Kind = "and"
	KindOr     Kind = "or"
	KindNand   Kind = "nand"
	KindNor    Kind = "nor"
	KindXor    Kind = "xor"
	KindXnor   Kind = "xnor"
)

// ValidKinds lists every supported element kind.
var ValidKinds = []Kind{
	KindInput, KindOutput,
	KindBuf, KindNot,
	KindAnd, KindOr, KindNand, KindNor, KindXor, KindXnor,
}

// Description is the serialisable form of a network.
type Description struct {
	Name     string        `yaml:"name" json:"name"`
	Elements []ElementSpec `yaml:"elements" json:"elements"`
	Wires    []WireSpec    `yaml:"wires" json:"wires"`
}

// ElementSpec declares one element.
type ElementSpec struct {
	ID   string `yaml:"id" json:"id"`
	Kind Kind   `yaml:"kind" json:"kind"`

	// Inputs is the gate's input count. Zero means the default for the
	// kind: 1 for buf and not, 2 for the other gates. Ignored for input
	// and output elements.
	Inputs int `yaml:"inputs,omitempty" json:"inputs,omitempty"`
}

// WireSpec connects one output connector to one or more input connectors.
type WireSpec struct {
	From string   `yaml:"from" json:"from"`
	To   []string `yaml:"to" json:"to"`
}

// inputCount returns the number of input ports of the element.
func (e ElementSpec) inputCount() int {
	switch e.Kind {
	case KindInput:
		return 0
	case KindOutput:
		return 1
	case KindBuf, KindNot:
		if e.Inputs == 0 {
			return 1
		}
		return e.Inputs
	default:
		if e.Inputs == 0 {
			return 2
		}
		return e.Inputs
	}
}

// hasOutput reports whether the element drives an "out" port.
func (e ElementSpec) hasOutput() bool {
	return e.Kind != KindOutput
}

// inputPort returns the name of the i-th input port.
func (e ElementSpec) inputPort(i int) string {
	if e.Kind == KindOutput {
		return "in"
	}
	return fmt.Sprintf("in%d", i)
}
