package logic

import (
	"fmt"
	"strings"
)

// State is a signal value carried by a connector.
//
// States only support equality. Oscillating is reserved for connectors
// whose feedback loop was frozen by the simulator; element logic may pass
// it through but never produces it from binary inputs.
type State int

const (
	// Unknown is the state of a connector that was never driven.
	Unknown State = iota
	// Off is logical zero.
	Off
	// On is logical one.
	On
	// Oscillating marks an unresolvable feedback loop.
	Oscillating
)

var stateNames = [...]string{
	Unknown:     "unknown",
	Off:         "off",
	On:          "on",
	Oscillating: "oscillating",
}

// stateAliases maps accepted spellings to states. Keys are lower case.
var stateAliases = map[string]State{
	"unknown":     Unknown,
	"x":           Unknown,
	"off":         Off,
	"0":           Off,
	"lo":          Off,
	"low":         Off,
	"false":       Off,
	"on":          On,
	"1":           On,
	"hi":          On,
	"high":        On,
	"true":        On,
	"oscillating": Oscillating,
	"osc":         Oscillating,
}

// String returns the canonical lower-case name of the state.
func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	return s >= Unknown && s <= Oscillating
}

// IsBinary reports whether s is Off or On.
func (s State) IsBinary() bool {
	return s == Off || s == On
}

// ParseState parses a state name or alias, ignoring case and surrounding space.
func ParseState(text string) (State, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if st, ok := stateAliases[key]; ok {
		return st, nil
	}
	return Unknown, fmt.Errorf("invalid logic state %q", text)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid logic state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so states decode from
// YAML and JSON scalars.
func (s *State) UnmarshalText(text []byte) error {
	st, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
