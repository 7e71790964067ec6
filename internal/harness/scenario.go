package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
)

// Scenario defines a simulation test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Network is the path to the network description (.yaml or .cue).
	// LoadScenario resolves it relative to the scenario file.
	Network string `yaml:"network"`

	// ResetPolicy is the simulation's reset policy. Empty means "retain".
	ResetPolicy string `yaml:"reset_policy,omitempty"`

	// MaxWaves bounds every run. 0 keeps engine.DefaultMaxWaves, a negative
	// value disables the bound.
	MaxWaves int `yaml:"max_waves,omitempty"`

	// RunID is a fixed run ID used when the scenario is recorded to a store.
	// If empty, a UUIDv7 is generated.
	RunID string `yaml:"run_id,omitempty"`

	// Steps are applied in order. Each step sets inputs and runs the
	// simulation until it is quiescent.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one batch of input edits followed by a simulation run.
type Step struct {
	// Set assigns states to input elements, in the order written.
	Set Inputs `yaml:"set"`

	// Expect checks connector states right after this step's run.
	Expect map[string]logic.State `yaml:"expect,omitempty"`
}

// Input is one input element assignment.
type Input struct {
	Name  string
	State logic.State
}

// Inputs is an ordered list of input assignments. In YAML it is written as
// a mapping; key order is preserved.
type Inputs []Input

// UnmarshalYAML implements yaml.Unmarshaler.
func (in *Inputs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: set must be a mapping of input to state", node.Line)
	}

	out := make(Inputs, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		var state logic.State
		if err := val.Decode(&state); err != nil {
			return fmt.Errorf("line %d: input %q: %w", val.Line, key.Value, err)
		}
		if seen[key.Value] {
			return fmt.Errorf("line %d: input %q set twice in one step", key.Line, key.Value)
		}
		seen[key.Value] = true
		out = append(out, Input{Name: key.Value, State: state})
	}

	*in = out
	return nil
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": Connector ends in State
	// - "resolved": Connector's loop was frozen by the detector
	// - "wave_count": At most Max waves were processed overall
	// - "trace_contains": Some event matches Connector and/or Kind
	// - "trace_count": Exactly Count events match Connector and/or Kind
	Type string `yaml:"type"`

	// Connector is the connector ID (final_state, resolved, trace_*).
	Connector string `yaml:"connector,omitempty"`

	// State is the expected state (final_state).
	State string `yaml:"state,omitempty"`

	// Kind is the expected event kind (trace_*).
	Kind string `yaml:"kind,omitempty"`

	// Max is the wave budget (wave_count).
	Max int `yaml:"max,omitempty"`

	// Count is the expected number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState    = "final_state"
	AssertResolved      = "resolved"
	AssertWaveCount     = "wave_count"
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
)

var eventKinds = map[engine.EventKind]bool{
	engine.KindApplied:       true,
	engine.KindSkipped:       true,
	engine.KindCycleDetected: true,
	engine.KindExploring:     true,
	engine.KindSettled:       true,
	engine.KindOscillating:   true,
}

// LoadScenario reads and parses a scenario YAML file.
// The network path is resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Network != "" && !filepath.IsAbs(scenario.Network) {
		scenario.Network = filepath.Join(filepath.Dir(path), scenario.Network)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if _, err := os.Stat(scenario.Network); os.IsNotExist(err) {
		return nil, fmt.Errorf("invalid scenario: network file not found: %s", scenario.Network)
	}

	return scenario, nil
}

// ParseScenario decodes a scenario without validating it or resolving
// its network path.
func ParseScenario(data []byte) (*Scenario, error) {
	// strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Network == "" {
		return fmt.Errorf("network is required")
	}

	if _, err := engine.ParseResetPolicy(s.ResetPolicy); err != nil {
		return err
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if len(step.Set) == 0 {
			return fmt.Errorf("steps[%d]: set is required and must be non-empty", i)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Kind != "" && !eventKinds[engine.EventKind(a.Kind)] {
		return fmt.Errorf("assertions[%d]: unknown event kind %q", index, a.Kind)
	}

	switch a.Type {
	case AssertFinalState:
		if a.Connector == "" {
			return fmt.Errorf("assertions[%d]: connector is required for final_state", index)
		}
		if _, err := logic.ParseState(a.State); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertResolved:
		if a.Connector == "" {
			return fmt.Errorf("assertions[%d]: connector is required for resolved", index)
		}
	case AssertWaveCount:
		if a.Max <= 0 {
			return fmt.Errorf("assertions[%d]: max must be positive for wave_count", index)
		}
	case AssertTraceContains:
		if a.Connector == "" && a.Kind == "" {
			return fmt.Errorf("assertions[%d]: connector or kind is required for trace_contains", index)
		}
	case AssertTraceCount:
		if a.Connector == "" && a.Kind == "" {
			return fmt.Errorf("assertions[%d]: connector or kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
