package harness

import (
	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every event the simulation processed, in order.
	Trace []engine.Event `json:"trace"`

	// Steps records, per step, which part of the trace it produced.
	Steps []StepResult `json:"steps"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the state of every connector after the last step.
	Final map[logic.ConnectorID]logic.State `json:"final"`

	// Resolved lists the connectors frozen by the detector at the end.
	Resolved []logic.ConnectorID `json:"resolved"`

	// Waves is the number of waves processed over all steps.
	Waves int `json:"waves"`

	// RunID is set when the scenario was recorded to a store.
	RunID string `json:"run_id,omitempty"`
}

// StepResult describes one executed step.
type StepResult struct {
	Set        Inputs `json:"-"`
	Waves      int    `json:"waves"`
	FirstEvent int    `json:"first_event"` // index into Result.Trace
	Events     int    `json:"events"`
	Aborted    bool   `json:"aborted,omitempty"` // the run hit the wave bound
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []engine.Event{},
		Steps:    []StepResult{},
		Errors:   []string{},
		Final:    make(map[logic.ConnectorID]logic.State),
		Resolved: []logic.ConnectorID{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Observe implements engine.Observer by appending to the trace.
func (r *Result) Observe(ev engine.Event) {
	r.Trace = append(r.Trace, ev)
}

// StepTrace returns the events produced by step i.
func (r *Result) StepTrace(i int) []engine.Event {
	s := r.Steps[i]
	return r.Trace[s.FirstEvent : s.FirstEvent+s.Events]
}
