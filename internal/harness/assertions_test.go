package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
)

// oscillatorResult is a hand-built result shaped like a frozen
// oscillator: g.out cycled, went oscillating and was skipped once.
func oscillatorResult() *Result {
	r := NewResult()
	r.Trace = []engine.Event{
		{Seq: 1, Wave: 1, Connector: "en.out", Requested: logic.On, State: logic.On, Kind: engine.KindApplied, Rendered: true},
		{Seq: 2, Wave: 2, Connector: "g.out", Requested: logic.Off, State: logic.Off, CausedBy: "en.out", Kind: engine.KindApplied, Rendered: true},
		{Seq: 3, Wave: 3, Connector: "g.out", Requested: logic.On, State: logic.On, CausedBy: "g.out", Kind: engine.KindCycleDetected, Rendered: true},
		{Seq: 4, Wave: 4, Connector: "g.out", Requested: logic.Off, State: logic.Oscillating, CausedBy: "g.out", Kind: engine.KindOscillating, Rendered: true},
		{Seq: 5, Wave: 5, Connector: "g.out", Requested: logic.On, State: logic.On, CausedBy: "g.out", Kind: engine.KindSkipped},
	}
	r.Final = map[logic.ConnectorID]logic.State{
		"en.out": logic.On,
		"g.out":  logic.Oscillating,
		"q.in":   logic.Oscillating,
	}
	r.Resolved = []logic.ConnectorID{"g.out"}
	r.Waves = 5
	return r
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	failures := EvaluateAssertions(oscillatorResult(), []Assertion{
		{Type: AssertFinalState, Connector: "q.in", State: "oscillating"},
		{Type: AssertFinalState, Connector: "en.out", State: "1"},
		{Type: AssertResolved, Connector: "g.out"},
		{Type: AssertWaveCount, Max: 5},
		{Type: AssertTraceContains, Connector: "g.out", Kind: "cycle-detected"},
		{Type: AssertTraceContains, Kind: "skipped"},
		{Type: AssertTraceCount, Connector: "g.out", Count: 4},
		{Type: AssertTraceCount, Kind: "settled", Count: 0},
	})
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		contains  []string
	}{
		{
			name:      "final state differs",
			assertion: Assertion{Type: AssertFinalState, Connector: "q.in", State: "on"},
			contains:  []string{"Expected: q.in = on", "Actual: q.in = oscillating"},
		},
		{
			name:      "final state of unknown connector",
			assertion: Assertion{Type: AssertFinalState, Connector: "nope.out", State: "on"},
			contains:  []string{"connector not found"},
		},
		{
			name:      "not resolved",
			assertion: Assertion{Type: AssertResolved, Connector: "en.out"},
			contains:  []string{"Expected: en.out resolved", "resolved connectors: [g.out]"},
		},
		{
			name:      "too many waves",
			assertion: Assertion{Type: AssertWaveCount, Max: 4},
			contains:  []string{"at most 4 waves", "Actual: 5 waves"},
		},
		{
			name:      "missing event",
			assertion: Assertion{Type: AssertTraceContains, Connector: "en.out", Kind: "settled"},
			contains:  []string{"settled event for en.out", "not found in trace", "#1 w1 en.out on applied"},
		},
		{
			name:      "wrong count",
			assertion: Assertion{Type: AssertTraceCount, Kind: "oscillating", Count: 2},
			contains:  []string{"2 × any oscillating event", "1 occurrences", "#4 w4 g.out oscillating oscillating (requested off) <- g.out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(oscillatorResult(), []Assertion{
				{Type: AssertResolved, Connector: "g.out"},
				tt.assertion,
			})
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], "assertions[1]: Assertion failed: "+tt.assertion.Type)
			for _, s := range tt.contains {
				assert.Contains(t, failures[0], s)
			}
		})
	}
}

func TestEvaluateAssertion_ReturnsAssertionError(t *testing.T) {
	err := evaluateAssertion(oscillatorResult(), Assertion{Type: AssertFinalState, Connector: "g.out", State: "off"})
	require.Error(t, err)

	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, AssertFinalState, ae.Type)
	assert.Len(t, ae.Trace, 4, "every g.out event is attached")
}

func TestEvaluateAssertion_UnknownType(t *testing.T) {
	err := evaluateAssertion(NewResult(), Assertion{Type: "eventually"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown assertion type "eventually"`)
}

func TestFilterTrace(t *testing.T) {
	trace := oscillatorResult().Trace

	assert.Len(t, filterTrace(trace, "", ""), 5)
	assert.Len(t, filterTrace(trace, "g.out", ""), 4)
	assert.Len(t, filterTrace(trace, "", "applied"), 2)
	assert.Len(t, filterTrace(trace, "g.out", "applied"), 1)
	assert.Empty(t, filterTrace(trace, "q.in", ""))
}
