package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Trace    []engine.Event // Events of the connector in question, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nRelevant trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", FormatEvent(ev))
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against a result and returns
// the failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalState:
		return assertFinalState(result, a)
	case AssertResolved:
		return assertResolved(result, a)
	case AssertWaveCount:
		return assertWaveCount(result, a)
	case AssertTraceContains:
		return assertTraceContains(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertFinalState checks the state a connector ended in.
func assertFinalState(result *Result, a Assertion) error {
	want, err := logic.ParseState(a.State)
	if err != nil {
		return err
	}

	id := logic.NewConnectorID(a.Connector)
	got, ok := result.Final[id]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", id, want),
			Actual:   "connector not found",
		}
	}
	if got != want {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", id, want),
			Actual:   fmt.Sprintf("%s = %s", id, got),
			Trace:    filterTrace(result.Trace, a.Connector, ""),
		}
	}
	return nil
}

// assertResolved checks that the detector froze a connector's loop.
func assertResolved(result *Result, a Assertion) error {
	id := logic.NewConnectorID(a.Connector)
	if slices.Contains(result.Resolved, id) {
		return nil
	}
	return &AssertionError{
		Type:     AssertResolved,
		Expected: fmt.Sprintf("%s resolved", id),
		Actual:   fmt.Sprintf("resolved connectors: %v", result.Resolved),
		Trace:    filterTrace(result.Trace, a.Connector, ""),
	}
}

// assertWaveCount checks the total number of waves against a budget.
func assertWaveCount(result *Result, a Assertion) error {
	if result.Waves <= a.Max {
		return nil
	}
	return &AssertionError{
		Type:     AssertWaveCount,
		Expected: fmt.Sprintf("at most %d waves", a.Max),
		Actual:   fmt.Sprintf("%d waves", result.Waves),
	}
}

// assertTraceContains checks that at least one event matches.
func assertTraceContains(trace []engine.Event, a Assertion) error {
	if len(filterTrace(trace, a.Connector, a.Kind)) > 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeMatch(a),
		Actual:   "not found in trace",
		Trace:    filterTrace(trace, a.Connector, ""),
	}
}

// assertTraceCount checks that exactly Count events match.
func assertTraceCount(trace []engine.Event, a Assertion) error {
	matched := filterTrace(trace, a.Connector, a.Kind)
	if len(matched) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d × %s", a.Count, describeMatch(a)),
		Actual:   fmt.Sprintf("%d occurrences", len(matched)),
		Trace:    matched,
	}
}

// filterTrace returns the events matching connector and kind. Empty
// arguments match anything.
func filterTrace(trace []engine.Event, connector, kind string) []engine.Event {
	id := logic.NewConnectorID(connector)
	var out []engine.Event
	for _, ev := range trace {
		if connector != "" && ev.Connector != id {
			continue
		}
		if kind != "" && ev.Kind != engine.EventKind(kind) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func describeMatch(a Assertion) string {
	switch {
	case a.Connector != "" && a.Kind != "":
		return fmt.Sprintf("%s event for %s", a.Kind, a.Connector)
	case a.Connector != "":
		return fmt.Sprintf("any event for %s", a.Connector)
	default:
		return fmt.Sprintf("any %s event", a.Kind)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
