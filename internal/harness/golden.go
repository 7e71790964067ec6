package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/logicsim/internal/engine"
)

// FormatEvent renders one event as a single trace line:
//
//	#<seq> w<wave> <connector> <state> <kind> [(requested <state>)] [<- <cause>] [[not rendered]]
func FormatEvent(ev engine.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d w%d %s %s %s", ev.Seq, ev.Wave, ev.Connector, ev.State, ev.Kind)
	if ev.State != ev.Requested {
		fmt.Fprintf(&b, " (requested %s)", ev.Requested)
	}
	if ev.CausedBy != "" {
		fmt.Fprintf(&b, " <- %s", ev.CausedBy)
	}
	if !ev.Rendered && ev.Kind != engine.KindSkipped {
		b.WriteString(" [not rendered]")
	}
	return b.String()
}

// RenderTrace renders a result as the text stored in golden files: one
// header per step followed by that step's events, then the resolved
// connectors.
func RenderTrace(name string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)

	for i, step := range result.Steps {
		fmt.Fprintf(&b, "step %d:", i+1)
		for _, in := range step.Set {
			fmt.Fprintf(&b, " %s=%s", in.Name, in.State)
		}
		fmt.Fprintf(&b, " [waves=%d]\n", step.Waves)

		for _, ev := range result.StepTrace(i) {
			fmt.Fprintf(&b, "  %s\n", FormatEvent(ev))
		}
	}

	b.WriteString("resolved:")
	if len(result.Resolved) == 0 {
		b.WriteString(" none")
	}
	for _, id := range result.Resolved {
		fmt.Fprintf(&b, " %s", id)
	}
	b.WriteString("\n")

	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares the rendered trace against
// a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can make further checks, or an error if
// the scenario could not be executed. A trace that differs from the golden
// file fails the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, RenderTrace(name, result))
}
