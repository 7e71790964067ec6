// Package harness runs simulation scenarios and checks their outcome.
//
// A scenario loads a network description, applies batches of input
// changes, runs the simulation after each batch and asserts on the trace
// and the final connector states.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: sr_latch
//	description: "What this scenario validates"
//	network: ../networks/sr_latch.yaml   # relative to the scenario file
//	reset_policy: reset-resolved         # retain | reset-resolved | reset-all
//	max_waves: 100                       # per run; 0 = default, -1 = unlimited
//	steps:
//	  - set: {s: off, r: on}
//	    expect: {q.in: off}
//	  - set: {r: off}
//	assertions:
//	  - type: final_state
//	    connector: q.in
//	    state: off
//	  - type: trace_contains
//	    connector: n1.out
//	    kind: cycle-detected
//
// Inputs within one step are applied in the order written, so they land in
// the same wave in that order.
//
// # Assertion Types
//
//   - final_state: a connector ends in the given state
//   - resolved: a connector's feedback loop was frozen
//   - wave_count: the scenario processed at most max waves in total
//   - trace_contains: some event matches connector and/or kind
//   - trace_count: exactly count events match connector and/or kind
//
// # Deterministic Testing
//
// Every scenario runs against a fresh network and simulation. Event seq and
// wave numbers are logical, so traces are identical across runs and can be
// compared with golden files (see RunWithGolden).
package harness
