package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const halfAdderNetwork = `name: half-adder
elements:
  - {id: a, kind: input}
  - {id: b, kind: input}
  - {id: sum, kind: xor}
  - {id: carry, kind: and}
  - {id: s, kind: output}
  - {id: c, kind: output}
wires:
  - {from: a.out, to: [sum.in0, carry.in0]}
  - {from: b.out, to: [sum.in1, carry.in1]}
  - {from: sum.out, to: [s.in]}
  - {from: carry.out, to: [c.in]}
`

const oscillatorNetwork = `network: {
	name: "gated-oscillator"
	elements: [
		{id: "en", kind: "input"},
		{id: "g", kind: "nand"},
		{id: "q", kind: "output"},
	]
	wires: [
		{from: "en.out", to: ["g.in0"]},
		{from: "g.out", to: ["g.in1", "q.in"]},
	]
}
`

const halfAdderScenario = `name: half_adder
description: "Acyclic network settles"
network: networks/half_adder.yaml
steps:
  - set: {a: off, b: off}
  - set: {a: on}
  - set: {b: on}
assertions:
  - type: final_state
    connector: c.in
    state: on
`

const halfAdderGolden = `scenario: half_adder
step 1: a=off b=off [waves=2]
  #1 w1 a.out off applied
  #2 w1 b.out off applied
  #3 w2 carry.out off applied <- a.out
  #4 w2 sum.out off applied <- b.out
step 2: a=on [waves=2]
  #5 w4 a.out on applied
  #6 w5 sum.out on applied <- a.out
step 3: b=on [waves=2]
  #7 w7 b.out on applied
  #8 w8 sum.out off applied <- b.out
  #9 w8 carry.out on applied <- b.out
resolved: none
`

const oscillatorScenario = `name: gated_oscillator
description: "Enabling a self-fed NAND oscillates and is frozen"
network: networks/gated_oscillator.cue
run_id: osc-run
steps:
  - set: {en: off}
  - set: {en: on}
assertions:
  - type: resolved
    connector: g.out
  - type: final_state
    connector: q.in
    state: oscillating
`

// wrongScenario expects a value the half adder never produces.
const wrongScenario = `name: wrong_sum
description: "Expects the wrong sum"
network: networks/half_adder.yaml
steps:
  - set: {a: on, b: on}
assertions:
  - type: final_state
    connector: s.in
    state: on
`

// writeFixtures lays out a scenario directory:
//
//	dir/networks/{half_adder.yaml,gated_oscillator.cue}
//	dir/{half_adder,gated_oscillator}.yaml
//	dir/golden/half_adder.golden
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "networks", "half_adder.yaml"), halfAdderNetwork)
	writeFile(t, filepath.Join(dir, "networks", "gated_oscillator.cue"), oscillatorNetwork)
	writeFile(t, filepath.Join(dir, "half_adder.yaml"), halfAdderScenario)
	writeFile(t, filepath.Join(dir, "gated_oscillator.yaml"), oscillatorScenario)
	writeFile(t, filepath.Join(dir, "golden", "half_adder.golden"), halfAdderGolden)

	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
