// Package engine implements the wave-based propagation core of logicsim.
//
// The engine receives connector state changes, schedules them into discrete
// waves, applies them through a connector registry, and detects feedback
// loops so that propagation always terminates.
//
// ARCHITECTURE:
//
// Single-Threaded Wave Loop:
// A Simulation is driven by one goroutine. Applying a state to a connector
// may synchronously call back into the simulation (element logic reacting to
// its inputs), but those calls only ever enqueue into a later wave. The wave
// being iterated is never mutated, so no locking is involved.
//
// Wave Processing Flow:
//  1. NotifyChange appends a StateChange to wave current+1
//  2. Run advances the wave clock and takes the wave's changes
//  3. Each change passes the oscillation detector (skip, settle, freeze)
//  4. The change's cause is recorded in the predecessor graph
//  5. The state is rendered through the Registry; the Notifier handed to
//     the connector attributes follow-on changes to it
//  6. Run stops at the first wave number with nothing scheduled
//
// Causality:
// The predecessor graph records which connector caused which. A connector
// that is its own transitive predecessor is part of a feedback loop; from
// then on the detector tracks every state it takes. Seeing a state twice
// ends the loop: the connector keeps it if the loop only ever produced that
// one state, otherwise it is frozen to logic.Oscillating.
//
// Termination:
// Every loop is resolved within (distinct reachable states + 1) visits of
// its connectors. WaveQuota bounds each Run regardless, so a broken
// guarantee surfaces as a WaveLimitError instead of a hang.
package engine
