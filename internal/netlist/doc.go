// Package netlist is a reference element model for the simulation engine.
//
// A Network is built from a Description: elements (input switches, output
// probes and logic gates) joined by wires. Every element port is a
// connector named "<element>.<port>":
//
//	input   a.out
//	output  q.in
//	gates   g.in0 .. g.inN-1, g.out
//
// The network is the engine's connector registry. When the engine applies
// a state to an output connector, the state travels along its wires into
// input connectors; every element owning one of them recomputes its output
// and, if the value differs from what it last emitted, reports it through
// the engine.Notifier it was handed.
//
// Descriptions are loaded from YAML or CUE. CUE files are unified with an
// embedded schema before decoding.
package netlist
