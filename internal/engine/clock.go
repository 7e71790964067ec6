package engine

import "sync/atomic"

// Clock is a monotonic logical counter.
//
// The simulation keeps two clocks: one numbers waves, the other stamps
// every observed event with a strictly increasing seq. Neither is ever
// reset, so wave and seq numbers stay unique for the lifetime of a
// Simulation.
//
// Clock is safe for concurrent use on its own and does not lean on the
// Simulation's single-goroutine contract.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next value and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current value without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
