package store

import (
	"context"

	"github.com/roach88/logicsim/internal/engine"
)

// Recorder is an engine.Observer that buffers a simulation's events and
// writes them to the store in one transaction on Flush.
//
// Observe never touches the database, so the wave loop is not slowed by
// disk I/O. Call Flush after each Run, from the goroutine driving the
// simulation: a Recorder is not safe for concurrent use.
type Recorder struct {
	store   *Store
	runID   string
	pending []engine.Event
	written int
}

// NewRecorder creates a recorder appending to the given run. The run must
// have been written with WriteRun before the first Flush.
func NewRecorder(s *Store, runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// Observe implements engine.Observer.
func (r *Recorder) Observe(ev engine.Event) {
	r.pending = append(r.pending, ev)
}

// Flush writes all buffered events. On error the buffer is kept, so a
// later Flush retries the same events.
func (r *Recorder) Flush(ctx context.Context) error {
	if err := r.store.WriteEvents(ctx, r.runID, r.pending); err != nil {
		return err
	}
	r.written += len(r.pending)
	r.pending = r.pending[:0]
	return nil
}

// RunID returns the run the recorder appends to.
func (r *Recorder) RunID() string {
	return r.runID
}

// Pending returns the number of buffered events.
func (r *Recorder) Pending() int {
	return len(r.pending)
}

// Written returns the number of events flushed so far.
func (r *Recorder) Written() int {
	return r.written
}
