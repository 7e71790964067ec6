package engine

// waveSchedule maps wave numbers to the changes scheduled for them.
//
// Waves are removed as soon as they are taken, so memory is bounded by the
// number of waves still pending (in practice one: the next wave).
type waveSchedule struct {
	waves   map[int64][]StateChange
	pending int // total changes across all waves
}

func newWaveSchedule() *waveSchedule {
	return &waveSchedule{
		waves: make(map[int64][]StateChange),
	}
}

// Add appends a change to the given wave, creating the wave if needed.
// Order within a wave is the order of Add calls.
func (w *waveSchedule) Add(wave int64, c StateChange) {
	w.waves[wave] = append(w.waves[wave], c)
	w.pending++
}

// Has reports whether anything is scheduled for the wave.
func (w *waveSchedule) Has(wave int64) bool {
	_, ok := w.waves[wave]
	return ok
}

// Take removes and returns the wave's changes.
// Returns (nil, false) if nothing is scheduled for it.
func (w *waveSchedule) Take(wave int64) ([]StateChange, bool) {
	changes, ok := w.waves[wave]
	if !ok {
		return nil, false
	}
	delete(w.waves, wave)
	w.pending -= len(changes)
	return changes, true
}

// Pending returns the number of scheduled changes across all waves.
func (w *waveSchedule) Pending() int {
	return w.pending
}

// Waves returns the number of waves with scheduled changes.
func (w *waveSchedule) Waves() int {
	return len(w.waves)
}

// Clear drops everything that is scheduled.
func (w *waveSchedule) Clear() {
	clear(w.waves)
	w.pending = 0
}
