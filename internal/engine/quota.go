package engine

import (
	"errors"
	"fmt"
)

// WaveQuota counts the waves processed by one Run (or one run of Steps)
// and enforces a maximum.
//
// Loop resolution already guarantees termination; the quota exists so that
// a bug in element logic (say, a loop that keeps producing fresh states)
// fails loudly instead of hanging the caller.
type WaveQuota struct {
	maxWaves int // <= 0 disables the limit
	current  int
}

// NewWaveQuota creates a quota with the given limit. A limit <= 0 disables it.
func NewWaveQuota(maxWaves int) *WaveQuota {
	return &WaveQuota{maxWaves: maxWaves}
}

// Check counts one more wave and validates against the limit.
// wave is only used to annotate the error.
func (q *WaveQuota) Check(wave int64) error {
	q.current++
	if q.maxWaves > 0 && q.current > q.maxWaves {
		return &WaveLimitError{
			Wave:  wave,
			Waves: q.current,
			Limit: q.maxWaves,
		}
	}
	return nil
}

// Reset sets the counter back to 0. Called at the start of every Run and
// of every run of Steps.
func (q *WaveQuota) Reset() {
	q.current = 0
}

// Current returns the number of waves counted since the last Reset.
func (q *WaveQuota) Current() int {
	return q.current
}

// MaxWaves returns the configured limit.
func (q *WaveQuota) MaxWaves() int {
	return q.maxWaves
}

// WaveLimitError is returned by Run or Step when a single run processes
// more waves than the configured limit. It signals a broken termination
// guarantee and should be treated as fatal.
type WaveLimitError struct {
	Wave  int64 // Wave number that tripped the limit
	Waves int   // Waves processed in the run, including Wave
	Limit int
}

// Error implements the error interface.
func (e *WaveLimitError) Error() string {
	return fmt.Sprintf("run exceeded wave limit at wave %d: %d waves > %d limit",
		e.Wave, e.Waves, e.Limit)
}

// IsWaveLimitError returns true if err is a WaveLimitError.
// Uses errors.As to handle wrapped errors.
func IsWaveLimitError(err error) bool {
	var we *WaveLimitError
	return errors.As(err, &we)
}
