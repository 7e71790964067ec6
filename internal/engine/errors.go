package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a misuse or failure detected by the simulation.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Wave is the wave being processed, if any.
	Wave int64

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeReentrantRun indicates Run or Step was called from inside a
	// connector callback.
	ErrCodeReentrantRun RuntimeErrorCode = "REENTRANT_RUN"
)

// ErrReentrantRun is returned by Run and Step while a run is in progress.
var ErrReentrantRun = &RuntimeError{
	Code:    ErrCodeReentrantRun,
	Message: "simulation is already running",
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Wave > 0 {
		return fmt.Sprintf("%s: %s (wave=%d)", e.Code, e.Message, e.Wave)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsReentrantError returns true if err reports a re-entrant Run or Step.
func IsReentrantError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeReentrantRun
	}
	return false
}
