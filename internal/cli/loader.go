package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue/token"

	"github.com/roach88/logicsim/internal/netlist"
)

// LoadError represents an error that occurred while loading a network.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Line returns the source line of the error, or 0 if unknown.
func (e *LoadError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeUnsupported = "E003" // Unsupported file extension
	ErrCodeParseFailed = "E004" // YAML or CUE parse failed
	ErrCodeInvalid     = "E005" // Network description invalid
	ErrCodeDatabase    = "E006" // Database open/read error
	ErrCodeWriteFailed = "E007" // File write error

	// Simulation errors
	ErrCodeSimulation     = "E101" // Run aborted (wave limit, cancellation)
	ErrCodeScenarioFailed = "E102" // Scenario expectations or assertions failed
)

// NetworkExtensions lists the file extensions LoadNetwork accepts.
var NetworkExtensions = []string{".yaml", ".yml", ".cue"}

// LoadNetwork loads, validates and builds a network description.
// On failure it returns every problem it found, each as a *LoadError.
func LoadNetwork(path string) (*netlist.Network, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("network file not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing network file: %v", err)}}
	}
	if info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}}
	}

	if !isNetworkFile(path) {
		return nil, []error{&LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported network file extension %q", filepath.Ext(path)),
		}}
	}

	desc, err := netlist.LoadFile(path)
	if err != nil {
		return nil, convertErrors(err, ErrCodeParseFailed)
	}

	nw, err := netlist.Build(desc)
	if err != nil {
		return nil, convertErrors(err, ErrCodeInvalid)
	}
	return nw, nil
}

func isNetworkFile(path string) bool {
	return slices.Contains(NetworkExtensions, filepath.Ext(path))
}

// convertErrors splits a joined error and converts every part to a
// LoadError. Description errors keep their field and CUE position.
func convertErrors(err error, code string) []error {
	parts := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts = joined.Unwrap()
	}

	out := make([]error, 0, len(parts))
	for _, part := range parts {
		var descErr *netlist.DescriptionError
		if errors.As(part, &descErr) {
			out = append(out, &LoadError{
				Code:    code,
				Field:   descErr.Field,
				Message: descErr.Message,
				Pos:     descErr.Pos,
			})
			continue
		}
		out = append(out, &LoadError{Code: code, Message: part.Error()})
	}
	return out
}
