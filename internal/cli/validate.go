package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/logicsim/internal/netlist"
)

// ValidationError is one problem reported by validate.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Network    string            `json:"network,omitempty"`
	Elements   int               `json:"elements,omitempty"`
	Connectors int               `json:"connectors,omitempty"`
	Loops      []netlist.Loop    `json:"loops,omitempty"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <network>",
		Short: "Validate a network description",
		Long: `Validate a network description (.yaml, .yml or .cue) without simulating it.

Checks element kinds, wiring and ports, then reports feedback loops found
in the static wiring as warnings. Loops are legal: latches are built from
them, and the simulator freezes the ones that oscillate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	formatter.VerboseLog("Loading network %s", path)
	nw, loadErrors := LoadNetwork(path)
	if len(loadErrors) > 0 {
		errs := toValidationErrors(loadErrors)
		// a file that can't be read is a command error, a bad description
		// is a validation failure
		if errs[0].Code == ErrCodeNotFound || errs[0].Code == ErrCodeUnsupported {
			return outputValidateError(formatter, errs[0].Code, errs[0].Message, nil)
		}
		return outputValidationErrors(formatter, errs)
	}

	loops := nw.FeedbackLoops()
	formatter.VerboseLog("Found %d feedback loop(s)", len(loops))

	return outputValidateSuccess(formatter, ValidationResult{
		Valid:      true,
		Network:    nw.Name(),
		Elements:   len(nw.Elements()),
		Connectors: len(nw.Connectors()),
		Loops:      loops,
	})
}

func toValidationErrors(errs []error) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, err := range errs {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			out = append(out, ValidationError{
				Code:    loadErr.Code,
				Field:   loadErr.Field,
				Message: loadErr.Message,
				Line:    loadErr.Line(),
			})
			continue
		}
		out = append(out, ValidationError{Code: ErrCodeGeneric, Message: err.Error()})
	}
	return out
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	name := result.Network
	if name == "" {
		name = "network"
	}
	fmt.Fprintf(formatter.Writer, "%s %s valid (%d elements, %d connectors)\n", formatter.Mark(true), name, result.Elements, result.Connectors)
	for _, loop := range result.Loops {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", loop.Message)
	}
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		if err := formatter.Respond(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "%s Validation failed\n", formatter.Mark(false))
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
		}
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
