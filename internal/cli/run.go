package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/harness"
	"github.com/roach88/logicsim/internal/logic"
	"github.com/roach88/logicsim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database    string
	MaxWaves    int
	ResetPolicy string

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	Scenario string                            `json:"scenario"`
	Pass     bool                              `json:"pass"`
	Steps    int                               `json:"steps"`
	Waves    int                               `json:"waves"`
	Events   int                               `json:"events"`
	Final    map[logic.ConnectorID]logic.State `json:"final"`
	Resolved []logic.ConnectorID               `json:"resolved"`
	Errors   []string                          `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Simulate a scenario and print its trace",
		Long: `Simulate a scenario: load its network, apply each step's input edits and
run the simulation until it settles, then check the scenario's expectations.

With --db the trace is also recorded to a SQLite database (created if it
doesn't exist) and can be inspected later with the trace command.

Example:
  logicsim run ./scenarios/sr_latch.yaml
  logicsim run --db ./logicsim.db ./scenarios/sr_latch.yaml --verbose
  logicsim run --reset-policy reset-resolved --max-waves 100 ./scenarios/sr_latch.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioCommand(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to record the trace in")
	cmd.Flags().IntVar(&opts.MaxWaves, "max-waves", 0, "wave bound per run, overrides the scenario (negative disables)")
	cmd.Flags().StringVar(&opts.ResetPolicy, "reset-policy", "", "retain, reset-resolved or reset-all, overrides the scenario")

	return cmd
}

func runScenarioCommand(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out.ErrWriter, &slog.HandlerOptions{
		Level: logLevel,
	}))

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	if cmd.Flags().Changed("max-waves") {
		scenario.MaxWaves = opts.MaxWaves
	}
	if opts.ResetPolicy != "" {
		if _, err := engine.ParseResetPolicy(opts.ResetPolicy); err != nil {
			return WrapExitError(ExitCommandError, "invalid --reset-policy", err)
		}
		scenario.ResetPolicy = opts.ResetPolicy
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	harnessOpts := []harness.Option{
		harness.WithContext(ctx),
		harness.WithLogger(logger),
	}

	if opts.Database != "" {
		logger.Debug("opening database", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		ids := opts.IDGenerator
		if ids == nil {
			ids = store.UUIDv7Generator{}
		}
		harnessOpts = append(harnessOpts, harness.WithStore(st), harness.WithIDGenerator(ids))
	}

	logger.Info("running scenario", "scenario", scenario.Name, "network", scenario.Network)
	result, err := harness.Run(scenario, harnessOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}
	logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"waves", result.Waves,
		"events", len(result.Trace))

	if out.JSON() {
		return outputRunJSON(out, scenario, result)
	}
	return outputRunText(out, scenario, result)
}

func outputRunJSON(out *OutputFormatter, scenario *harness.Scenario, result *harness.Result) error {
	response := CLIResponse{
		Status: "ok",
		Data: RunOutput{
			Scenario: scenario.Name,
			Pass:     result.Pass,
			Steps:    len(result.Steps),
			Waves:    result.Waves,
			Events:   len(result.Trace),
			Final:    result.Final,
			Resolved: result.Resolved,
			Errors:   result.Errors,
		},
		RunID: result.RunID,
	}
	if !result.Pass {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    scenarioErrorCode(result),
			Message: result.Errors[0],
		}
	}

	if err := out.Respond(response); err != nil {
		return err
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func outputRunText(out *OutputFormatter, scenario *harness.Scenario, result *harness.Result) error {
	w := out.Writer

	if _, err := w.Write(harness.RenderTrace(scenario.Name, result)); err != nil {
		return err
	}
	if result.RunID != "" {
		fmt.Fprintf(w, "run: %s\n", result.RunID)
	}
	fmt.Fprintln(w)

	if !result.Pass {
		fmt.Fprintf(w, "%s %s failed\n", out.Mark(false), scenario.Name)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}

	fmt.Fprintf(w, "%s %s passed (%d waves, %d events)\n", out.Mark(true), scenario.Name, result.Waves, len(result.Trace))
	return nil
}

// scenarioErrorCode distinguishes a run that hit the wave bound from
// failed expectations.
func scenarioErrorCode(result *harness.Result) string {
	for _, s := range result.Steps {
		if s.Aborted {
			return ErrCodeSimulation
		}
	}
	return ErrCodeScenarioFailed
}
