package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
	"github.com/roach88/logicsim/internal/netlist"
	"github.com/roach88/logicsim/internal/store"
)

// Option configures a scenario run.
type Option func(*config)

type config struct {
	ctx    context.Context
	store  *store.Store
	ids    store.IDGenerator
	logger *slog.Logger
}

// WithContext sets the context passed to every simulation run.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithStore records the scenario's trace into st as a new run.
func WithStore(st *store.Store) Option {
	return func(c *config) {
		c.store = st
	}
}

// WithIDGenerator sets the generator for run IDs when recording and the
// scenario has no fixed run_id. Default: store.UUIDv7Generator.
func WithIDGenerator(g store.IDGenerator) Option {
	return func(c *config) {
		c.ids = g
	}
}

// WithLogger sets the logger handed to the simulation. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load and build the network
// 2. Create a simulation with the scenario's reset policy and wave bound
// 3. For each step: set inputs, run, check step expectations
// 4. Evaluate assertions against the trace and final states
//
// A returned error means the scenario could not be executed (bad network,
// unknown input). Failed expectations, failed assertions and a tripped
// wave bound are reported in Result.Errors instead.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{
		ctx:    context.Background(),
		ids:    store.UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx := cfg.ctx

	desc, err := netlist.LoadFile(scenario.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}
	nw, err := netlist.Build(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to build network: %w", err)
	}

	policy, err := engine.ParseResetPolicy(scenario.ResetPolicy)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	simOpts := []engine.Option{
		engine.WithResetPolicy(policy),
		engine.WithLogger(cfg.logger),
		engine.WithObserver(result),
	}
	if scenario.MaxWaves != 0 {
		simOpts = append(simOpts, engine.WithMaxWaves(scenario.MaxWaves))
	}

	var rec *store.Recorder
	if cfg.store != nil {
		runID := scenario.RunID
		if runID == "" {
			runID = cfg.ids.Generate()
		}
		run := store.Run{
			ID:          runID,
			Name:        scenario.Name,
			Network:     scenario.Network,
			ResetPolicy: policy.String(),
		}
		if err := cfg.store.WriteRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		rec = store.NewRecorder(cfg.store, runID)
		simOpts = append(simOpts, engine.WithObserver(rec))
		result.RunID = runID
	}

	sim := engine.New(nw, simOpts...)

	for i, step := range scenario.Steps {
		for _, in := range step.Set {
			if err := nw.SetInput(in.Name, in.State, sim); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		first := len(result.Trace)
		runErr := sim.Run(ctx)
		waves := sim.Stats().LastWaves
		result.Waves += waves
		result.Steps = append(result.Steps, StepResult{
			Set:        step.Set,
			Waves:      waves,
			FirstEvent: first,
			Events:     len(result.Trace) - first,
		})

		if rec != nil {
			if err := rec.Flush(ctx); err != nil {
				return nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		if runErr != nil {
			if !engine.IsWaveLimitError(runErr) {
				return nil, fmt.Errorf("step %d: %w", i+1, runErr)
			}
			// the network never settled; later steps would start from
			// a half-propagated state
			result.Steps[len(result.Steps)-1].Aborted = true
			result.AddError(fmt.Sprintf("step %d: %v", i+1, runErr))
			break
		}

		for _, name := range sortedKeys(step.Expect) {
			want := step.Expect[name]
			got, ok := nw.State(logic.NewConnectorID(name))
			switch {
			case !ok:
				result.AddError(fmt.Sprintf("step %d: connector %s not found", i+1, name))
			case got != want:
				result.AddError(fmt.Sprintf("step %d: %s = %s, expected %s", i+1, name, got, want))
			}
		}

		cfg.logger.Info("scenario step completed",
			"scenario", scenario.Name,
			"step", i+1,
			"waves", waves,
			"events", len(result.Trace)-first)
	}

	result.Final = nw.States()
	result.Resolved = sim.Detector().Resolved()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}
