package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/harness"
	"github.com/roach88/logicsim/internal/logic"
	"github.com/roach88/logicsim/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database  string
	RunID     string
	Connector string // optional - filter to one connector
}

// ProvenanceEdge is a causal link seen in a trace: changes of From caused
// changes of To, Count times.
type ProvenanceEdge struct {
	From  logic.ConnectorID `json:"from"`
	To    logic.ConnectorID `json:"to"`
	Count int               `json:"count"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run        store.Run         `json:"run"`
	Timeline   []engine.Event    `json:"timeline"`
	Provenance []ProvenanceEdge  `json:"provenance"`
	Stats      store.RunSummary  `json:"stats"`
	Connector  logic.ConnectorID `json:"connector,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded simulation runs",
		Long: `Inspect runs recorded with "logicsim run --db".

Without --run, lists the recorded runs. With --run, shows the run's
timeline of processed changes, the causal links between connectors and
summary statistics: waves, events per kind, final states and the
connectors whose loops were frozen.

Examples:
  logicsim trace --db ./logicsim.db
  logicsim trace --db ./logicsim.db --run 0190a6b2-...
  logicsim trace --db ./logicsim.db --run 0190a6b2-... --connector n1.out
  logicsim trace --db ./logicsim.db --run 0190a6b2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to trace (lists runs if empty)")
	cmd.Flags().StringVar(&opts.Connector, "connector", "", "filter the timeline to one connector")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := newFormatter(opts.RootOptions, cmd)

	// Open would create a missing database
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		return listRuns(ctx, st, out)
	}

	summary, err := st.Summarize(ctx, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to summarize run", err)
	}

	var events []engine.Event
	if opts.Connector != "" {
		events, err = st.ReadConnectorEvents(ctx, opts.RunID, logic.NewConnectorID(opts.Connector))
	} else {
		events, err = st.ReadEvents(ctx, opts.RunID)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := TraceResult{
		Run:        summary.Run,
		Timeline:   events,
		Provenance: buildProvenance(events),
		Stats:      summary,
		Connector:  logic.NewConnectorID(opts.Connector),
	}

	if out.JSON() {
		return out.Respond(CLIResponse{Status: "ok", Data: result, RunID: result.Run.ID})
	}
	return outputTraceText(out, result)
}

func listRuns(ctx context.Context, st *store.Store, out *OutputFormatter) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if out.JSON() {
		return out.Success(runs)
	}

	w := out.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %s  (%s)\n", run.ID, run.Name, run.ResetPolicy)
	}
	return nil
}

// buildProvenance counts cause → effect pairs, in order of first
// appearance.
func buildProvenance(events []engine.Event) []ProvenanceEdge {
	type key struct{ from, to logic.ConnectorID }

	edges := []ProvenanceEdge{}
	index := make(map[key]int)
	for _, ev := range events {
		if ev.CausedBy == "" {
			continue
		}
		k := key{ev.CausedBy, ev.Connector}
		if i, ok := index[k]; ok {
			edges[i].Count++
			continue
		}
		index[k] = len(edges)
		edges = append(edges, ProvenanceEdge{From: ev.CausedBy, To: ev.Connector, Count: 1})
	}
	return edges
}

// outputTraceText outputs the trace result as text.
func outputTraceText(out *OutputFormatter, result TraceResult) error {
	w := out.Writer

	fmt.Fprintf(w, "Trace for Run: %s\n", result.Run.ID)
	fmt.Fprintf(w, "Scenario: %s\n", result.Run.Name)
	if out.Verbose && result.Run.Network != "" {
		fmt.Fprintf(w, "Network: %s\n", result.Run.Network)
	}
	fmt.Fprintf(w, "Reset Policy: %s\n", result.Run.ResetPolicy)
	fmt.Fprintln(w)

	// Timeline section
	if result.Connector != "" {
		fmt.Fprintf(w, "=== Timeline (%s) ===\n", result.Connector)
	} else {
		fmt.Fprintln(w, "=== Timeline ===")
	}
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "  %s\n", harness.FormatEvent(ev))
	}
	fmt.Fprintln(w)

	// Provenance section
	fmt.Fprintln(w, "=== Provenance ===")
	if len(result.Provenance) == 0 {
		fmt.Fprintln(w, "  (no causal relationships)")
	}
	for _, edge := range result.Provenance {
		fmt.Fprintf(w, "  %s -> %s (x%d)\n", edge.From, edge.To, edge.Count)
	}
	fmt.Fprintln(w)

	writeStats(w, result.Stats)
	return nil
}

func writeStats(w io.Writer, s store.RunSummary) {
	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", s.Events)
	fmt.Fprintf(w, "  Waves:        %d\n", s.Waves)
	fmt.Fprintf(w, "  By Kind:      %s\n", formatKinds(s.ByKind))
	fmt.Fprintf(w, "  Resolved:     %s\n", formatIDs(s.Resolved))
}

// formatKinds formats event counts with sorted keys for deterministic
// output.
func formatKinds(byKind map[engine.EventKind]int) string {
	if len(byKind) == 0 {
		return "none"
	}
	kinds := make([]engine.EventKind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, byKind[k])
	}
	return strings.Join(parts, ", ")
}

func formatIDs(ids []logic.ConnectorID) string {
	if len(ids) == 0 {
		return "none"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
