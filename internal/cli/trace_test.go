package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/logicsim/internal/engine"
	"github.com/roach88/logicsim/internal/logic"
	"github.com/roach88/logicsim/internal/store"
)

// recordOscillator runs the gated oscillator scenario into a fresh
// database as run "osc-run" and returns the database path.
func recordOscillator(t *testing.T) string {
	t.Helper()
	dir := writeFixtures(t)
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, filepath.Join(dir, "gated_oscillator.yaml")})
	require.NoError(t, cmd.Execute())

	return dbPath
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"--run", "osc-run"}) // Missing --db flag

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceNonExistentDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "missing.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}

func TestTraceListRuns(t *testing.T) {
	dbPath := recordOscillator(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "osc-run  gated_oscillator  (retain)\n", buf.String())
}

func TestTraceListRunsEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No runs recorded.")
}

func TestTraceUnknownRun(t *testing.T) {
	dbPath := recordOscillator(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found: nope")
}

func TestTraceText(t *testing.T) {
	dbPath := recordOscillator(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "osc-run"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Trace for Run: osc-run")
	assert.Contains(t, output, "Scenario: gated_oscillator")
	assert.Contains(t, output, "  #1 w1 en.out off applied\n")
	assert.Contains(t, output, "  #7 w8 g.out oscillating oscillating (requested on) <- g.out\n")
	assert.Contains(t, output, "  en.out -> g.out (x2)\n")
	assert.Contains(t, output, "  g.out -> g.out (x4)\n")
	assert.Contains(t, output, "  Total Events: 8\n")
	assert.Contains(t, output, "  Waves:        8\n")
	assert.Contains(t, output, "  By Kind:      applied=4, cycle-detected=1, exploring=1, oscillating=1, skipped=1\n")
	assert.Contains(t, output, "  Resolved:     g.out\n")
}

func TestTraceConnectorFilterJSON(t *testing.T) {
	dbPath := recordOscillator(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "osc-run", "--connector", "en.out"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string      `json:"status"`
		RunID  string      `json:"run_id"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "osc-run", resp.RunID)
	assert.Equal(t, logic.ConnectorID("en.out"), resp.Data.Connector)

	require.Len(t, resp.Data.Timeline, 2)
	for _, ev := range resp.Data.Timeline {
		assert.Equal(t, logic.ConnectorID("en.out"), ev.Connector)
	}
	assert.Empty(t, resp.Data.Provenance, "external changes have no cause")

	// stats always cover the whole run
	assert.Equal(t, 8, resp.Data.Stats.Events)
	assert.Equal(t, logic.Oscillating, resp.Data.Stats.Final["g.out"])
}

func TestBuildProvenance(t *testing.T) {
	events := []engine.Event{
		{Seq: 1, Connector: "a.out"},
		{Seq: 2, Connector: "b.out", CausedBy: "a.out"},
		{Seq: 3, Connector: "c.out", CausedBy: "b.out"},
		{Seq: 4, Connector: "b.out", CausedBy: "a.out"},
	}

	assert.Equal(t, []ProvenanceEdge{
		{From: "a.out", To: "b.out", Count: 2},
		{From: "b.out", To: "c.out", Count: 1},
	}, buildProvenance(events))
	assert.Empty(t, buildProvenance(nil))
}

func TestFormatKinds(t *testing.T) {
	assert.Equal(t, "none", formatKinds(nil))
	assert.Equal(t, "applied=2, skipped=1", formatKinds(map[engine.EventKind]int{
		engine.KindSkipped: 1,
		engine.KindApplied: 2,
	}))
}
