package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandMissingArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{}) // Missing the scenarios directory

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/scenarios"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTestCommandAllPass(t *testing.T) {
	dir := writeFixtures(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ half_adder")
	assert.Contains(t, output, "✓ gated_oscillator")
	assert.Contains(t, output, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, output, "✓ All scenarios passed")
}

func TestTestCommandFailureJSON(t *testing.T) {
	dir := writeFixtures(t)
	writeFile(t, filepath.Join(dir, "wrong_sum.yaml"), wrongScenario)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)

	// scenarios run in file name order
	require.Len(t, resp.Data.Scenarios, 3)
	assert.Equal(t, "gated_oscillator", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "missing", resp.Data.Scenarios[0].Golden)
	assert.Equal(t, "half_adder", resp.Data.Scenarios[1].Name)
	assert.Equal(t, "match", resp.Data.Scenarios[1].Golden)
	assert.Equal(t, "wrong_sum", resp.Data.Scenarios[2].Name)
	assert.False(t, resp.Data.Scenarios[2].Pass)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := writeFixtures(t)
	writeFile(t, filepath.Join(dir, "golden", "half_adder.golden"), "scenario: half_adder\nresolved: none\n")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--filter", "half_*", dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ half_adder")
	assert.Contains(t, buf.String(), "trace does not match golden file")
}

func TestTestCommandUpdateGolden(t *testing.T) {
	dir := writeFixtures(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--update", "--filter", "gated_*", dir})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ gated_oscillator (golden updated)")
	assert.Contains(t, buf.String(), "Test Summary: 1 passed, 0 failed, 1 total")

	data, err := os.ReadFile(filepath.Join(dir, "golden", "gated_oscillator.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "scenario: gated_oscillator\n")
	assert.Contains(t, string(data), "resolved: g.out\n")

	// the new golden file is now enforced
	buf.Reset()
	cmd = NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--filter", "gated_*", dir})
	require.NoError(t, cmd.Execute())
}

func TestFindScenarioFiles(t *testing.T) {
	dir := writeFixtures(t)

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "gated_oscillator.yaml"),
		filepath.Join(dir, "half_adder.yaml"),
	}, files, "networks/ is not searched")

	files, err = findScenarioFiles(dir, "half*")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	files, err = findScenarioFiles(dir, "{half,gated}_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "sr_latch.golden"),
		goldenFilePath(filepath.Join("scenarios", "sr_latch.yaml")))
}
