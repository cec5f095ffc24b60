package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slayermass/stateform/internal/harness"
)

var scenariosDir = filepath.Join("testdata", "scenarios")

func TestTestCommandPassing(t *testing.T) {
	out, err := execute(t, NewTestCommand, "text", scenariosDir, "--filter", "signup")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ signup (no golden)")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFailing(t *testing.T) {
	out, err := execute(t, NewTestCommand, "text", scenariosDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failing")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandJSON(t *testing.T) {
	out, err := execute(t, NewTestCommand, "json", scenariosDir)
	require.Error(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   harness.SuiteResult `json:"data"`
		Error  *CLIError           `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTestCommandNoScenarios(t *testing.T) {
	out, err := execute(t, NewTestCommand, "text", scenariosDir, "--filter", "nothing-*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandMissingDirectory(t *testing.T) {
	_, err := execute(t, NewTestCommand, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandUpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, "signup.yaml", dir)

	out, err := execute(t, NewTestCommand, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")
	assert.FileExists(t, filepath.Join(dir, "scenarios", "golden", "signup.golden"))

	out, err = execute(t, NewTestCommand, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ signup\n")
}

func TestTestCommandRecordsJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, NewTestCommand, "text", scenariosDir, "--filter", "signup", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "[run ")
	assert.FileExists(t, db)
}

// copyScenario copies a scenario and the form it references into dir,
// keeping the relative form path valid.
func copyScenario(t *testing.T, name, dir string) {
	t.Helper()
	scenarios := filepath.Join(dir, "scenarios")
	forms := filepath.Join(dir, "forms", "valid")
	require.NoError(t, os.MkdirAll(scenarios, 0o755))
	require.NoError(t, os.MkdirAll(forms, 0o755))

	copyFile(t, filepath.Join(scenariosDir, name), filepath.Join(scenarios, name))
	copyFile(t, signupForm, filepath.Join(forms, "signup.cue"))
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}
