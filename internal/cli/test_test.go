package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// copyScenario copies a scenario file into dir, pointing its specs at the
// absolute path of specs.
func copyScenario(t *testing.T, dir, name, specs string) {
	t.Helper()

	abs, err := filepath.Abs(specs)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)

	content := strings.Replace(string(data), "specs: ../specs/invalid", "specs: "+abs, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandPassing(t *testing.T) {
	out, err := execute(t, "test", "testdata/scenarios", "--filter", "pets")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ pets")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandFailing(t *testing.T) {
	out, err := execute(t, "test", "testdata/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "Expected: 3 indexes")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", "testdata/scenarios")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "pets", invalidSpecs)

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ pets (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "pets.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"pets"`)

	_, err = execute(t, "test", dir)
	require.NoError(t, err, "the fresh golden file matches")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "pets.golden"), []byte("{}"), 0o644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "do not match golden file")
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := findScenarioFiles("testdata/scenarios", "")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = findScenarioFiles("testdata/scenarios", "w*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "scenarios", "wrong.yaml")}, files)

	_, err = findScenarioFiles("testdata/scenarios", "[")
	assert.Error(t, err)
}
