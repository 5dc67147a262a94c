package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/pets_by_kind.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
}

func TestSnapshot_CompileErrors(t *testing.T) {
	result := NewResult()
	result.CompileErrors = []CompileFailure{{Code: "E202", Message: "boom"}}

	m := (&Snapshot{ScenarioName: "s", Result: result}).toCanonicalMap()
	assert.Equal(t, []any{map[string]any{"code": "E202", "message": "boom"}}, m["compile_errors"])
	assert.Equal(t, []any{}, m["indexes"])
}
