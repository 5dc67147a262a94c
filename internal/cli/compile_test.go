package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idxc/internal/indexdef"
)

func TestCompileValidSpecs(t *testing.T) {
	outDir := t.TempDir()

	out, err := execute(t, "compile", sampleSpecs, "-o", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 2 index(es), 1 transformer(s)")
	assert.Contains(t, out, "Companies/ByPets: 1 map(s), map")
	assert.Contains(t, out, "People/Count: 1 map(s), map-reduce")
	assert.Contains(t, out, "PersonNames")
	assert.Contains(t, out, "Wrote 3 file(s)")
}

func TestCompileWritesSluggedFiles(t *testing.T) {
	outDir := t.TempDir()

	_, err := execute(t, "compile", sampleSpecs, "-o", outDir)
	require.NoError(t, err)

	for _, rel := range []string{
		"indexes/companies-bypets.json",
		"indexes/people-count.json",
		"transformers/personnames.json",
	} {
		_, err := os.Stat(filepath.Join(outDir, rel))
		assert.NoError(t, err, rel)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "indexes", "people-count.json"))
	require.NoError(t, err)

	var def indexdef.IndexDefinition
	require.NoError(t, json.Unmarshal(data, &def))
	assert.Equal(t, "People/Count", def.Name)
	assert.Equal(t, map[string]indexdef.SortOptions{"Count": indexdef.SortInt}, def.SortOptions)
	assert.True(t, def.IsMapReduce())
}

func TestCompileJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "compile", sampleSpecs, "--dry-run")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Indexes, 2)
	assert.Equal(t, "Companies/ByPets", resp.Data.Indexes[0].Name)
	assert.Len(t, resp.Data.Transformers, 1)
	assert.Empty(t, resp.Data.Files, "dry run writes nothing")
}

func TestCompileStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")

	out, err := execute(t, "compile", sampleSpecs, "--dry-run", "--store", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Stored 3 changed definition(s)")

	out, err = execute(t, "compile", sampleSpecs, "--dry-run", "--store", "--db", db)
	require.NoError(t, err)
	assert.NotContains(t, out, "Stored", "unchanged definitions are not stored again")
}

func TestCompileErrors(t *testing.T) {
	out, err := execute(t, "compile", brokenSpecs, "--dry-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "compilation failed with 2 error(s)")

	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "E101")
	assert.Contains(t, out, "E202")
	assert.Contains(t, out, "specs.cue:")
}

func TestCompileErrorsJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "compile", brokenSpecs, "--dry-run")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   []CLIError `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "E101", resp.Error.Code)
	assert.Equal(t, "E202", resp.Data[1].Code)
}

func TestCompileNonExistentDirectory(t *testing.T) {
	out, err := execute(t, "compile", "/nonexistent/directory/path", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestCompileEmptyDirectory(t *testing.T) {
	out, err := execute(t, "compile", t.TempDir(), "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no CUE files found")
}

func TestWriteDefinitions_SlugCollision(t *testing.T) {
	result := &CompilationResult{Indexes: []*indexdef.IndexDefinition{
		{Name: "Companies/ByName", Maps: []string{"docs.Companies"}},
		{Name: "Companies-ByName", Maps: []string{"docs.Companies"}},
	}}

	_, err := writeDefinitions(result, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both map to")
}
