package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIndex(t *testing.T) {
	out, err := execute(t, "render", "People/Count", sampleSpecs)
	require.NoError(t, err)

	assert.Contains(t, out, "index People/Count")
	assert.Contains(t, out, "map[0]:\n  docs.Persons.Select(person => new {Name = person.Firstname, Count = 1})")
	assert.Contains(t, out, "reduce:\n  results.GroupBy(personResult => personResult.Name)")
}

func TestRenderField(t *testing.T) {
	out, err := execute(t, "render", "PersonNames", sampleSpecs, "--field", "transform")
	require.NoError(t, err)
	assert.Equal(t, "results.Select(person => new {First = person.Firstname, Last = person.Lastname})\n", out)

	_, err = execute(t, "render", "PersonNames", sampleSpecs, "--field", "reduce")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PersonNames has no reduce")
}

func TestRenderJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "render", "Companies/ByPets", sampleSpecs)
	require.NoError(t, err)

	var resp struct {
		Data Rendered `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "index", resp.Data.Kind)
	assert.Len(t, resp.Data.Fingerprint, 64)
	require.Len(t, resp.Data.Fields, 1)
	assert.Contains(t, resp.Data.Fields[0].Text, "SelectMany(transId_1 => transId_1.Person.Pets")
}

func TestRenderUnknownName(t *testing.T) {
	_, err := execute(t, "render", "Nope", sampleSpecs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no index or transformer named "Nope"`)
}
