package indexdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition() *IndexDefinition {
	return &IndexDefinition{
		Name:        "Companies/ByName",
		Maps:        []string{"docs.Companies.Select(company => new {Name = company.Name})"},
		Stores:      map[string]FieldStorage{"Name": StorageYes},
		SortOptions: map[string]SortOptions{"Name": SortString},
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := MustFingerprint(sampleDefinition())
	b := MustFingerprint(sampleDefinition())

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "hex-encoded SHA-256")
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	base := MustFingerprint(sampleDefinition())

	tests := []struct {
		name   string
		mutate func(d *IndexDefinition)
	}{
		{"name", func(d *IndexDefinition) { d.Name = "Other" }},
		{"map text", func(d *IndexDefinition) { d.Maps[0] += ".Where(x => true)" }},
		{"extra map", func(d *IndexDefinition) { d.Maps = append(d.Maps, "docs.Pets") }},
		{"reduce", func(d *IndexDefinition) { d.Reduce = "results" }},
		{"store option", func(d *IndexDefinition) { d.Stores["Name"] = StorageNo }},
		{"analyzer", func(d *IndexDefinition) { d.Analyzers = map[string]string{"Name": "Keyword"} }},
		{"decomposed map text", func(d *IndexDefinition) { d.Maps[0] += ".Where(x => x == \"e\u0301\")" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDefinition()
			tt.mutate(d)
			assert.NotEqual(t, base, MustFingerprint(d))
		})
	}
}

func TestFingerprint_NormalizationFormsDiffer(t *testing.T) {
	composed := sampleDefinition()
	composed.Maps[0] = "docs.Companies.Where(company => company.Name == \"caf\u00e9\")"
	decomposed := sampleDefinition()
	decomposed.Maps[0] = "docs.Companies.Where(company => company.Name == \"cafe\u0301\")"

	assert.NotEqual(t, MustFingerprint(composed), MustFingerprint(decomposed),
		"fingerprints cover the exact body bytes")
}

func TestFingerprint_EmptyOptionMapsIgnored(t *testing.T) {
	d := sampleDefinition()
	with := MustFingerprint(d)

	d.Indexes = map[string]FieldIndexing{}
	assert.Equal(t, with, MustFingerprint(d))
}

func TestFingerprint_DomainSeparation(t *testing.T) {
	idx := &IndexDefinition{Name: "X", Maps: []string{"docs.X"}}
	tr := &TransformerDefinition{Name: "X", TransformResults: "docs.X"}

	idxFP, err := Fingerprint(idx)
	require.NoError(t, err)
	trFP, err := TransformerFingerprint(tr)
	require.NoError(t, err)

	assert.NotEqual(t, idxFP, trFP)
}

func TestHashWithDomain_NullSeparator(t *testing.T) {
	// "ab" + 0x00 + "c" must differ from "a" + 0x00 + "bc".
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestCanonicalJSON(t *testing.T) {
	got, err := CanonicalJSON(sampleDefinition())
	require.NoError(t, err)
	assert.Equal(t,
		`{"Maps":["docs.Companies.Select(company => new {Name = company.Name})"],"Name":"Companies/ByName","SortOptions":{"Name":"String"},"Stores":{"Name":"Yes"}}`,
		string(got))

	got, err = TransformerCanonicalJSON(&TransformerDefinition{Name: "T", TransformResults: "results"})
	require.NoError(t, err)
	assert.Equal(t, `{"Name":"T","TransformResults":"results"}`, string(got))
}
