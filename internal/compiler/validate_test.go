package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/idxc/internal/indexdef"
)

func TestValidateIndex(t *testing.T) {
	tests := []struct {
		name  string
		def   indexdef.IndexDefinition
		codes []string
	}{
		{
			name: "valid",
			def: indexdef.IndexDefinition{
				Name:        "Companies/ByName",
				Maps:        []string{"docs.Companies"},
				Indexes:     map[string]indexdef.FieldIndexing{"Name": indexdef.IndexingAnalyzed},
				Analyzers:   map[string]string{"Name": "StandardAnalyzer"},
				SortOptions: map[string]indexdef.SortOptions{"Name": indexdef.SortString},
			},
		},
		{
			name:  "bad name",
			def:   indexdef.IndexDefinition{Name: "has space", Maps: []string{"docs.X"}},
			codes: []string{ErrInvalidIndexName},
		},
		{
			name:  "empty map",
			def:   indexdef.IndexDefinition{Name: "X", Maps: []string{" "}},
			codes: []string{ErrEmptyMap},
		},
		{
			name: "analyzer on not analyzed field",
			def: indexdef.IndexDefinition{
				Name:      "X",
				Maps:      []string{"docs.X"},
				Indexes:   map[string]indexdef.FieldIndexing{"Name": indexdef.IndexingNotAnalyzed},
				Analyzers: map[string]string{"Name": "StandardAnalyzer"},
			},
			codes: []string{ErrAnalyzerNotAnalyzed},
		},
		{
			name: "sort on unindexed field",
			def: indexdef.IndexDefinition{
				Name:        "X",
				Maps:        []string{"docs.X"},
				Indexes:     map[string]indexdef.FieldIndexing{"Age": indexdef.IndexingNo},
				SortOptions: map[string]indexdef.SortOptions{"Age": indexdef.SortInt},
			},
			codes: []string{ErrSortNotIndexed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateIndex(&tt.def)
			var codes []string
			for _, e := range errs {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	result := &LoadResult{
		Indexes:      []*indexdef.IndexDefinition{{Name: "People", Maps: []string{"docs.Persons"}}},
		Transformers: []*indexdef.TransformerDefinition{{Name: "People", TransformResults: "results"}},
	}

	errs := Validate(result)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, ErrDuplicateName, errs[0].Code)
		assert.Contains(t, errs[0].Error(), "transformer.People")
	}
}
