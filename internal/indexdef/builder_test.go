package indexdef

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idxc/internal/expr"
	"github.com/roach88/idxc/internal/linq"
	"github.com/roach88/idxc/internal/testutil"
)

func TestBuilder_MapReduce(t *testing.T) {
	s := testutil.NewSample()
	g := linq.NewGrouping("string")

	def, err := NewBuilder().
		Map(linq.FromType("Person").Select(expr.New().
			With("Name", s.Get(s.Person, "firstname")).
			With("Count", expr.Num(1)))).
		Reduce(linq.FromRoot("results").
			GroupBy(s.Get(s.PersonResult, "name")).
			Select(expr.New().
				With("Name", g.Key).
				With("Count", g.MustSum(s.Get(s.PersonResult, "count"))))).
		StorePath(s.Get(s.PersonResult, "name"), StorageYes).
		Index("Name", IndexingAnalyzed).
		Sort("Count", SortInt).
		Analyze("Name", "StandardAnalyzer").
		Build("People/Count")

	require.NoError(t, err)
	assert.Equal(t, "People/Count", def.Name)
	assert.Equal(t, []string{"docs.Persons.Select(person => new {Name = person.Firstname, Count = 1})"}, def.Maps)
	assert.Equal(t,
		"results.GroupBy(personResult => personResult.Name).Select(group => new {Name = group.Key, Count = group.Sum(personResult => personResult.Count)})",
		def.Reduce)
	assert.True(t, def.IsMapReduce())
	assert.Equal(t, map[string]FieldStorage{"Name": StorageYes}, def.Stores)
	assert.Equal(t, map[string]FieldIndexing{"Name": IndexingAnalyzed}, def.Indexes)
	assert.Equal(t, map[string]SortOptions{"Count": SortInt}, def.SortOptions)
	assert.Equal(t, map[string]string{"Name": "StandardAnalyzer"}, def.Analyzers)
}

func TestBuilder_MapRequired(t *testing.T) {
	_, err := NewBuilder().Reduce(Text("results")).Build("NoMap")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMapRequired)
}

func TestBuilder_DuplicateFieldKey(t *testing.T) {
	s := testutil.NewSample()

	tests := []struct {
		name string
		b    *Builder
	}{
		{"stores", NewBuilder().StorePath(s.Get(s.Person, "firstname"), StorageYes).Store("Firstname", StorageNo)},
		{"indexes", NewBuilder().IndexPath(s.Get(s.Person, "firstname"), IndexingNo).Index("Firstname", IndexingDefault)},
		{"sort options", NewBuilder().SortPath(s.Get(s.Person, "age"), SortInt).Sort("Age", SortLong)},
		{"analyzers", NewBuilder().AnalyzePath(s.Get(s.Person, "firstname"), "A").Analyze("Firstname", "B")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Map(Text("docs.Persons")).Build("Dup")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDuplicateField)
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestBuilder_PropagatesQueryErrors(t *testing.T) {
	s := testutil.NewSample()
	bad := linq.FromType("Company").SelectMany(s.Get(s.Company, "employees"), s.Get(s.Person, "age"))

	_, err := NewBuilder().Map(bad).Build("Bad")
	require.Error(t, err)
	assert.True(t, linq.IsNotARoot(err))
	assert.Contains(t, err.Error(), "index Bad: map[0]")
}

func TestBuilder_RootPathRejected(t *testing.T) {
	_, err := NewBuilder().
		Map(Text("docs.Persons")).
		StorePath(expr.NewRoot("person"), StorageYes).
		Build("RootKey")
	assert.Error(t, err)
}

func TestBuilder_Transformer(t *testing.T) {
	s := testutil.NewSample()

	def, err := NewBuilder().
		TransformResults(linq.FromRoot("results").Select(expr.New().With("Name", s.Get(s.Person, "firstname")))).
		BuildTransformer("PersonNames")
	require.NoError(t, err)
	assert.Equal(t, "results.Select(person => new {Name = person.Firstname})", def.TransformResults)

	_, err = NewBuilder().BuildTransformer("Empty")
	assert.ErrorIs(t, err, ErrTransformRequired)
}

func TestBuilder_NormalizesToNFC(t *testing.T) {
	build := func(word string) *IndexDefinition {
		def, err := NewBuilder().
			Map(Text("docs.Companies.Where(company => company.Name == \"" + word + "\")")).
			Analyze("Caf"+word[3:], "Standard"+word[3:]).
			Build("Companies/" + word)
		require.NoError(t, err)
		return def
	}

	composed := build("caf\u00e9")
	decomposed := build("cafe\u0301")

	assert.Equal(t, composed, decomposed)
	assert.Equal(t, "Companies/caf\u00e9", decomposed.Name)
	assert.Equal(t, MustFingerprint(composed), MustFingerprint(decomposed))

	tr, err := NewBuilder().TransformResults(Text("results.Select(r => \"cafe\u0301\")")).BuildTransformer("T")
	require.NoError(t, err)
	assert.Equal(t, "results.Select(r => \"caf\u00e9\")", tr.TransformResults)
}

func TestFieldKey(t *testing.T) {
	company := expr.NewRoot("company")

	tests := []struct {
		name string
		path *expr.Path
		want string
	}{
		{"single", company.Get("name"), "Name"},
		{"nested", company.Get("address").Get("city"), "Address_City"},
		{"list element skipped", company.Get("employees").At(0).Get("firstname"), "Employees_Firstname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FieldKey(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexDefinition_JSONWireForm(t *testing.T) {
	def := &IndexDefinition{
		Name:   "Companies/ByName",
		Maps:   []string{"docs.Companies.Select(company => new {Name = company.Name})"},
		Stores: map[string]FieldStorage{"Name": StorageYes},
	}

	data, err := json.Marshal(def)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"Name":"Companies/ByName","Maps":["docs.Companies.Select(company => new {Name = company.Name})"],"Stores":{"Name":"Yes"}}`,
		string(data))
}

func TestParseOptions(t *testing.T) {
	storage, err := ParseFieldStorage("yes")
	require.NoError(t, err)
	assert.Equal(t, StorageYes, storage)

	indexing, err := ParseFieldIndexing("not_analyzed")
	require.NoError(t, err)
	assert.Equal(t, IndexingNotAnalyzed, indexing)

	sort, err := ParseSortOptions("StringVal")
	require.NoError(t, err)
	assert.Equal(t, SortStringVal, sort)

	_, err = ParseFieldStorage("maybe")
	assert.Error(t, err)
	_, err = ParseSortOptions("decimal")
	assert.Error(t, err)
}
