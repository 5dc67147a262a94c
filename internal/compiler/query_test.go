package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idxc/internal/linq"
	"github.com/roach88/idxc/internal/model"
)

func sampleModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()
	require.NoError(t, m.Define("Company", "name", "string", "address", "Address", "employees", "[]Person"))
	require.NoError(t, m.Define("Address", "city", "string"))
	require.NoError(t, m.Define("Person", "firstname", "string", "lastname", "string", "age", "int", "pets", "[]Pet"))
	require.NoError(t, m.Define("Pet", "name", "string"))
	require.NoError(t, m.Define("PersonResult", "name", "string", "count", "int"))
	require.NoError(t, m.Validate())
	return m
}

func compileQueryString(t *testing.T, src string, opts ...linq.Option) (string, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())

	q, err := CompileQuery(v.LookupPath(cue.ParsePath("q")), sampleModel(t), opts...)
	if err != nil {
		return "", err
	}
	return q.ToText()
}

func TestCompileQuery(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "select path",
			src:  `q: {from: "Company", query: [{select: "company.address.city"}]}`,
			want: "docs.Companies.Select(company => company.Address.City)",
		},
		{
			name: "custom variable",
			src:  `q: {from: "Company", as: "c", query: [{where: {eq: ["c.name", {value: "Acme"}]}}]}`,
			want: `docs.Companies.Where(c => c.Name == "Acme")`,
		},
		{
			name: "boolean operators keep precedence",
			src: `q: {from: "Person", query: [{where: {and: [
				{or: [{gte: ["person.age", 18]}, {eq: ["person.lastname", {value: "X"}]}]},
				{not: {endsWith: ["person.firstname", {value: "z"}]}},
			]}}]}`,
			want: `docs.Persons.Where(person => (person.Age >= 18 || person.Lastname == "X") && !person.Firstname.EndsWith("z"))`,
		},
		{
			name: "arithmetic",
			src:  `q: {from: "Person", query: [{select: {mul: [{add: ["person.age", 1]}, 2]}}]}`,
			want: "docs.Persons.Select(person => (person.Age + 1) * 2)",
		},
		{
			name: "literals",
			src:  `q: {from: "Person", query: [{select: {new: {A: {value: "x"}, B: 2.5, C: true, D: {value: 7}}}}]}`,
			want: `docs.Persons.Select(person => new {A = "x", B = 2.5, C = true, D = 7})`,
		},
		{
			name: "list element",
			src:  `q: {from: "Company", query: [{select: "company.employees.0.firstname"}]}`,
			want: "docs.Companies.Select(company => company.Employees[0].Firstname)",
		},
		{
			name: "contains",
			src:  `q: {from: "Person", query: [{where: {contains: ["person.lastname", {value: "son"}]}}]}`,
			want: `docs.Persons.Where(person => person.Lastname.Contains("son"))`,
		},
		{
			name: "order by",
			src:  `q: {from: "Person", query: [{orderBy: ["person.lastname", {desc: "person.age"}, {asc: "person.firstname"}]}]}`,
			want: "docs.Persons.OrderBy(person => person.Lastname).OrderByDescending(person => person.Age).OrderBy(person => person.Firstname)",
		},
		{
			name: "raw template",
			src:  `q: {root: "results", query: [{select: {raw: "r => r.Total"}}]}`,
			want: "results.Select(r => r.Total)",
		},
		{
			name: "entity is",
			src:  `q: {entityIs: ["Company", "Person"], as: "doc", query: [{select: {new: {Name: "doc.name"}}}]}`,
			want: `docs.WhereEntityIs(new string[] { "Companies", "Persons" }).Select(doc => new {Name = doc.Name})`,
		},
		{
			name: "selectMany infers the element variable",
			src:  `q: {from: "Company", query: [{selectMany: "company.employees"}, {select: "person.firstname"}]}`,
			want: "docs.Companies.SelectMany(company => company.Employees, (company, person) => new {Company = company, Person = person}).Select(transId_1 => transId_1.Person.Firstname)",
		},
		{
			name: "selectMany with a result projection",
			src: `q: {from: "Company", query: [
				{selectMany: "company.employees", as: "person", into: {new: {Company: "company.name", Name: "person.firstname"}}, yields: "entry"},
				{select: "entry.Name"},
			]}`,
			want: "docs.Companies.SelectMany(company => company.Employees, (company, person) => new {Company = company.Name, Name = person.Firstname}).Select(entry => entry.Name)",
		},
		{
			name: "group alias and sum",
			src: `q: {root: "results", of: "PersonResult", query: [
				{groupBy: "personResult.name", as: "g"},
				{select: {new: {Name: "g.key", Total: {div: [{sum: "personResult.count"}, {sum: "personResult.count"}]}}}},
			]}`,
			want: "results.GroupBy(personResult => personResult.Name).Select(g => new {Name = g.Key, Total = g.Sum(personResult => personResult.Count) / g.Sum(personResult => personResult.Count)})",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compileQueryString(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileQueryPreserveCasing(t *testing.T) {
	got, err := compileQueryString(t,
		`q: {from: "Company", query: [{where: {startsWith: ["company.name", {value: "C"}]}}]}`,
		linq.WithCasing(linq.CasingPreserve))
	require.NoError(t, err)
	assert.Equal(t, `docs.Companies.Where(company => company.name.StartsWith("C"))`, got)
}

func TestCompileQueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		field   string
		message string
	}{
		{"no source", `q: {query: []}`, "query", "requires one of"},
		{"unknown entity", `q: {from: "Invoice"}`, "query", "unknown entity"},
		{"unknown variable", `q: {from: "Company", query: [{select: "employee.name"}]}`, "query.query[0].select", `unknown variable "employee"`},
		{"unknown field", `q: {from: "Company", query: [{select: "company.revenue"}]}`, "query.query[0].select", "unknown field"},
		{"unknown operator", `q: {from: "Company", query: [{select: {modulo: ["company.name", 2]}}]}`, "query.query[0].select", `unknown operator "modulo"`},
		{"two operator keys", `q: {from: "Company", query: [{select: {not: "company.name", size: "company.name"}}]}`, "query.query[0].select", "exactly one key"},
		{"wrong arity", `q: {from: "Company", query: [{where: {eq: ["company.name"]}}]}`, "query.query[0].where.eq", "expected 2 operands"},
		{"no step kind", `q: {from: "Company", query: [{filter: "company.name"}]}`, "query.query[0]", "step requires one of"},
		{"two step kinds", `q: {from: "Company", query: [{where: "company.name", select: "company.name"}]}`, "query.query[0]", "both where and select"},
		{"sum without group", `q: {from: "Person", query: [{select: {sum: "person.age"}}]}`, "query.query[0].select.sum", "requires a preceding groupBy"},
		{"into not a projection", `q: {from: "Company", query: [{selectMany: "company.employees", into: "company.name"}]}`, "query.query[0].into", "must be a new projection"},
		{"range variable after into", `q: {from: "Company", query: [{selectMany: "company.employees", into: {new: {N: "person.firstname"}}, yields: "entry"}, {select: "company.name"}]}`, "query.query[1].select", `unknown variable "company"`},
		{"untyped selectMany", `q: {root: "results", as: "r", query: [{selectMany: "r.items"}]}`, "query.query[0].selectMany", "needs as"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileQueryString(t, tt.src)
			require.Error(t, err)

			var compileErr *CompileError
			require.ErrorAs(t, err, &compileErr)
			assert.Equal(t, tt.field, compileErr.Field)
			assert.Contains(t, compileErr.Message, tt.message)
		})
	}
}

func TestCompileQueryRewriteErrors(t *testing.T) {
	_, err := compileQueryString(t,
		`q: {from: "Company", query: [{selectMany: "company.employees", as: "company"}]}`)
	require.Error(t, err)
	assert.True(t, linq.IsDuplicateRewrite(err))
	assert.Equal(t, ErrCodeQuery, ErrorCode(err))

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "query.query[0]", compileErr.Field)
}
