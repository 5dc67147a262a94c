package linq

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idxc/internal/expr"
	"github.com/roach88/idxc/internal/testutil"
)

// To regenerate golden files, run:
//
//	go test ./internal/linq -run TestGolden -update
func TestGolden(t *testing.T) {
	s := testutil.NewSample()
	g := NewGrouping("string")

	tests := []struct {
		name string
		q    *IndexSource
	}{
		{
			name: "companies_by_pet",
			q: FromType("Company").
				Where(s.Get(s.Company, "name").StartsWith("C")).
				SelectMany(s.Get(s.Company, "employees"), s.Person).
				Where(s.Get(s.Person, "age").Gte(expr.Num(18)).And(s.Get(s.Person, "lastname").EndsWith("son"))).
				SelectMany(s.Get(s.Person, "pets"), s.Pet).
				OrderBy(s.Get(s.Pet, "name").Asc()).
				Select(expr.New().
					With("Company", s.Get(s.Company, "name")).
					With("City", s.Get(s.Company, "address", "city")).
					With("Pet", s.Get(s.Pet, "name"))),
		},
		{
			name: "people_count_reduce",
			q: FromRoot("results").
				GroupBy(s.Get(s.PersonResult, "name")).
				Select(expr.New().
					With("Name", g.Key).
					With("Count", g.MustSum(s.Get(s.PersonResult, "count")))),
		},
	}

	gl := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.q.ToText()
			require.NoError(t, err)
			gl.Assert(t, tt.name, []byte(text))
		})
	}
}
