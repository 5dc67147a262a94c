package testutil

import (
	"github.com/roach88/idxc/internal/expr"
	"github.com/roach88/idxc/internal/model"
)

// Sample is the object model shared by query tests: companies employ people,
// people own pets, and PersonResult is the reduce output of a per-person count.
type Sample struct {
	Model *model.Model

	Company      *expr.Path
	Person       *expr.Path
	Pet          *expr.Path
	PersonResult *expr.Path
}

// NewSample builds the sample model and its conventional root variables
// (company, person, pet, personResult).
func NewSample() *Sample {
	m := model.New()
	must(m.Define("Company",
		"name", "string",
		"address", "Address",
		"employees", "[]Person",
	))
	must(m.Define("Address",
		"city", "string",
		"street", "string",
	))
	must(m.Define("Person",
		"firstname", "string",
		"lastname", "string",
		"age", "int",
		"pets", "[]Pet",
	))
	must(m.Define("Pet",
		"name", "string",
		"kind", "string",
	))
	must(m.Define("PersonResult",
		"name", "string",
		"count", "int",
	))
	must(m.Validate())

	return &Sample{
		Model:        m,
		Company:      mustPath(m.Root("Company")),
		Person:       mustPath(m.Root("Person")),
		Pet:          mustPath(m.Root("Pet")),
		PersonResult: mustPath(m.Root("PersonResult")),
	}
}

// Get returns a typed member path, panicking on unknown fields.
func (s *Sample) Get(p *expr.Path, fields ...string) *expr.Path {
	return mustPath(s.Model.Resolve(p, fields...))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustPath(p *expr.Path, err error) *expr.Path {
	must(err)
	return p
}
