package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSample_Roots(t *testing.T) {
	s := NewSample()

	assert.Equal(t, "company", s.Company.Name)
	assert.Equal(t, "Company", s.Company.Type)
	assert.Equal(t, "personResult", s.PersonResult.Name)
	assert.True(t, s.Pet.IsRoot())
}

func TestSample_GetTypedMembers(t *testing.T) {
	s := NewSample()

	employees := s.Get(s.Company, "employees")
	assert.Equal(t, "[]Person", employees.Type)
	assert.Equal(t, "Person", employees.Elem)

	city := s.Get(s.Company, "address", "city")
	assert.Equal(t, "company.address.city", city.String())
	assert.Equal(t, "string", city.Type)
}

func TestSample_GetUnknownFieldPanics(t *testing.T) {
	s := NewSample()
	require.Panics(t, func() { s.Get(s.Person, "salary") })
}
