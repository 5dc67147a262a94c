package harness

import (
	"github.com/roach88/idxc/internal/indexdef"
)

// CompileFailure is one compile error with its stable code.
type CompileFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Indexes and Transformers hold every definition that compiled.
	Indexes      []*indexdef.IndexDefinition      `json:"indexes"`
	Transformers []*indexdef.TransformerDefinition `json:"transformers"`

	// CompileErrors lists compile failures in source order.
	CompileErrors []CompileFailure `json:"compile_errors,omitempty"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:         true,
		Indexes:      []*indexdef.IndexDefinition{},
		Transformers: []*indexdef.TransformerDefinition{},
		Errors:       []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// index returns the compiled index with the given name.
func (r *Result) index(name string) (*indexdef.IndexDefinition, bool) {
	for _, d := range r.Indexes {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// transformer returns the compiled transformer with the given name.
func (r *Result) transformer(name string) (*indexdef.TransformerDefinition, bool) {
	for _, d := range r.Transformers {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}
