package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/roach88/idxc/internal/linq"
)

// Scenario defines a compiler test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the directory of CUE definitions to compile.
	// Relative paths are resolved against the scenario file location.
	Specs string `yaml:"specs"`

	// Options select query builder options for the compilation.
	Options Options `yaml:"options,omitempty"`

	// Assertions validate the compiled output.
	Assertions []Assertion `yaml:"assertions"`
}

// Options mirrors the query builder options a project config can set.
type Options struct {
	Casing   string `yaml:"casing,omitempty"`
	DocsRoot string `yaml:"docs_root,omitempty"`
}

// LinqOptions converts the scenario options.
func (o Options) LinqOptions() ([]linq.Option, error) {
	casing, err := linq.ParseCasing(o.Casing)
	if err != nil {
		return nil, err
	}
	opts := []linq.Option{linq.WithCasing(casing)}
	if o.DocsRoot != "" {
		opts = append(opts, linq.WithDocsRoot(o.DocsRoot))
	}
	return opts, nil
}

// Assertion validates compiled output.
type Assertion struct {
	// Type specifies the assertion type (see the Assert constants).
	Type string `yaml:"type"`

	// Index or Transformer names the definition under test
	// (text_equals, text_contains).
	Index       string `yaml:"index,omitempty"`
	Transformer string `yaml:"transformer,omitempty"`

	// Field selects the index text: map[N], reduce or transform.
	// Defaults to map[0]. Ignored for transformers.
	Field string `yaml:"field,omitempty"`

	// Text is the expected text or substring.
	Text string `yaml:"text,omitempty"`

	// Code and Contains match a compile error (compile_error).
	Code     string `yaml:"code,omitempty"`
	Contains string `yaml:"contains,omitempty"`

	// Indexes and Transformers are exact counts (definition_count).
	Indexes      *int `yaml:"indexes,omitempty"`
	Transformers *int `yaml:"transformers,omitempty"`
}

// Assertion type constants.
const (
	AssertTextEquals        = "text_equals"
	AssertTextContains      = "text_contains"
	AssertCompileError      = "compile_error"
	AssertDefinitionCount   = "definition_count"
	AssertCatalogIdempotent = "catalog_idempotent"
)

var fieldPattern = regexp.MustCompile(`^(map\[[0-9]+\]|reduce|transform)$`)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Reject unknown fields so typos like "assertion:" fail loudly.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(filepath.Dir(path), scenario.Specs)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Specs == "" {
		return fmt.Errorf("specs directory is required")
	}
	if _, err := os.Stat(s.Specs); os.IsNotExist(err) {
		return fmt.Errorf("specs directory not found: %s", s.Specs)
	}

	if _, err := s.Options.LinqOptions(); err != nil {
		return fmt.Errorf("options: %w", err)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTextEquals, AssertTextContains:
		if (a.Index == "") == (a.Transformer == "") {
			return fmt.Errorf("assertions[%d]: exactly one of index or transformer is required for %s", index, a.Type)
		}
		if a.Field != "" && !fieldPattern.MatchString(a.Field) {
			return fmt.Errorf("assertions[%d]: invalid field %q", index, a.Field)
		}
		if a.Type == AssertTextContains && a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for text_contains", index)
		}
	case AssertCompileError:
		if a.Code == "" && a.Contains == "" {
			return fmt.Errorf("assertions[%d]: code or contains is required for compile_error", index)
		}
	case AssertDefinitionCount:
		if a.Indexes == nil && a.Transformers == nil {
			return fmt.Errorf("assertions[%d]: indexes or transformers is required for definition_count", index)
		}
	case AssertCatalogIdempotent:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
