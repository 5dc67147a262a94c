package harness

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/idxc/internal/catalog"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// AssertionContext provides the catalog for catalog assertions.
type AssertionContext struct {
	Catalog *catalog.Catalog
	Ctx     context.Context
}

// definitionText returns the text an assertion targets.
func definitionText(result *Result, a Assertion) (string, error) {
	if a.Transformer != "" {
		d, ok := result.transformer(a.Transformer)
		if !ok {
			return "", fmt.Errorf("transformer %q was not compiled", a.Transformer)
		}
		return d.TransformResults, nil
	}

	d, ok := result.index(a.Index)
	if !ok {
		return "", fmt.Errorf("index %q was not compiled", a.Index)
	}
	field := a.Field
	if field == "" {
		field = "map[0]"
	}
	switch field {
	case "reduce":
		return d.Reduce, nil
	case "transform":
		return d.TransformResults, nil
	}
	i, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(field, "map["), "]"))
	if err != nil || i < 0 || i >= len(d.Maps) {
		return "", fmt.Errorf("index %q has no %s (%d maps)", a.Index, field, len(d.Maps))
	}
	return d.Maps[i], nil
}

func target(a Assertion) string {
	if a.Transformer != "" {
		return "transformer " + a.Transformer
	}
	if a.Field == "" {
		return "index " + a.Index + " map[0]"
	}
	return "index " + a.Index + " " + a.Field
}

func assertText(result *Result, a Assertion) error {
	text, err := definitionText(result, a)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: target(a), Actual: err.Error()}
	}

	if a.Type == AssertTextContains {
		if !strings.Contains(text, a.Text) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s containing %q", target(a), a.Text),
				Actual:   text,
			}
		}
		return nil
	}

	if text != a.Text {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %s", target(a), a.Text),
			Actual:   text,
		}
	}
	return nil
}

func assertCompileError(result *Result, a Assertion) error {
	for _, f := range result.CompileErrors {
		if a.Code != "" && f.Code != a.Code {
			continue
		}
		if a.Contains != "" && !strings.Contains(f.Message, a.Contains) {
			continue
		}
		return nil
	}

	actual := make([]string, len(result.CompileErrors))
	for i, f := range result.CompileErrors {
		actual[i] = f.Code + " " + f.Message
	}
	if len(actual) == 0 {
		actual = []string{"no compile errors"}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("compile error code=%q containing %q", a.Code, a.Contains),
		Actual:   strings.Join(actual, "; "),
	}
}

func assertDefinitionCount(result *Result, a Assertion) error {
	if a.Indexes != nil && *a.Indexes != len(result.Indexes) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d indexes", *a.Indexes),
			Actual:   fmt.Sprintf("%d indexes", len(result.Indexes)),
		}
	}
	if a.Transformers != nil && *a.Transformers != len(result.Transformers) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d transformers", *a.Transformers),
			Actual:   fmt.Sprintf("%d transformers", len(result.Transformers)),
		}
	}
	return nil
}

// assertCatalogIdempotent stores every definition twice. The first pass
// must change one record per definition, the second none.
func assertCatalogIdempotent(ctx context.Context, cat *catalog.Catalog, result *Result) error {
	records, err := catalogRecords(result)
	if err != nil {
		return err
	}

	for pass, want := range []int{len(records), 0} {
		changed := 0
		for _, rec := range records {
			ok, err := cat.Put(ctx, rec)
			if err != nil {
				return fmt.Errorf("catalog put %s: %w", rec.Name, err)
			}
			if ok {
				changed++
			}
		}
		if changed != want {
			return &AssertionError{
				Type:     AssertCatalogIdempotent,
				Expected: fmt.Sprintf("pass %d changes %d records", pass+1, want),
				Actual:   fmt.Sprintf("%d records changed", changed),
			}
		}
	}
	return nil
}

func catalogRecords(result *Result) ([]catalog.Record, error) {
	var records []catalog.Record
	for _, d := range result.Indexes {
		rec, err := catalog.IndexRecord(d)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	for _, d := range result.Transformers {
		rec, err := catalog.TransformerRecord(d)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides the catalog for catalog_idempotent.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTextEquals, AssertTextContains:
			err = assertText(result, assertion)
		case AssertCompileError:
			err = assertCompileError(result, assertion)
		case AssertDefinitionCount:
			err = assertDefinitionCount(result, assertion)
		case AssertCatalogIdempotent:
			if actx == nil || actx.Catalog == nil {
				err = fmt.Errorf("assertion[%d]: catalog_idempotent requires a catalog", i)
			} else {
				err = assertCatalogIdempotent(actx.Ctx, actx.Catalog, result)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
