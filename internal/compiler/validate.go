package compiler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/idxc/internal/indexdef"
)

// Validation error codes (E400-E499)
const (
	ErrInvalidIndexName    = "E401" // name empty or has illegal characters
	ErrEmptyMap            = "E402" // a map renders to empty text
	ErrAnalyzerNotAnalyzed = "E403" // analyzer on a field that is not analyzed
	ErrSortNotIndexed      = "E404" // sort option on a field excluded from the index
	ErrDuplicateName       = "E405" // index and transformer share a name
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var indexNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_./-]*$`)

// Validate checks compiled definitions against the server's rules.
// Returns all errors found (does not fail-fast).
func Validate(result *LoadResult) []ValidationError {
	var errs []ValidationError
	names := make(map[string]string)

	for _, def := range result.Indexes {
		errs = append(errs, ValidateIndex(def)...)
		names[def.Name] = "index"
	}
	for _, def := range result.Transformers {
		if !indexNamePattern.MatchString(def.Name) {
			errs = append(errs, ValidationError{
				Field:   "transformer." + def.Name,
				Message: fmt.Sprintf("invalid transformer name %q", def.Name),
				Code:    ErrInvalidIndexName,
			})
		}
		if kind, ok := names[def.Name]; ok {
			errs = append(errs, ValidationError{
				Field:   "transformer." + def.Name,
				Message: fmt.Sprintf("name already used by an %s", kind),
				Code:    ErrDuplicateName,
			})
		}
	}
	return errs
}

// ValidateIndex checks a single index definition.
func ValidateIndex(def *indexdef.IndexDefinition) []ValidationError {
	var errs []ValidationError
	field := "index." + def.Name

	if !indexNamePattern.MatchString(def.Name) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid index name %q", def.Name),
			Code:    ErrInvalidIndexName,
		})
	}

	for i, m := range def.Maps {
		if strings.TrimSpace(m) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.maps[%d]", field, i),
				Message: "map is empty",
				Code:    ErrEmptyMap,
			})
		}
	}

	for _, name := range sortedKeys(def.Analyzers) {
		if ix, ok := def.Indexes[name]; ok && ix != indexdef.IndexingAnalyzed && ix != indexdef.IndexingDefault {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.analyzers.%s", field, name),
				Message: fmt.Sprintf("analyzer set but field is indexed as %s", ix),
				Code:    ErrAnalyzerNotAnalyzed,
			})
		}
	}

	for _, name := range sortedKeys(def.SortOptions) {
		if def.Indexes[name] == indexdef.IndexingNo {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.sort.%s", field, name),
				Message: "sort option set on a field that is not indexed",
				Code:    ErrSortNotIndexed,
			})
		}
	}

	return errs
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
