package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/idxc/internal/indexdef"
	"github.com/roach88/idxc/internal/linq"
	"github.com/roach88/idxc/internal/model"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult holds everything compiled from one CUE directory.
type LoadResult struct {
	Model        *model.Model
	Indexes      []*indexdef.IndexDefinition
	Transformers []*indexdef.TransformerDefinition
	CUEValue     cue.Value
	FileCount    int
}

// LoadError represents an error that occurred during loading, with a stable
// code for the CLI.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Error codes shared by every CLI command.
const (
	ErrCodeGeneric     = "E001" // generic or unknown error
	ErrCodeScanError   = "E002" // directory scan error
	ErrCodeNoFiles     = "E003" // no CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // file write error

	ErrCodeModel      = "E101" // unknown entity or field, invalid declaration
	ErrCodeQuery      = "E201" // query rewrite or rendering error
	ErrCodeExpression = "E202" // malformed expression or step
	ErrCodeDefinition = "E301" // invalid index or transformer definition
)

// ErrorCode classifies a compile error.
func ErrorCode(err error) string {
	var (
		linqErr  *linq.Error
		modelErr *model.Error
		compErr  *CompileError
	)
	switch {
	case errors.As(err, &linqErr):
		return ErrCodeQuery
	case errors.As(err, &modelErr):
		return ErrCodeModel
	case errors.Is(err, indexdef.ErrMapRequired),
		errors.Is(err, indexdef.ErrDuplicateField),
		errors.Is(err, indexdef.ErrTransformRequired):
		return ErrCodeDefinition
	case errors.As(err, &compErr):
		if compErr.Field == "cue" {
			return ErrCodeBuildFailed
		}
		return ErrCodeExpression
	default:
		return ErrCodeGeneric
	}
}

// LoadDir loads every CUE file in dir as one instance and compiles it.
// In LoadModeCollectAll the result holds every definition that compiled.
func LoadDir(dir string, mode LoadMode, opts ...linq.Option) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result, errs := CompileValue(value, mode, opts...)
	result.FileCount = len(cueFiles)
	return result, errs
}

// CompileValue compiles the entity, index and transformer declarations of
// an already built CUE value. Entities compile first; queries are only
// compiled against a valid model.
func CompileValue(value cue.Value, mode LoadMode, opts ...linq.Option) (*LoadResult, []error) {
	var errs []error
	result := &LoadResult{Model: model.New(), CUEValue: value}

	fail := func(err error, context string) bool {
		errs = append(errs, convertCompileError(err, context))
		return mode == LoadModeFailFast
	}

	stop := eachField(value, "entity", fail, func(label string, v cue.Value) bool {
		e, err := CompileEntity(v)
		if err == nil {
			err = result.Model.Add(e)
		}
		return err != nil && fail(err, "entity."+label)
	})
	if stop {
		return result, errs
	}
	if err := result.Model.Validate(); err != nil {
		fail(err, "entity")
		return result, errs
	}
	if len(errs) > 0 {
		return result, errs
	}

	stop = eachField(value, "index", fail, func(label string, v cue.Value) bool {
		def, err := CompileIndex(v, result.Model, opts...)
		if err != nil {
			return fail(err, "index."+label)
		}
		result.Indexes = append(result.Indexes, def)
		return false
	})
	if stop {
		return result, errs
	}

	eachField(value, "transformer", fail, func(label string, v cue.Value) bool {
		def, err := CompileTransformer(v, result.Model, opts...)
		if err != nil {
			return fail(err, "transformer."+label)
		}
		result.Transformers = append(result.Transformers, def)
		return false
	})

	sort.Slice(result.Indexes, func(i, j int) bool { return result.Indexes[i].Name < result.Indexes[j].Name })
	sort.Slice(result.Transformers, func(i, j int) bool { return result.Transformers[i].Name < result.Transformers[j].Name })

	if len(errs) == 0 && len(result.Indexes) == 0 && len(result.Transformers) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no indexes or transformers found in specs"})
	}
	return result, errs
}

// eachField calls fn for every field of the struct at key until fn returns
// true. It reports whether iteration stopped early.
func eachField(value cue.Value, key string, fail func(error, string) bool, fn func(label string, v cue.Value) bool) bool {
	sv := value.LookupPath(cue.ParsePath(key))
	if !sv.Exists() {
		return false
	}
	iter, err := sv.Fields()
	if err != nil {
		return fail(fmt.Errorf("iterating %s: %w", key, err), key)
	}
	for iter.Next() {
		if fn(selectorName(iter.Selector()), iter.Value()) {
			return true
		}
	}
	return false
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrorCode(err),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
			Err:     err,
		}
	}
	return &LoadError{
		Code:    ErrorCode(err),
		Message: fmt.Sprintf("%s: %v", context, err),
		Err:     err,
	}
}
