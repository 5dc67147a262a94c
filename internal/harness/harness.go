package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/idxc/internal/catalog"
	"github.com/roach88/idxc/internal/compiler"
	"github.com/roach88/idxc/internal/testutil"
)

// Run compiles the scenario's specs and evaluates its assertions.
//
// Compilation collects every error so compile_error assertions can see all
// of them. Each scenario gets a fresh in-memory catalog with sequential
// revision IDs.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with an explicit context for catalog operations.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	opts, err := scenario.Options.LinqOptions()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	loaded, errs := compiler.LoadDir(scenario.Specs, compiler.LoadModeCollectAll, opts...)
	if loaded != nil {
		result.Indexes = append(result.Indexes, loaded.Indexes...)
		result.Transformers = append(result.Transformers, loaded.Transformers...)
	}
	for _, err := range errs {
		result.CompileErrors = append(result.CompileErrors, toFailure(err))
	}

	cat, err := catalog.Open(":memory:",
		catalog.WithRevisions(testutil.NewSequentialRevisions()),
		catalog.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory catalog: %w", err)
	}
	defer cat.Close()

	actx := &AssertionContext{Catalog: cat, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func toFailure(err error) CompileFailure {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return CompileFailure{Code: loadErr.Code, Message: loadErr.Message}
	}
	return CompileFailure{Code: compiler.ErrorCode(err), Message: err.Error()}
}
