package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/idxc/internal/indexdef"
)

// Snapshot captures the compiled output of a scenario.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a Snapshot to plain values for canonical JSON.
func (s *Snapshot) toCanonicalMap() map[string]any {
	indexes := make([]any, len(s.Result.Indexes))
	for i, d := range s.Result.Indexes {
		indexes[i] = d.CanonicalObject()
	}
	transformers := make([]any, len(s.Result.Transformers))
	for i, d := range s.Result.Transformers {
		transformers[i] = d.CanonicalObject()
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"indexes":       indexes,
		"transformers":  transformers,
	}
	if len(s.Result.CompileErrors) > 0 {
		failures := make([]any, len(s.Result.CompileErrors))
		for i, f := range s.Result.CompileErrors {
			failures[i] = map[string]any{"code": f.Code, "message": f.Message}
		}
		out["compile_errors"] = failures
	}
	return out
}

// SnapshotJSON renders the canonical JSON snapshot of a result.
func SnapshotJSON(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: name, Result: result}
	return indexdef.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden runs a scenario and compares its compiled definitions
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check assertions.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
