package cli

import (
	"bytes"
	"io"
	"testing"
)

const (
	sampleSpecs  = "testdata/specs/sample"
	brokenSpecs  = "testdata/specs/broken"
	invalidSpecs = "testdata/specs/invalid"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}
