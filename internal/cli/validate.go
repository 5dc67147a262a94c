package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/idxc/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool                       `json:"valid"`
	Indexes      int                        `json:"indexes"`
	Transformers int                        `json:"transformers"`
	Errors       []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Validate definitions without writing output",
		Long: `Compile CUE definitions and check them against the server's rules:
index names, empty maps, analyzers on fields that are not analyzed, sort
options on fields excluded from the index and names shared by an index
and a transformer. Nothing is written.

Exit codes:
  0 - All definitions valid
  1 - One or more validation errors
  2 - Compile or command error`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	specsDir, err := opts.specsDir(args)
	if err != nil {
		return err
	}
	loadResult, err := loadDefinitions(opts, formatter, specsDir, compiler.LoadModeCollectAll)
	if err != nil {
		return err
	}

	result := ValidationResult{
		Indexes:      len(loadResult.Indexes),
		Transformers: len(loadResult.Transformers),
		Errors:       compiler.Validate(loadResult),
	}
	result.Valid = len(result.Errors) == 0

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s All definitions valid (%d index(es), %d transformer(s))\n",
		formatter.ok("✓"), result.Indexes, result.Transformers)
	return nil
}

// outputValidationErrors outputs validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		first := result.Errors[0]
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    first.Code,
				Message: first.Message,
				Details: first.Field,
			},
		}
		if err := formatter.encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	fmt.Fprintf(formatter.Writer, "%s Validation failed\n\n", formatter.fail("✗"))
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, formatter.name(e.Field), e.Message)
	}
	fmt.Fprintln(formatter.Writer)

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
