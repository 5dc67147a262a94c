package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/roach88/idxc/internal/catalog"
	"github.com/roach88/idxc/internal/compiler"
	"github.com/roach88/idxc/internal/indexdef"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output directory; defaults to out_dir
	DryRun bool   // compile without writing files
	Store  bool   // also put every definition into the catalog
	DB     string // catalog path; defaults to catalog
}

// CompilationResult holds the compiled definitions.
type CompilationResult struct {
	Indexes      []*indexdef.IndexDefinition       `json:"indexes"`
	Transformers []*indexdef.TransformerDefinition `json:"transformers"`
	Files        []string                          `json:"files,omitempty"`
	Stored       int                               `json:"stored,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [specs-dir]",
		Short: "Compile CUE definitions to index definition JSON",
		Long: `Compile CUE index and transformer definitions.

Each definition is written as JSON to <out>/indexes/<slug>.json or
<out>/transformers/<slug>.json. With --store the definitions are also put
into the catalog; unchanged definitions keep their revision.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (default out_dir from config)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compile without writing files")
	cmd.Flags().BoolVar(&opts.Store, "store", false, "put compiled definitions into the catalog")
	cmd.Flags().StringVar(&opts.DB, "db", "", "catalog database (default catalog from config)")

	return cmd
}

func runCompile(opts *CompileOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	specsDir, err := opts.specsDir(args)
	if err != nil {
		return err
	}
	loadResult, err := loadDefinitions(opts.RootOptions, formatter, specsDir, compiler.LoadModeCollectAll)
	if err != nil {
		return err
	}

	result := &CompilationResult{
		Indexes:      loadResult.Indexes,
		Transformers: loadResult.Transformers,
	}

	if !opts.DryRun {
		outDir := opts.Output
		if outDir == "" {
			outDir = opts.cfg.OutDir
		}
		files, err := writeDefinitions(result, outDir)
		if err != nil {
			return outputCompileError(formatter, compiler.ErrCodeWriteFailed, fmt.Sprintf("writing output: %v", err), nil)
		}
		result.Files = files
	}

	if opts.Store {
		stored, err := storeDefinitions(cmd, opts.RootOptions, opts.DB, result.Indexes, result.Transformers)
		if err != nil {
			return outputCompileError(formatter, compiler.ErrCodeWriteFailed, fmt.Sprintf("storing definitions: %v", err), nil)
		}
		result.Stored = stored
	}

	return outputCompileSuccess(formatter, result)
}

// loadDefinitions loads and compiles specsDir, reporting errors through
// the formatter.
func loadDefinitions(opts *RootOptions, formatter *OutputFormatter, specsDir string, mode compiler.LoadMode) (*compiler.LoadResult, error) {
	linqOpts, err := opts.linqOptions()
	if err != nil {
		return nil, err
	}

	loadResult, loadErrors := compiler.LoadDir(specsDir, mode, linqOpts...)

	// Directory not found, no files, CUE load failures
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *compiler.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return nil, outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return nil, outputCompileError(formatter, compiler.ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	for _, d := range loadResult.Indexes {
		formatter.VerboseLog("Compiled index: %s", d.Name)
	}
	for _, d := range loadResult.Transformers {
		formatter.VerboseLog("Compiled transformer: %s", d.Name)
	}

	if len(loadErrors) > 0 {
		return nil, outputCompileErrors(formatter, loadErrors)
	}
	return loadResult, nil
}

// writeDefinitions writes one JSON file per definition and returns the
// written paths.
func writeDefinitions(result *CompilationResult, outDir string) ([]string, error) {
	var files []string
	seen := make(map[string]string)

	write := func(sub, name string, v any) error {
		path := filepath.Join(outDir, sub, slug.Make(name)+".json")
		if other, ok := seen[path]; ok {
			return fmt.Errorf("%q and %q both map to %s", other, name, path)
		}
		seen[path] = name

		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", name, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return err
		}
		files = append(files, path)
		return nil
	}

	for _, d := range result.Indexes {
		if err := write("indexes", d.Name, d); err != nil {
			return nil, err
		}
	}
	for _, d := range result.Transformers {
		if err := write("transformers", d.Name, d); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// storeDefinitions puts every definition into the catalog and returns how
// many records changed.
func storeDefinitions(cmd *cobra.Command, opts *RootOptions, db string, indexes []*indexdef.IndexDefinition, transformers []*indexdef.TransformerDefinition) (int, error) {
	cat, err := openCatalog(cmd, opts, db)
	if err != nil {
		return 0, err
	}
	defer cat.Close()

	var records []catalog.Record
	for _, d := range indexes {
		rec, err := catalog.IndexRecord(d)
		if err != nil {
			return 0, err
		}
		records = append(records, rec)
	}
	for _, d := range transformers {
		rec, err := catalog.TransformerRecord(d)
		if err != nil {
			return 0, err
		}
		records = append(records, rec)
	}

	changed := 0
	for _, rec := range records {
		ok, err := cat.Put(cmd.Context(), rec)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s Compiled %d index(es), %d transformer(s)\n\n",
		formatter.ok("✓"), len(result.Indexes), len(result.Transformers))

	if len(result.Indexes) > 0 {
		fmt.Fprintln(w, "Indexes:")
		for _, d := range result.Indexes {
			kind := "map"
			if d.IsMapReduce() {
				kind = "map-reduce"
			}
			fmt.Fprintf(w, "  %s: %d map(s), %s\n", formatter.name(d.Name), len(d.Maps), kind)
		}
		fmt.Fprintln(w)
	}

	if len(result.Transformers) > 0 {
		fmt.Fprintln(w, "Transformers:")
		for _, d := range result.Transformers {
			fmt.Fprintf(w, "  %s\n", formatter.name(d.Name))
		}
		fmt.Fprintln(w)
	}

	if len(result.Files) > 0 {
		fmt.Fprintf(w, "Wrote %d file(s) to %s\n", len(result.Files), formatter.subtle(filepath.Dir(filepath.Dir(result.Files[0]))))
	}
	if result.Stored > 0 {
		fmt.Fprintf(w, "Stored %d changed definition(s) in the catalog\n", result.Stored)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}
		if err := formatter.encode(response); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "%s Compilation failed\n\n", formatter.fail("✗"))

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintln(formatter.Writer, formatter.subtle(fmt.Sprintf("%s:%d:%d",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())))
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return compiler.ErrorCode(err), err.Error()
}
