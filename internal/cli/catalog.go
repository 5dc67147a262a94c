package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/idxc/internal/catalog"
	"github.com/roach88/idxc/internal/compiler"
)

// Catalog error codes.
const (
	ErrCodeCatalog  = "E501" // catalog open or query failed
	ErrCodeNoRecord = "E502" // no definition with that name
)

// CatalogOptions holds flags shared by the catalog subcommands.
type CatalogOptions struct {
	*RootOptions
	DB string // catalog path; defaults to catalog from config
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the definition catalog",
		Long: `Store compiled definitions in a SQLite catalog keyed by name.

Putting a definition whose fingerprint is unchanged is a no-op; any other
change assigns a new revision and is kept in the history.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "catalog database (default catalog from config)")

	cmd.AddCommand(newCatalogPutCommand(opts))
	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogGetCommand(opts))
	cmd.AddCommand(newCatalogHistoryCommand(opts))
	cmd.AddCommand(newCatalogDeleteCommand(opts))

	return cmd
}

// openCatalog opens db, or the configured catalog when db is empty.
func openCatalog(cmd *cobra.Command, opts *RootOptions, db string) (*catalog.Catalog, error) {
	if db == "" {
		cfg, err := opts.config()
		if err != nil {
			return nil, err
		}
		db = cfg.Catalog
	}
	if dir := filepath.Dir(db); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}
	return catalog.Open(db, catalog.WithLogger(opts.logger(cmd.ErrOrStderr())))
}

func catalogError(formatter *OutputFormatter, err error) error {
	code := ErrCodeCatalog
	if errors.Is(err, catalog.ErrNotFound) {
		code = ErrCodeNoRecord
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

func newCatalogPutCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "put [specs-dir]",
		Short:         "Compile definitions and put them into the catalog",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			specsDir, err := opts.specsDir(args)
			if err != nil {
				return err
			}
			loadResult, err := loadDefinitions(opts.RootOptions, formatter, specsDir, compiler.LoadModeCollectAll)
			if err != nil {
				return err
			}

			changed, err := storeDefinitions(cmd, opts.RootOptions, opts.DB, loadResult.Indexes, loadResult.Transformers)
			if err != nil {
				return catalogError(formatter, err)
			}

			total := len(loadResult.Indexes) + len(loadResult.Transformers)
			if formatter.Format == "json" {
				return formatter.Success(map[string]int{"definitions": total, "changed": changed})
			}
			fmt.Fprintf(formatter.Writer, "%s %d definition(s), %d changed\n", formatter.ok("✓"), total, changed)
			return nil
		},
	}
}

func newCatalogListCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored definitions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			cat, err := openCatalog(cmd, opts.RootOptions, opts.DB)
			if err != nil {
				return catalogError(formatter, err)
			}
			defer cat.Close()

			records, err := cat.List(cmd.Context())
			if err != nil {
				return catalogError(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(records)
			}
			if len(records) == 0 {
				fmt.Fprintln(formatter.Writer, "Catalog is empty.")
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(formatter.Writer, "%-12s %s %s\n", rec.Kind, formatter.name(rec.Name), formatter.subtle(rec.Revision))
			}
			return nil
		},
	}
}

func newCatalogGetCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <name>",
		Short:         "Print a stored definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			cat, err := openCatalog(cmd, opts.RootOptions, opts.DB)
			if err != nil {
				return catalogError(formatter, err)
			}
			defer cat.Close()

			rec, err := cat.Get(cmd.Context(), args[0])
			if err != nil {
				return catalogError(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(rec)
			}
			var body bytes.Buffer
			if err := json.Indent(&body, []byte(rec.Body), "", "  "); err != nil {
				return catalogError(formatter, err)
			}
			fmt.Fprintf(formatter.Writer, "%s %s\n", rec.Kind, formatter.name(rec.Name))
			fmt.Fprintf(formatter.Writer, "revision:    %s\n", rec.Revision)
			fmt.Fprintf(formatter.Writer, "fingerprint: %s\n", rec.Fingerprint)
			fmt.Fprintln(formatter.Writer, body.String())
			return nil
		},
	}
}

func newCatalogHistoryCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <name>",
		Short:         "Show the revisions of a definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			cat, err := openCatalog(cmd, opts.RootOptions, opts.DB)
			if err != nil {
				return catalogError(formatter, err)
			}
			defer cat.Close()

			revs, err := cat.History(cmd.Context(), args[0])
			if err != nil {
				return catalogError(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(revs)
			}
			if len(revs) == 0 {
				fmt.Fprintf(formatter.Writer, "No history for %s.\n", args[0])
				return nil
			}
			for _, rev := range revs {
				state := rev.Fingerprint
				if rev.Deleted {
					state = "deleted"
				}
				fmt.Fprintf(formatter.Writer, "%4d %s %s\n", rev.Seq, rev.Revision, formatter.subtle(state))
			}
			return nil
		},
	}
}

func newCatalogDeleteCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <name>",
		Short:         "Delete a stored definition",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			cat, err := openCatalog(cmd, opts.RootOptions, opts.DB)
			if err != nil {
				return catalogError(formatter, err)
			}
			defer cat.Close()

			deleted, err := cat.Delete(cmd.Context(), args[0])
			if err != nil {
				return catalogError(formatter, err)
			}
			if !deleted {
				return catalogError(formatter, fmt.Errorf("%w: %s", catalog.ErrNotFound, args[0]))
			}

			if formatter.Format == "json" {
				return formatter.Success(map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(formatter.Writer, "%s Deleted %s\n", formatter.ok("✓"), args[0])
			return nil
		},
	}
}
