package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/idxc/internal/config"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Force bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "init [path]",
		Short:         "Write a default " + config.DefaultFile,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}
			return runInit(opts, path, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")

	return cmd
}

func runInit(opts *InitOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); err == nil && !opts.Force {
		_ = formatter.Error(ErrCodeConfigExists, fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists", path))
	}

	if err := config.SaveTo(path, config.Default()); err != nil {
		_ = formatter.Error(ErrCodeConfigWrite, err.Error(), nil)
		return WrapExitError(ExitCommandError, "writing config", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"config": path})
	}
	fmt.Fprintf(formatter.Writer, "%s Wrote %s\n", formatter.ok("✓"), formatter.name(path))
	return nil
}

// Config error codes.
const (
	ErrCodeConfigExists = "E601" // config file already exists
	ErrCodeConfigWrite  = "E602" // config file could not be written
)
