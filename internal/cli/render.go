package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/idxc/internal/compiler"
	"github.com/roach88/idxc/internal/indexdef"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Field string // print only this text: map[N], reduce or transform
}

// Rendered is the text of one definition.
type Rendered struct {
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Fingerprint string          `json:"fingerprint"`
	Fields      []RenderedField `json:"fields"`
}

// RenderedField is one named text of a definition.
type RenderedField struct {
	Field string `json:"field"`
	Text  string `json:"text"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <name> [specs-dir]",
		Short: "Print the query text of one definition",
		Long: `Compile the specs and print the map, reduce and transform text of the
named index or transformer, with its fingerprint.

Examples:
  idxc render Companies/ByPets
  idxc render People/Count --field reduce`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Field, "field", "", "print only map[N], reduce or transform")

	return cmd
}

func runRender(opts *RenderOptions, name string, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	specsDir, err := opts.specsDir(args)
	if err != nil {
		return err
	}
	loadResult, err := loadDefinitions(opts.RootOptions, formatter, specsDir, compiler.LoadModeCollectAll)
	if err != nil {
		return err
	}

	rendered, err := renderDefinition(loadResult, name)
	if err != nil {
		return outputCompileError(formatter, compiler.ErrCodeNotFound, err.Error(), nil)
	}

	if opts.Field != "" {
		for _, f := range rendered.Fields {
			if f.Field == opts.Field {
				if formatter.Format == "json" {
					return formatter.Success(f)
				}
				fmt.Fprintln(formatter.Writer, f.Text)
				return nil
			}
		}
		return outputCompileError(formatter, compiler.ErrCodeNotFound, fmt.Sprintf("%s has no %s", name, opts.Field), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(rendered)
	}

	fmt.Fprintf(formatter.Writer, "%s %s\n", rendered.Kind, formatter.name(rendered.Name))
	fmt.Fprintf(formatter.Writer, "%s\n\n", formatter.subtle(rendered.Fingerprint))
	for _, f := range rendered.Fields {
		fmt.Fprintf(formatter.Writer, "%s:\n  %s\n", f.Field, f.Text)
	}
	return nil
}

// renderDefinition finds the index or transformer called name.
func renderDefinition(result *compiler.LoadResult, name string) (*Rendered, error) {
	for _, d := range result.Indexes {
		if d.Name != name {
			continue
		}
		fp, err := indexdef.Fingerprint(d)
		if err != nil {
			return nil, err
		}
		r := &Rendered{Name: d.Name, Kind: "index", Fingerprint: fp}
		for i, m := range d.Maps {
			r.Fields = append(r.Fields, RenderedField{Field: fmt.Sprintf("map[%d]", i), Text: m})
		}
		if d.Reduce != "" {
			r.Fields = append(r.Fields, RenderedField{Field: "reduce", Text: d.Reduce})
		}
		if d.TransformResults != "" {
			r.Fields = append(r.Fields, RenderedField{Field: "transform", Text: d.TransformResults})
		}
		return r, nil
	}

	for _, d := range result.Transformers {
		if d.Name != name {
			continue
		}
		fp, err := indexdef.TransformerFingerprint(d)
		if err != nil {
			return nil, err
		}
		return &Rendered{
			Name:        d.Name,
			Kind:        "transformer",
			Fingerprint: fp,
			Fields:      []RenderedField{{Field: "transform", Text: d.TransformResults}},
		}, nil
	}

	return nil, fmt.Errorf("no index or transformer named %q", name)
}
