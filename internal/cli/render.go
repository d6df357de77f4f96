package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats)
	formats  []string // output formats: "dot", "svg", "pdf", "png"
	detailed bool     // show port types and defaults
	noCache  bool     // skip the artifact cache
	refresh  bool     // re-render even when cached
}

// renderCommand creates the render command for node-link diagrams.
//
// The format comes from --format or, failing that, the extension of
// --output. Without either the DOT source is written to stdout.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene as a node-link diagram",
		Long: `Render a scene's graph with Graphviz. Nodes are drawn as records with
their inputs above and outputs below, filled by category.

PDF and PNG output require rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := resolveFormats(parseFormats(formatsStr), opts.output)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot, svg, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show port types, defaults and node details")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

// resolveFormats validates explicit formats or infers one from output.
func resolveFormats(formats []string, output string) ([]string, error) {
	if len(formats) == 0 {
		if output == "" {
			return []string{pipeline.FormatDOT}, nil
		}
		f, err := formatFromPath(output)
		if err != nil {
			return nil, err
		}
		return []string{f}, nil
	}
	if err := pipeline.ValidateFormats(formats); err != nil {
		return nil, err
	}
	if len(formats) > 1 && output == "" {
		return nil, fmt.Errorf("--output is required when rendering several formats")
	}
	return formats, nil
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		ScenePath: path,
		Formats:   opts.formats,
		Detailed:  opts.detailed,
		Refresh:   opts.refresh,
		Logger:    logger,
	}
	built, err := runner.Load(ctx, popts, io.Discard)
	if err != nil {
		return err
	}

	spin := newSpinner(ctx, os.Stderr, "Rendering "+strings.Join(opts.formats, ", ")+"...")
	spin.Start()
	artifacts, cached, err := runner.Render(ctx, built, popts)
	spin.Stop()
	if err != nil {
		return err
	}

	// No output file: the single artifact goes to stdout.
	if opts.output == "" {
		_, err := c.Out.Write(artifacts[opts.formats[0]])
		return err
	}

	p := c.printer()
	paths := outputPaths(opts.output, opts.formats)
	for _, f := range opts.formats {
		if err := os.WriteFile(paths[f], artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[f], err)
		}
	}
	if cached {
		p.success("Rendered %s %s", built.Scene.Name, styleCached.Render("("+iconCached+")"))
	} else {
		p.success("Rendered %s", built.Scene.Name)
	}
	for _, f := range opts.formats {
		p.file(paths[f], len(artifacts[f]))
	}
	return nil
}

// outputPaths maps each format to its file. A single format writes to
// output as given; several formats share output's base name.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
