package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodegraph/pkg/pipeline"
)

// evalFlags are shared by every command that walks a scene.
type evalFlags struct {
	noCache     bool // disable the output cache entirely
	incremental bool // reuse cached outputs of unchanged nodes
	refresh     bool // recompute everything but still store outputs
	lenient     bool // missing inputs yield defaults instead of failing the walk
	json        bool // print the full result as JSON
}

func (f *evalFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the output cache")
	cmd.Flags().BoolVarP(&f.incremental, "incremental", "i", false, "reuse cached outputs of unchanged nodes")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached outputs (still stores new ones)")
	cmd.Flags().BoolVar(&f.lenient, "lenient", false, "use defaults for missing inputs instead of failing")
}

// evalCommand creates the eval command.
func (c *CLI) evalCommand() *cobra.Command {
	var flags evalFlags

	cmd := &cobra.Command{
		Use:   "eval [scene...]",
		Short: "Walk one or more scenes and print recorded values",
		Long: `Walk the execution path of each scene and print the values its record
nodes saw. Print nodes write to stdout as they run.

Several scenes are evaluated concurrently; their printed output is shown
with each result.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			// Print nodes stream live only for a single scene; concurrent
			// walks would interleave their lines.
			live := len(args) == 1 && !flags.json
			all := make([]pipeline.Options, len(args))
			for i, path := range args {
				opts, err := c.sceneOptions(path, flags)
				if err != nil {
					return err
				}
				if live {
					opts.Output = c.Out
				}
				all[i] = opts
			}

			prog := newProgress(loggerFromContext(ctx))
			results, err := runner.ExecuteAll(ctx, all)
			if err != nil {
				return err
			}
			prog.walked(results)

			if flags.json {
				return c.writeJSON(results, len(args) == 1)
			}
			for _, res := range results {
				c.printResult(res, !live)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.json, "json", false, "print results as JSON")
	return cmd
}

func (c *CLI) printResult(res *pipeline.Result, printed bool) {
	p := c.printer()
	p.success("%s", StyleTitle.Render(res.Scene))
	if printed && res.Printed != "" {
		fmt.Fprint(c.Out, res.Printed)
	}

	names := make([]string, 0, len(res.Recorded))
	for name := range res.Recorded {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		p.keyValue(name, res.Recorded[name].String())
	}
	if len(names) == 0 {
		p.detail("no record nodes")
	}
	p.stats(res.Stats)
}

// writeJSON prints results as indented JSON; single unwraps a one-element
// slice.
func (c *CLI) writeJSON(results []*pipeline.Result, single bool) error {
	if single {
		return c.encode(results[0])
	}
	return c.encode(results)
}

// =============================================================================
// Path & Categorize
// =============================================================================

// pathCommand creates the path command.
func (c *CLI) pathCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "path [scene]",
		Short: "Print the execution path of a scene",
		Long: `Print the nodes in the order a walk evaluates them: every node
reachable upstream from an exit node, dependencies first. Loose nodes
are not on the path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.analyze(cmd, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return c.encode(res.path)
			}
			p := c.printer()
			for i, name := range res.path {
				p.line(StyleDim.Render(fmt.Sprintf("%3d ", i+1)) + StyleValue.Render(name))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the path as a JSON array")
	return cmd
}

// categorizeCommand creates the categorize command.
func (c *CLI) categorizeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "categorize [scene]",
		Short: "Print loose, entry, exit and net nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.analyze(cmd, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return c.encode(res.categories)
			}
			c.printer().categories(res.categories)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print categories as JSON")
	return cmd
}

type analyzed struct {
	path       []string
	categories pipeline.Categories
}

// analyze loads a scene without walking it.
func (c *CLI) analyze(cmd *cobra.Command, path string) (*analyzed, error) {
	ctx := cmd.Context()
	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))

	built, err := runner.Load(ctx, pipeline.Options{ScenePath: path}, c.Out)
	if err != nil {
		return nil, err
	}
	a := pipeline.Analyze(built)
	return &analyzed{
		path:       a.PathNames(built),
		categories: a.CategoryNames(built),
	}, nil
}

func (c *CLI) encode(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
