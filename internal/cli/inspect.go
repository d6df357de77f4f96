package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command: walk a scene, then browse the
// path node by node with every port's source and value.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags evalFlags

	cmd := &cobra.Command{
		Use:   "inspect [scene]",
		Short: "Walk a scene and browse the result interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts, err := c.sceneOptions(args[0], flags)
			if err != nil {
				return err
			}
			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewInspectModel(res), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
