package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/droidnet/internal/adapters/detector" //nolint:depguard // Flag parsing only
	"go.trai.ch/droidnet/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...|all]",
		Short: "Run the specified tasks and their prerequisites",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			opts, err := runOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Run(cmd.Context(), args, opts)
		},
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("force", "f", false, "Run tasks even when they are up to date")
	cmd.Flags().String("tty", "auto", "Run external tools under a pseudo-terminal: auto, always or never")
	cmd.Flags().Lookup("tty").NoOptDefVal = "always"
	cmd.Flags().StringP("output", "o", "auto", "Output mode: auto, tui or linear")
	cmd.Flags().Bool("ci", false, "Use linear output (shorthand for --output=linear)")
	cmd.Flags().IntP("parallelism", "j", 0, "Maximum number of concurrent tasks (default: number of CPUs)")
}

func runOptions(cmd *cobra.Command) (app.RunOptions, error) {
	force, _ := cmd.Flags().GetBool("force")
	rawTTY, _ := cmd.Flags().GetString("tty")
	rawOutput, _ := cmd.Flags().GetString("output")
	ci, _ := cmd.Flags().GetBool("ci")
	parallelism, _ := cmd.Flags().GetInt("parallelism")

	tty, err := detector.ParseTTYMode(rawTTY)
	if err != nil {
		return app.RunOptions{}, err
	}
	if ci {
		rawOutput = "linear"
	}
	output, err := detector.ParseOutputMode(rawOutput)
	if err != nil {
		return app.RunOptions{}, err
	}

	return app.RunOptions{
		ConfigPath:  configPath(cmd),
		Force:       force,
		TTY:         tty,
		Output:      output,
		Parallelism: parallelism,
	}, nil
}
