package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/droidnet/internal/adapters/watcher" //nolint:depguard // Flag default only
	"go.trai.ch/droidnet/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [targets...|all]",
		Short: "Run tasks, then run them again whenever the runtime sources change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := runOptions(cmd)
			if err != nil {
				return err
			}
			debounce, _ := cmd.Flags().GetDuration("debounce")
			return c.app.Watch(cmd.Context(), args, app.WatchOptions{
				RunOptions: opts,
				Debounce:   debounce,
			})
		},
	}
	addRunFlags(cmd)
	cmd.Flags().Duration("debounce", watcher.DefaultDebounceWindow, "Quiet period after the last change before rebuilding")
	return cmd
}
