package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/droidnet/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove staging trees and cached build info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			staging, _ := cmd.Flags().GetBool("staging")
			cache, _ := cmd.Flags().GetBool("cache")

			opts := app.CleanOptions{
				ConfigPath: configPath(cmd),
				Staging:    staging,
				Cache:      cache,
			}
			if !staging && !cache {
				// Default behavior: clean staging trees
				opts.Staging = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("staging", "s", false, "Remove the DotNet output directories and host staging trees")
	cmd.Flags().BoolP("cache", "c", false, "Remove the build info store")

	return cmd
}
