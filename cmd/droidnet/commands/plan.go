package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/droidnet/internal/app"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the linked task graph and host wiring without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			view, err := c.app.Plan(app.PlanOptions{ConfigPath: configPath(cmd)})
			if err != nil {
				return err
			}
			if asJSON {
				return app.WritePlanJSON(cmd.OutOrStdout(), view)
			}
			return app.WritePlanText(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().Bool("json", false, "Print the plan as JSON")
	return cmd
}
