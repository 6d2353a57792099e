package cmd

import (
	"github.com/spf13/cobra"
)

func newEndpointsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the resolved webhook endpoints",
		Long: `List every webhook with its resolved URL and where the URL came from:
an environment override, the endpoints file, or the base URL default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), []string{"Webhook", "URL", "Source"}, endpointRows(cfg.Endpoints().Snapshot()))
			return nil
		},
	}
}
