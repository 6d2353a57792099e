package cmd

import (
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/refresh"
	"github.com/spf13/cobra"
)

func newRefreshCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh cycle and print the dashboard",
		Long: `Fetch statistics, applications and campaigns concurrently and print them
as tables. Under the isolated policy each failed region is reported on its own;
under all-or-nothing nothing is printed unless every fetch succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			policy, err := refresh.ParsePolicy(cfg.GetRefreshPolicy())
			if err != nil {
				return err
			}
			client := c.client(cfg, &notify.Console{W: cmd.ErrOrStderr()})
			cycle := refresh.NewCycle(client, newTablePresenter(cmd.OutOrStdout(), cfg.GetLocale()), policy)
			return cycle.Run(cmd.Context())
		},
	}
}
