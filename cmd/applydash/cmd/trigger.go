package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nfrund/applydash/internal/actions"
	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/refresh"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type triggerFlags struct {
	campaignName string
	jobTitle     string
	platforms    string
	location     string
	file         string
	contentType  string
}

func newTriggerCmd(c *cli) *cobra.Command {
	var f triggerFlags
	cmd := &cobra.Command{
		Use:   "trigger <action>",
		Short: "Run a dashboard action from the command line",
		Long: `Run one of the dashboard actions against the workflow webhooks.

Examples:
  applydash trigger create-campaign --campaign-name "Spring" --job-title "Go Engineer" --platforms linkedin,indeed
  applydash trigger find-jobs --job-title "Go Engineer" --location Remote --platforms linkedin
  applydash trigger upload-resume --file ./resume.pdf
  applydash trigger open-settings`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: actionNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := domain.ParseAction(args[0])
			if err != nil {
				return err
			}
			req, err := f.request(c.fs, action)
			if err != nil {
				return err
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			policy, err := refresh.ParsePolicy(cfg.GetRefreshPolicy())
			if err != nil {
				return err
			}
			console := &notify.Console{W: cmd.OutOrStdout()}
			client := c.client(cfg, console)
			cycle := refresh.NewCycle(client, newTablePresenter(cmd.OutOrStdout(), cfg.GetLocale()), policy)
			svc := actions.NewService(client, console, cycle, cfg.Endpoints())

			res, err := svc.Execute(cmd.Context(), req)
			if errors.Is(err, domain.ErrActionAborted) {
				return fmt.Errorf("%s: %w (check the flags)", action, err)
			}
			if err != nil {
				return err
			}
			if action == domain.ActionOpenSettings {
				renderTable(cmd.OutOrStdout(), []string{"Webhook", "URL", "Source"}, endpointRows(res.Settings))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.campaignName, "campaign-name", "", "Campaign name (create-campaign)")
	cmd.Flags().StringVar(&f.jobTitle, "job-title", "", "Job title (create-campaign, find-jobs)")
	cmd.Flags().StringVar(&f.platforms, "platforms", "", "Comma separated platforms (create-campaign, find-jobs)")
	cmd.Flags().StringVar(&f.location, "location", "", "Location (find-jobs)")
	cmd.Flags().StringVar(&f.file, "file", "", "Resume file (upload-resume)")
	cmd.Flags().StringVar(&f.contentType, "content-type", "", "Resume MIME type; detected from the content when empty")
	return cmd
}

func (f triggerFlags) request(fs afero.Fs, action domain.Action) (actions.Request, error) {
	req := actions.Request{
		Action: action,
		Fields: map[string]string{
			"campaignName": f.campaignName,
			"jobTitle":     f.jobTitle,
			"platforms":    f.platforms,
			"location":     f.location,
		},
	}
	if action != domain.ActionUploadResume || f.file == "" {
		return req, nil
	}
	data, err := afero.ReadFile(fs, f.file)
	if err != nil {
		return req, fmt.Errorf("read resume: %w", err)
	}
	req.File = &actions.File{Name: filepath.Base(f.file), Data: data, ContentType: f.contentType}
	return req, nil
}

func actionNames() []string {
	names := make([]string, 0, len(domain.Actions))
	for _, a := range domain.Actions {
		names = append(names, string(a))
	}
	return names
}
