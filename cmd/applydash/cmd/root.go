package cmd

import (
	"fmt"
	"os"

	"github.com/nfrund/applydash/internal/config"
	"github.com/nfrund/applydash/internal/logging"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/tracing"
	"github.com/nfrund/applydash/internal/webhook"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// cli carries what every command shares.
type cli struct {
	getenv   func(string) string
	fs       afero.Fs
	logLevel string
	policy   string
}

// Option configures the root command.
type Option func(*cli)

// WithEnv replaces the process environment and skips the .env file.
func WithEnv(getenv func(string) string) Option {
	return func(c *cli) { c.getenv = getenv }
}

// WithFs sets the filesystem used for the endpoints file and uploads.
func WithFs(fs afero.Fs) Option {
	return func(c *cli) { c.fs = fs }
}

// NewRootCmd builds the applydash command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	c := &cli{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(c)
	}

	root := &cobra.Command{
		Use:   "applydash",
		Short: "Job application dashboard driven by workflow webhooks",
		Long: `applydash serves a live dashboard of job applications and campaigns.
Data and actions are delegated to webhooks of an external workflow engine.

Use "applydash [command] --help" for more information about a command.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := c.logLevel
			if level == "" {
				level = c.env("LOG_LEVEL")
			}
			logging.Setup(cmd.ErrOrStderr(), c.env("LOG_FORMAT"), level)
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	root.PersistentFlags().StringVar(&c.policy, "policy", "", "Refresh policy (isolated, all-or-nothing); defaults to REFRESH_POLICY")

	root.AddCommand(
		newServeCmd(c),
		newRefreshCmd(c),
		newTriggerCmd(c),
		newEndpointsCmd(c),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (c *cli) env(key string) string {
	if c.getenv == nil {
		return os.Getenv(key)
	}
	return c.getenv(key)
}

// config loads the configuration and the endpoints file, if one is set.
func (c *cli) config() (*config.Config, error) {
	var cfg *config.Config
	if c.getenv == nil {
		cfg = config.New()
	} else {
		cfg = config.Load(c.getenv)
	}
	if c.policy != "" {
		cfg.RefreshPolicy = c.policy
	}
	if path := cfg.GetEndpointsFile(); path != "" {
		if err := cfg.Endpoints().LoadFile(c.fs, path); err != nil {
			return nil, fmt.Errorf("load endpoints file: %w", err)
		}
	}
	return cfg, nil
}

// client builds a webhook client that reports failures to n.
func (c *cli) client(cfg *config.Config, n notify.Notifier) *webhook.Client {
	return webhook.NewClient(cfg.Endpoints(), n,
		webhook.WithTimeout(cfg.GetWebhookTimeout()),
		webhook.WithTracer(tracing.Noop()),
	)
}
