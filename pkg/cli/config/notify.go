package config

import (
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/buildhook/pkg/domain/interfaces"
	"github.com/m-mizutani/buildhook/pkg/domain/types"
	"github.com/m-mizutani/buildhook/pkg/infra/notify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Notify holds configuration of where build outcomes and errors are reported
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
	SentryDSN       string `masq:"secret"`
	SentryEnv       string
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for build results",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("BUILDHOOK_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Destination: &c.SentryDSN,
			Sources:     cli.EnvVars("BUILDHOOK_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Destination: &c.SentryEnv,
			Sources:     cli.EnvVars("BUILDHOOK_SENTRY_ENV"),
		},
	}
}

// Notifier returns the build notifier, or nil when none is configured
func (c *Notify) Notifier() interfaces.BuildNotifier {
	if c.SlackWebhookURL == "" {
		return nil
	}
	return notify.NewSlack(c.SlackWebhookURL)
}

// ConfigureSentry initializes the global Sentry client. It reports false
// without error when no DSN is configured.
func (c *Notify) ConfigureSentry() (bool, error) {
	if c.SentryDSN == "" {
		return false, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.SentryDSN,
		Environment: c.SentryEnv,
		Release:     "buildhook@" + types.Version,
	}); err != nil {
		return false, goerr.Wrap(err, "failed to initialize Sentry")
	}
	return true, nil
}
