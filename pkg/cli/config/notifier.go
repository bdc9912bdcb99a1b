package config

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/notifier"
)

// Notifier holds notification channel configuration
type Notifier struct {
	Channels        []string
	NotifySend      string
	DisplayTimeout  time.Duration
	SlackWebhookURL string `masq:"secret"`
	SlackChannel    string
}

// Flags returns CLI flags for notifier configuration
func (c *Notifier) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "notifier",
			Usage:       "Notification channels (desktop, slack)",
			Destination: &c.Channels,
			Sources:     cli.EnvVars("GHTASK_NOTIFIERS"),
		},
		&cli.StringFlag{
			Name:        "notify-send",
			Usage:       "Path of the notify-send binary",
			Value:       "notify-send",
			Destination: &c.NotifySend,
			Sources:     cli.EnvVars("GHTASK_NOTIFY_SEND"),
		},
		&cli.DurationFlag{
			Name:        "notify-display-timeout",
			Usage:       "How long desktop notifications stay visible",
			Value:       10 * time.Second,
			Destination: &c.DisplayTimeout,
			Sources:     cli.EnvVars("GHTASK_NOTIFY_DISPLAY_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("GHTASK_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel overriding the webhook default",
			Destination: &c.SlackChannel,
			Sources:     cli.EnvVars("GHTASK_SLACK_CHANNEL"),
		},
	}
}

// Build returns the configured notifier, or nil when no channel is enabled
func (c *Notifier) Build() (interfaces.Notifier, error) {
	var multi notifier.Multi
	for _, ch := range c.Channels {
		switch strings.ToLower(strings.TrimSpace(ch)) {
		case "desktop":
			multi = append(multi, notifier.NewDesktop(c.NotifySend, notifier.WithDisplayTimeout(c.DisplayTimeout)))
		case "slack":
			if c.SlackWebhookURL == "" {
				return nil, goerr.New("slack notifier requires --slack-webhook-url", goerr.T(model.ErrTagConfig))
			}
			multi = append(multi, notifier.NewSlack(c.SlackWebhookURL, c.SlackChannel))
		case "", "none":
		default:
			return nil, goerr.New("unknown notifier",
				goerr.V("notifier", ch),
				goerr.T(model.ErrTagConfig),
			)
		}
	}

	switch len(multi) {
	case 0:
		return nil, nil
	case 1:
		return multi[0], nil
	default:
		return multi, nil
	}
}
