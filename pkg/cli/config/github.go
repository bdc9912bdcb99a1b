package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/github"
)

// GitHub holds GitHub API and webhook configuration
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	BaseURL        string
	PerPage        int
	MaxPages       int
	WebhookSecret  string `masq:"secret"`
}

// Flags returns CLI flags for GitHub API access
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token (required for notifications)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("GHTASK_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID, used for pull request lookups when no token is set",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("GHTASK_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("GHTASK_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM content or file path)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("GHTASK_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub API base URL (GitHub Enterprise)",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("GHTASK_GITHUB_BASE_URL"),
		},
		&cli.IntFlag{
			Name:        "github-per-page",
			Usage:       "Notifications fetched per page",
			Value:       50,
			Destination: &c.PerPage,
			Sources:     cli.EnvVars("GHTASK_GITHUB_PER_PAGE"),
		},
		&cli.IntFlag{
			Name:        "github-max-pages",
			Usage:       "Maximum notification pages fetched per run",
			Value:       20,
			Destination: &c.MaxPages,
			Sources:     cli.EnvVars("GHTASK_GITHUB_MAX_PAGES"),
		},
	}
}

// WebhookFlags returns CLI flags for the webhook endpoint
func (c *GitHub) WebhookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret, the webhook endpoint is disabled when empty",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("GHTASK_GITHUB_WEBHOOK_SECRET"),
		},
	}
}

// HasApp reports whether GitHub App credentials are configured
func (c *GitHub) HasApp() bool {
	return c.AppID != 0 && c.InstallationID != 0 && c.PrivateKey != ""
}

func (c *GitHub) options() []github.Option {
	opts := []github.Option{github.WithPageLimit(c.PerPage, c.MaxPages)}
	if c.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.BaseURL))
	}
	return opts
}

// NewClient builds a token authenticated client, which can read notifications
func (c *GitHub) NewClient() (*github.Client, error) {
	return github.NewClient(c.Token, c.options()...)
}

// NewPullRequestReader prefers the token and falls back to GitHub App credentials
func (c *GitHub) NewPullRequestReader() (*github.Client, error) {
	if c.Token != "" || !c.HasApp() {
		return c.NewClient()
	}

	key, err := c.privateKey()
	if err != nil {
		return nil, err
	}
	return github.NewAppClient(c.AppID, c.InstallationID, key, c.options()...)
}

func (c *GitHub) privateKey() ([]byte, error) {
	if strings.Contains(c.PrivateKey, "-----BEGIN") {
		return []byte(c.PrivateKey), nil
	}
	key, err := os.ReadFile(c.PrivateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key",
			goerr.V("path", c.PrivateKey),
			goerr.T(model.ErrTagConfig),
		)
	}
	return key, nil
}
