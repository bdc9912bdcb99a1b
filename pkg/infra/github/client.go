package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

const (
	defaultPerPage  = 50
	defaultMaxPages = 20
)

// Client reads notifications and pull request state from the GitHub REST API
type Client struct {
	githubClient *github.Client
	perPage      int
	maxPages     int
}

// Option is a functional option for Client
type Option func(*Client) error

// WithBaseURL points the client at another API root, e.g. GitHub Enterprise or a test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return goerr.Wrap(err, "invalid GitHub API base URL", goerr.V("base_url", baseURL))
		}
		c.githubClient.BaseURL = u
		return nil
	}
}

// WithPageLimit bounds how many notifications are fetched per run
func WithPageLimit(perPage, maxPages int) Option {
	return func(c *Client) error {
		if perPage > 0 {
			c.perPage = perPage
		}
		if maxPages > 0 {
			c.maxPages = maxPages
		}
		return nil
	}
}

// NewClient creates a client authenticated with a personal access token.
// The notifications API is only available to user tokens.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is required", goerr.T(model.ErrTagConfig))
	}
	return newClient(github.NewClient(nil).WithAuthToken(token), opts...)
}

// NewAppClient creates a client with GitHub App installation authentication.
// It can read pull requests of the installation but not user notifications.
func NewAppClient(appID, installationID int64, privateKey []byte, opts ...Option) (*Client, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
			goerr.T(model.ErrTagConfig),
		)
	}
	return newClient(github.NewClient(&http.Client{Transport: itr}), opts...)
}

func newClient(gh *github.Client, opts ...Option) (*Client, error) {
	c := &Client{
		githubClient: gh,
		perPage:      defaultPerPage,
		maxPages:     defaultMaxPages,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ListUnread returns unread notification threads as raw JSON objects. The
// typed go-github Notification is not used because fields the normalizer
// tolerates (bare string subjects, missing repository) would be lost.
func (c *Client) ListUnread(ctx context.Context) ([]model.RawNotification, error) {
	var all []model.RawNotification

	page := 1
	for i := 0; i < c.maxPages; i++ {
		req, err := c.githubClient.NewRequest(http.MethodGet,
			fmt.Sprintf("notifications?per_page=%d&page=%d", c.perPage, page), nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build notifications request")
		}

		var batch []model.RawNotification
		resp, err := c.githubClient.Do(ctx, req, &batch)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list notifications",
				goerr.V("page", page),
				goerr.T(model.ErrTagExternal),
			)
		}
		all = append(all, batch...)

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return all, nil
}

// MarkRead marks a notification thread as read
func (c *Client) MarkRead(ctx context.Context, threadID string) error {
	if _, err := c.githubClient.Activity.MarkThreadRead(ctx, threadID); err != nil {
		return goerr.Wrap(err, "failed to mark notification as read",
			goerr.V("thread_id", threadID),
			goerr.T(model.ErrTagExternal),
		)
	}
	return nil
}

// GetPullRequestState returns open, merged or closed
func (c *Client) GetPullRequestState(ctx context.Context, owner, repo string, number int) (model.PullRequestState, error) {
	pr, _, err := c.githubClient.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get pull request",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("number", number),
			goerr.T(model.ErrTagExternal),
		)
	}

	switch {
	case pr.GetMerged():
		return model.PullRequestMerged, nil
	case pr.GetState() == "open":
		return model.PullRequestOpen, nil
	default:
		return model.PullRequestClosed, nil
	}
}
