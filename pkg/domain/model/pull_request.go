package model

import (
	"net/url"
	"strconv"
	"strings"
)

// PullRequestState is the live state of a pull request on GitHub
type PullRequestState string

const (
	PullRequestOpen   PullRequestState = "open"
	PullRequestClosed PullRequestState = "closed"
	PullRequestMerged PullRequestState = "merged"
)

// IsFinal reports whether the pull request can no longer change its outcome
func (s PullRequestState) IsFinal() bool {
	return s != PullRequestOpen
}

// PullRequestRef identifies a pull request on github.com
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

// ParsePullRequestRef parses https://github.com/{owner}/{repo}/pull/{number}[/...].
// Anything else, including issue or workflow URLs, returns false.
func ParsePullRequestRef(ref string) (*PullRequestRef, bool) {
	if ref == "" {
		return nil, false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Host != "github.com" {
		return nil, false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[2] != "pull" || parts[0] == "" || parts[1] == "" {
		return nil, false
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return nil, false
	}

	return &PullRequestRef{Owner: parts[0], Repo: parts[1], Number: number}, true
}
