package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Event is the canonical form of one GitHub notification. Build it with NewEvent
// so the ci_activity URL override and RemoteID derivation are applied in order.
type Event struct {
	Reason               Reason
	SubjectTitle         string
	RepositoryName       string
	OwnerLogin           string
	CanonicalURL         string
	RemoteID             int64 // 0 when CanonicalURL has no numeric trailing segment
	SourceNotificationID string
}

// EventInput carries the fields extracted from a raw notification
type EventInput struct {
	Reason               Reason
	SubjectTitle         string
	RepositoryName       string
	OwnerLogin           string
	RawURL               string
	SourceNotificationID string
}

// NewEvent builds an Event from extracted fields
func NewEvent(in EventInput) *Event {
	ev := &Event{
		Reason:               in.Reason,
		SubjectTitle:         in.SubjectTitle,
		RepositoryName:       in.RepositoryName,
		OwnerLogin:           in.OwnerLogin,
		CanonicalURL:         NormalizeURL(in.RawURL),
		SourceNotificationID: in.SourceNotificationID,
	}

	if ev.Reason == ReasonCIActivity && ev.OwnerLogin != "" && ev.RepositoryName != "" {
		ev.CanonicalURL = WorkflowURL(ev.OwnerLogin, ev.RepositoryName, ev.SubjectTitle)
	}

	ev.RemoteID = ParseRemoteID(ev.CanonicalURL)
	return ev
}

var urlRewrites = []struct{ from, to string }{
	{"api.", ""},
	{"/repos/", "/"},
	{"/pulls/", "/pull/"},
}

// NormalizeURL rewrites a GitHub API URL into its web equivalent. Every rewrite
// shortens the string, so it is applied until nothing changes; this keeps the
// function idempotent even for inputs where one rewrite exposes another.
func NormalizeURL(raw string) string {
	url := raw
	for {
		next := url
		for _, rw := range urlRewrites {
			next = strings.ReplaceAll(next, rw.from, rw.to)
		}
		if next == url {
			return url
		}
		url = next
	}
}

// WorkflowURL builds the workflow definition URL for a ci_activity notification.
// The workflow file stem is the first word of the subject title.
func WorkflowURL(owner, repo, title string) string {
	stem := ""
	if fields := strings.Fields(title); len(fields) > 0 {
		stem = fields[0]
	}
	return fmt.Sprintf("https://github.com/%s/%s/actions/workflows/%s.yml", owner, repo, stem)
}

// ParseRemoteID returns the trailing numeric path segment of url, or 0
func ParseRemoteID(url string) int64 {
	trimmed := strings.TrimRight(url, "/")
	if trimmed == "" {
		return 0
	}
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = strings.TrimRight(trimmed[:i], "/")
	}

	segment := trimmed[strings.LastIndex(trimmed, "/")+1:]
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// IdentityKey is the deduplication key of the event. It is the canonical URL,
// or a composite of repository, reason and title when no URL is known.
func (e *Event) IdentityKey() string {
	if e.CanonicalURL != "" {
		return e.CanonicalURL
	}
	return fmt.Sprintf("%s|%s|%s", e.RepositoryName, e.Reason, e.SubjectTitle)
}

// Tags returns the tag set a tracked item for this event carries
func (e *Event) Tags() []string {
	return []string{TagGitHub, string(e.Reason)}
}

// TaskDescription is the human readable task line, e.g. "mention: Fix bug"
func (e *Event) TaskDescription() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.SubjectTitle)
}
