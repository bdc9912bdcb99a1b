package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePullRequest WebhookEventType = "pull_request"
	EventTypePing        WebhookEventType = "ping"
	EventTypeUnknown     WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., opened, closed)
	Repository string           // Repository full name
	Sender     string           // Sender username
	Number     int              // Pull request number
	Merged     bool
	ReceivedAt time.Time
}

// TriggersSweep reports whether the event finalizes a pull request, in which
// case pending review tasks may be closed without waiting for the next run.
func (e *WebhookEvent) TriggersSweep() bool {
	return e.Type == EventTypePullRequest && e.Action == "closed"
}
