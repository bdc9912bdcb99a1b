package github

import (
	"time"

	"github.com/google/go-github/v75/github"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// ToWebhookEvent converts a payload returned by github.ParseWebHook into a
// WebhookEvent. Payloads of event types nothing reacts to become EventTypeUnknown.
func ToWebhookEvent(eventType, deliveryID string, payload any) *model.WebhookEvent {
	event := &model.WebhookEvent{
		ID:         deliveryID,
		Type:       model.WebhookEventType(eventType),
		ReceivedAt: time.Now(),
	}

	// Use Get*() helper methods for nil-safe field access
	switch e := payload.(type) {
	case *github.PullRequestEvent:
		event.Action = e.GetAction()
		event.Repository = e.GetRepo().GetFullName()
		event.Sender = e.GetSender().GetLogin()
		event.Number = e.GetNumber()
		if event.Number == 0 {
			event.Number = e.GetPullRequest().GetNumber()
		}
		event.Merged = e.GetPullRequest().GetMerged()

	case *github.PingEvent:
		event.Type = model.EventTypePing

	default:
		event.Type = model.EventTypeUnknown
	}

	return event
}
