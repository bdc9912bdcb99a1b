package notifier

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// Slack posts messages to an incoming webhook
type Slack struct {
	webhookURL string
	channel    string
}

// NewSlack creates a notifier for the incoming webhook URL. channel may be
// empty to use the webhook's default channel.
func NewSlack(webhookURL, channel string) *Slack {
	return &Slack{webhookURL: webhookURL, channel: channel}
}

var urgencyColor = map[model.Urgency]string{
	model.UrgencyLow:      "#9e9e9e",
	model.UrgencyNormal:   "#2196f3",
	model.UrgencyCritical: "danger",
}

func (n *Slack) Send(ctx context.Context, msg *model.Message) {
	payload := &slack.WebhookMessage{
		Channel: n.channel,
		Text:    msg.Title,
		Attachments: []slack.Attachment{
			{
				Color: urgencyColor[msg.Urgency],
				Text:  msg.Body,
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, payload); err != nil {
		ctxlog.From(ctx).Warn("Failed to post slack message", "error", err, "title", msg.Title)
	}
}
