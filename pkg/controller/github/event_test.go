package github_test

import (
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	githubcontroller "github.com/m-mizutani/ghtask/pkg/controller/github"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

func TestToWebhookEvent_PullRequestClosed(t *testing.T) {
	payload := &github.PullRequestEvent{
		Action: github.Ptr("closed"),
		Number: github.Ptr(7),
		Repo:   &github.Repository{FullName: github.Ptr("acme/widgets")},
		Sender: &github.User{Login: github.Ptr("octocat")},
		PullRequest: &github.PullRequest{
			Number: github.Ptr(7),
			Merged: github.Ptr(true),
		},
	}

	event := githubcontroller.ToWebhookEvent("pull_request", "delivery-1", payload)
	gt.Value(t, event.ID).Equal("delivery-1")
	gt.Value(t, event.Type).Equal(model.EventTypePullRequest)
	gt.Value(t, event.Action).Equal("closed")
	gt.Value(t, event.Repository).Equal("acme/widgets")
	gt.Value(t, event.Sender).Equal("octocat")
	gt.Value(t, event.Number).Equal(7)
	gt.True(t, event.Merged)
	gt.True(t, event.TriggersSweep())
}

func TestToWebhookEvent_NumberFromPullRequest(t *testing.T) {
	payload := &github.PullRequestEvent{
		Action:      github.Ptr("opened"),
		PullRequest: &github.PullRequest{Number: github.Ptr(12)},
	}

	event := githubcontroller.ToWebhookEvent("pull_request", "d", payload)
	gt.Value(t, event.Number).Equal(12)
	gt.Value(t, event.TriggersSweep()).Equal(false)
}

func TestToWebhookEvent_Ping(t *testing.T) {
	event := githubcontroller.ToWebhookEvent("ping", "d", &github.PingEvent{Zen: github.Ptr("Keep it simple")})
	gt.Value(t, event.Type).Equal(model.EventTypePing)
}

func TestToWebhookEvent_Unsupported(t *testing.T) {
	payload := &github.PushEvent{Ref: github.Ptr("refs/heads/main")}

	event := githubcontroller.ToWebhookEvent("push", "d", payload)
	gt.Value(t, event.Type).Equal(model.EventTypeUnknown)
	gt.Value(t, event.TriggersSweep()).Equal(false)
}
