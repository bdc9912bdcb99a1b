package interfaces

import (
	"context"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// NotificationSource reads unread notifications and acknowledges them
type NotificationSource interface {
	// ListUnread returns unread notification threads as raw JSON objects
	ListUnread(ctx context.Context) ([]model.RawNotification, error)

	// MarkRead marks a notification thread as read
	MarkRead(ctx context.Context, threadID string) error
}

// PullRequestReader reads the live state of pull requests
type PullRequestReader interface {
	GetPullRequestState(ctx context.Context, owner, repo string, number int) (model.PullRequestState, error)
}
