package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// Notifier delivers a message to the user. Delivery is best effort: failures
// are logged by the implementation and never returned.
type Notifier interface {
	Send(ctx context.Context, msg *model.Message)
}

// Archiver keeps a copy of each fetched notification batch
type Archiver interface {
	Save(ctx context.Context, fetchedAt time.Time, batch []model.RawNotification) error
}
