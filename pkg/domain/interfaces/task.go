package interfaces

import (
	"context"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// TaskStore persists tracked items
type TaskStore interface {
	// Exists reports whether a pending item with identityKey carrying all tags exists
	Exists(ctx context.Context, identityKey string, tags []string) (bool, error)

	// Create stores a new pending item and returns its store ID
	Create(ctx context.Context, spec *model.TaskSpec) (string, error)

	// ListPending returns pending items carrying all tags
	ListPending(ctx context.Context, tags []string) ([]*model.TrackedItem, error)

	// Close transitions the item to done
	Close(ctx context.Context, id string) error
}
