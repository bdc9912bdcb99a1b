package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// Store is a process local task store. It backs tests and dry runs.
type Store struct {
	mu    sync.Mutex
	items []*model.TrackedItem
}

// New creates an empty store, optionally seeded with items
func New(items ...*model.TrackedItem) *Store {
	s := &Store{}
	for _, item := range items {
		copied := *item
		if copied.ID == "" {
			copied.ID = uuid.NewString()
		}
		if copied.Status == "" {
			copied.Status = model.TaskStatusPending
		}
		s.items = append(s.items, &copied)
	}
	return s
}

func (s *Store) Exists(ctx context.Context, identityKey string, tags []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Status == model.TaskStatusPending && item.IdentityKey == identityKey && item.HasTags(tags) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Create(ctx context.Context, spec *model.TaskSpec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &model.TrackedItem{
		ID:          uuid.NewString(),
		IdentityKey: spec.IdentityKey,
		Description: spec.Description,
		Project:     spec.Project,
		Status:      model.TaskStatusPending,
		Priority:    spec.Priority,
		Tags:        slices.Clone(spec.Tags),
		UpstreamRef: spec.UpstreamRef,
	}
	s.items = append(s.items, item)
	return item.ID, nil
}

func (s *Store) ListPending(ctx context.Context, tags []string) ([]*model.TrackedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.TrackedItem
	for _, item := range s.items {
		if item.Status == model.TaskStatusPending && item.HasTags(tags) {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *Store) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			item.Status = model.TaskStatusDone
			return nil
		}
	}
	return goerr.New("task not found", goerr.V("id", id))
}

// Items returns a snapshot of every stored item
func (s *Store) Items() []model.TrackedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.TrackedItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out
}
