package firestore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/firestore"
)

func TestNew_RequiresProject(t *testing.T) {
	_, err := firestore.New(context.Background(), "")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagConfig))
}

// Runs against the emulator (FIRESTORE_EMULATOR_HOST) or a real project
func TestStore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	ctx := context.Background()
	opts := []firestore.Option{firestore.WithCollection("ghtask_test_" + uuid.NewString()[:8])}
	if dbID := os.Getenv("TEST_FIRESTORE_DATABASE_ID"); dbID != "" {
		opts = append(opts, firestore.WithDatabaseID(dbID))
	}

	store, err := firestore.New(ctx, projectID, opts...)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = store.Shutdown() })

	key := "https://github.com/acme/widgets/pull/" + uuid.NewString()
	tags := []string{"github", "review_requested"}

	ok, err := store.Exists(ctx, key, tags)
	gt.NoError(t, err)
	gt.Value(t, ok).Equal(false)

	id, err := store.Create(ctx, &model.TaskSpec{
		IdentityKey: key,
		Description: "review_requested: firestore",
		Project:     "widgets",
		Tags:        tags,
		UpstreamRef: key,
		Priority:    model.PriorityHigh,
	})
	gt.NoError(t, err)

	ok, err = store.Exists(ctx, key, tags)
	gt.NoError(t, err)
	gt.True(t, ok)

	ok, err = store.Exists(ctx, key, []string{"github", "mention"})
	gt.NoError(t, err)
	gt.Value(t, ok).Equal(false)

	items, err := store.ListPending(ctx, tags)
	gt.NoError(t, err)
	gt.Number(t, len(items)).Equal(1)
	gt.Value(t, items[0].ID).Equal(id)

	gt.NoError(t, store.Close(ctx, id))
	gt.Error(t, store.Close(ctx, uuid.NewString()))

	ok, err = store.Exists(ctx, key, tags)
	gt.NoError(t, err)
	gt.Value(t, ok).Equal(false)
}
