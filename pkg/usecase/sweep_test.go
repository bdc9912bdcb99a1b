package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/memory"
	"github.com/m-mizutani/ghtask/pkg/usecase"
)

func reviewItem(id, ref string) *model.TrackedItem {
	return &model.TrackedItem{
		ID:          id,
		IdentityKey: ref,
		Description: "review_requested: " + id,
		Project:     "widgets",
		Status:      model.TaskStatusPending,
		Priority:    model.PriorityHigh,
		Tags:        []string{"github", "review_requested"},
		UpstreamRef: ref,
	}
}

func TestSweep_ScenarioD(t *testing.T) {
	ctx := context.Background()
	store := memory.New(reviewItem("task-1", "https://github.com/acme/widgets/pull/7"))
	reader := &mockPRReader{states: map[int]model.PullRequestState{7: model.PullRequestClosed}}
	notifier := &mockNotifier{}

	uc := usecase.NewSweep(store, reader, model.DefaultPolicy(), usecase.WithSweepNotifier(notifier))
	report, err := uc.Sweep(ctx)
	gt.NoError(t, err)

	gt.Value(t, report.Closed).Equal([]string{"https://github.com/acme/widgets/pull/7"})
	gt.Number(t, len(notifier.messages)).Equal(1)
	gt.Value(t, notifier.messages[0].Title).Equal("GitHub task closed")
	gt.Value(t, notifier.messages[0].Body).Equal("review_requested: task-1")

	items := store.Items()
	gt.Number(t, len(items)).Equal(1)
	gt.Value(t, items[0].Status).Equal(model.TaskStatusDone)

	// A second pass finds nothing to close
	report, err = uc.Sweep(ctx)
	gt.NoError(t, err)
	gt.Number(t, len(report.Closed)).Equal(0)
	gt.Number(t, len(notifier.messages)).Equal(1)
}

func TestSweep_OpenPullRequestStaysPending(t *testing.T) {
	store := memory.New(reviewItem("task-1", "https://github.com/acme/widgets/pull/7"))
	reader := &mockPRReader{states: map[int]model.PullRequestState{7: model.PullRequestOpen}}
	notifier := &mockNotifier{}

	report, err := usecase.NewSweep(store, reader, model.DefaultPolicy(), usecase.WithSweepNotifier(notifier)).Sweep(context.Background())
	gt.NoError(t, err)
	gt.Number(t, len(report.Closed)).Equal(0)
	gt.Number(t, len(notifier.messages)).Equal(0)
	gt.Value(t, store.Items()[0].Status).Equal(model.TaskStatusPending)
}

func TestSweep_NonPullRequestRefIsClosed(t *testing.T) {
	store := memory.New(
		reviewItem("issue", "https://github.com/acme/widgets/issues/3"),
		reviewItem("empty", ""),
	)
	reader := &mockPRReader{}

	report, err := usecase.NewSweep(store, reader, model.DefaultPolicy()).Sweep(context.Background())
	gt.NoError(t, err)
	gt.Number(t, len(report.Closed)).Equal(2)
	gt.Number(t, len(reader.calls)).Equal(0)
}

func TestSweep_QueryFailureDoesNotAbort(t *testing.T) {
	store := memory.New(
		reviewItem("broken", "https://github.com/acme/widgets/pull/1"),
		reviewItem("merged", "https://github.com/acme/widgets/pull/2"),
	)
	reader := &mockPRReader{
		states: map[int]model.PullRequestState{2: model.PullRequestMerged},
		errs:   map[int]error{1: errors.New("502 bad gateway")},
	}

	report, err := usecase.NewSweep(store, reader, model.DefaultPolicy()).Sweep(context.Background())
	gt.NoError(t, err)
	gt.Value(t, report.Failed).Equal(1)
	gt.Value(t, report.Closed).Equal([]string{"https://github.com/acme/widgets/pull/2"})

	for _, item := range store.Items() {
		if item.ID == "broken" {
			gt.Value(t, item.Status).Equal(model.TaskStatusPending)
		}
	}
}

func TestSweep_OnlyTaggedItems(t *testing.T) {
	other := reviewItem("mention", "https://github.com/acme/widgets/pull/9")
	other.Tags = []string{"github", "mention"}
	store := memory.New(other)
	reader := &mockPRReader{states: map[int]model.PullRequestState{9: model.PullRequestClosed}}

	report, err := usecase.NewSweep(store, reader, model.DefaultPolicy()).Sweep(context.Background())
	gt.NoError(t, err)
	gt.Number(t, len(report.Closed)).Equal(0)
	gt.Number(t, len(reader.calls)).Equal(0)
}

func TestSweep_CloseFailure(t *testing.T) {
	store := &recordingStore{
		inner:    memory.New(reviewItem("task-1", "https://github.com/acme/widgets/pull/7")),
		closeErr: errors.New("task: no such task"),
	}
	reader := &mockPRReader{states: map[int]model.PullRequestState{7: model.PullRequestClosed}}
	notifier := &mockNotifier{}

	report, err := usecase.NewSweep(store, reader, model.DefaultPolicy(), usecase.WithSweepNotifier(notifier)).Sweep(context.Background())
	gt.NoError(t, err)
	gt.Value(t, report.Failed).Equal(1)
	gt.Number(t, len(report.Closed)).Equal(0)
	gt.Number(t, len(notifier.messages)).Equal(0)
}

func TestSweep_ListFailure(t *testing.T) {
	store := &recordingStore{inner: memory.New(), listErr: errors.New("connection refused")}

	_, err := usecase.NewSweep(store, &mockPRReader{}, model.DefaultPolicy()).Sweep(context.Background())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagExternal))
}
