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

func emptyPolicy() *model.Policy {
	return &model.Policy{
		Ignore:       model.NewReasonSet(),
		Create:       model.NewReasonSet(),
		HighPriority: model.NewReasonSet(),
		Notify:       model.NewReasonSet(),
		SweepTag:     "review_requested",
		CallTimeout:  model.DefaultCallTimeout,
	}
}

func scenarioARecord() model.RawNotification {
	return model.RawNotification{
		"id":     "1001",
		"reason": "mention",
		"subject": map[string]any{
			"title": "Fix bug",
			"url":   "https://api.github.com/repos/acme/widgets/issues/42",
		},
		"repository": map[string]any{
			"name":  "widgets",
			"owner": map[string]any{"login": "acme"},
		},
	}
}

func lookupReturns(exists bool) usecase.LookupFunc {
	return func(ctx context.Context, key string, tags []string) (bool, error) {
		return exists, nil
	}
}

func TestReconcile_ScenarioA(t *testing.T) {
	policy := emptyPolicy()
	policy.Create = model.NewReasonSet(model.ReasonMention)

	ev, err := model.ParseNotification(scenarioARecord())
	gt.NoError(t, err)

	action, err := usecase.Reconcile(context.Background(), policy, ev, lookupReturns(false))
	gt.NoError(t, err)
	gt.Value(t, action.Type).Equal(model.ActionCreate)
	gt.Value(t, action.Priority).Equal(model.PriorityNormal)
	gt.Value(t, ev.CanonicalURL).Equal("https://github.com/acme/widgets/issues/42")
}

func TestReconcile_ScenarioB(t *testing.T) {
	policy := emptyPolicy()
	policy.Create = model.NewReasonSet(model.ReasonMention)

	ev, err := model.ParseNotification(scenarioARecord())
	gt.NoError(t, err)

	calls := 0
	lookup := func(ctx context.Context, key string, tags []string) (bool, error) {
		calls++
		return calls > 1, nil
	}

	first, err := usecase.Reconcile(context.Background(), policy, ev, lookup)
	gt.NoError(t, err)
	gt.Value(t, first.Type).Equal(model.ActionCreate)

	second, err := usecase.Reconcile(context.Background(), policy, ev, lookup)
	gt.NoError(t, err)
	gt.Value(t, second.Type).Equal(model.ActionSkip)
	gt.Value(t, second.Cause).Equal(model.SkipCauseDuplicate)
}

func TestReconcile_IdempotentAgainstStore(t *testing.T) {
	ctx := context.Background()
	policy := model.DefaultPolicy()
	store := memory.New()

	for _, reason := range policy.Create.Sorted() {
		t.Run(reason, func(t *testing.T) {
			ev := model.NewEvent(model.EventInput{
				Reason:         model.Reason(reason),
				SubjectTitle:   "Something happened",
				RepositoryName: "widgets",
				RawURL:         "https://api.github.com/repos/acme/widgets/pulls/7",
			})

			first, err := usecase.Reconcile(ctx, policy, ev, store.Exists)
			gt.NoError(t, err)
			gt.Value(t, first.Type).Equal(model.ActionCreate)

			_, err = store.Create(ctx, model.NewTaskSpec(ev, first.Priority))
			gt.NoError(t, err)

			second, err := usecase.Reconcile(ctx, policy, ev, store.Exists)
			gt.NoError(t, err)
			gt.Value(t, second.Type).Equal(model.ActionSkip)
		})
	}
}

func TestReconcile_IgnoreTakesPrecedence(t *testing.T) {
	policy := emptyPolicy()
	policy.Ignore = model.NewReasonSet(model.ReasonSubscribed)
	policy.Create = model.NewReasonSet(model.ReasonSubscribed)
	policy.HighPriority = model.NewReasonSet(model.ReasonSubscribed)

	ev := model.NewEvent(model.EventInput{Reason: model.ReasonSubscribed})

	for _, exists := range []bool{true, false} {
		looked := false
		lookup := func(ctx context.Context, key string, tags []string) (bool, error) {
			looked = true
			return exists, nil
		}
		action, err := usecase.Reconcile(context.Background(), policy, ev, lookup)
		gt.NoError(t, err)
		gt.Value(t, action.Type).Equal(model.ActionSkip)
		gt.Value(t, action.Cause).Equal(model.SkipCauseIgnored)
		gt.Value(t, looked).Equal(false)
	}
}

func TestReconcile_AcknowledgeOnly(t *testing.T) {
	policy := emptyPolicy()
	ev := model.NewEvent(model.EventInput{Reason: model.ReasonCIActivity})

	action, err := usecase.Reconcile(context.Background(), policy, ev, lookupReturns(true))
	gt.NoError(t, err)
	gt.Value(t, action.Type).Equal(model.ActionAcknowledgeOnly)
	gt.True(t, action.ShouldAcknowledge())
}

func TestReconcile_HighPriority(t *testing.T) {
	policy := emptyPolicy()
	policy.Create = model.NewReasonSet(model.ReasonReviewRequested)
	policy.HighPriority = model.NewReasonSet(model.ReasonReviewRequested)
	ev := model.NewEvent(model.EventInput{Reason: model.ReasonReviewRequested})

	action, err := usecase.Reconcile(context.Background(), policy, ev, lookupReturns(false))
	gt.NoError(t, err)
	gt.Value(t, action.Type).Equal(model.ActionCreate)
	gt.Value(t, action.Priority).Equal(model.PriorityHigh)
}

func TestReconcile_LookupError(t *testing.T) {
	policy := emptyPolicy()
	policy.Create = model.NewReasonSet(model.ReasonMention)
	ev := model.NewEvent(model.EventInput{Reason: model.ReasonMention})

	_, err := usecase.Reconcile(context.Background(), policy, ev, func(ctx context.Context, key string, tags []string) (bool, error) {
		return false, errors.New("task binary not found")
	})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagExternal))
}
