package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

type sweepUseCase struct {
	store    interfaces.TaskStore
	prReader interfaces.PullRequestReader
	notifier interfaces.Notifier
	policy   *model.Policy
	lock     *sync.Mutex
}

// SweepOption is a functional option for the sweep use case
type SweepOption func(*sweepUseCase)

// WithSweepNotifier sets the notifier used for closure messages
func WithSweepNotifier(n interfaces.Notifier) SweepOption {
	return func(uc *sweepUseCase) {
		uc.notifier = n
	}
}

// WithSweepLock shares a write lock with the sync use case
func WithSweepLock(mu *sync.Mutex) SweepOption {
	return func(uc *sweepUseCase) {
		uc.lock = mu
	}
}

// NewSweep creates a new instance of SweepUseCase
func NewSweep(store interfaces.TaskStore, prReader interfaces.PullRequestReader, policy *model.Policy, opts ...SweepOption) interfaces.SweepUseCase {
	uc := &sweepUseCase{
		store:    store,
		prReader: prReader,
		notifier: nopNotifier{},
		policy:   policy,
		lock:     &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Sweep closes pending items tagged with the policy's sweep tag whose pull
// request is no longer open. A failed lookup leaves the item for the next run.
func (uc *sweepUseCase) Sweep(ctx context.Context) (*model.RunReport, error) {
	logger := ctxlog.From(ctx)
	report := &model.RunReport{}

	uc.lock.Lock()
	defer uc.lock.Unlock()

	tags := []string{model.TagGitHub, uc.policy.SweepTag}
	var items []*model.TrackedItem
	if err := callWithTimeout(ctx, uc.policy, func(ctx context.Context) error {
		var err error
		items, err = uc.store.ListPending(ctx, tags)
		return err
	}); err != nil {
		return report, goerr.Wrap(err, "failed to list pending tasks",
			goerr.V("tags", tags),
			goerr.T(model.ErrTagExternal),
		)
	}
	logger.Debug("Sweeping pending tasks", "count", len(items), "tags", tags)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return report, goerr.Wrap(err, "sweep cancelled", goerr.V("processed", i))
		}

		itemLogger := logger.With("task_id", item.ID, "upstream_ref", item.UpstreamRef)

		closed, err := uc.isClosed(ctx, item)
		if err != nil {
			itemLogger.Warn("Failed to query upstream state, keeping task pending", "error", err)
			report.Failed++
			continue
		}
		if !closed {
			continue
		}

		if err := callWithTimeout(ctx, uc.policy, func(ctx context.Context) error {
			return uc.store.Close(ctx, item.ID)
		}); err != nil {
			itemLogger.Error("Failed to close task", "error", err)
			report.Failed++
			continue
		}

		itemLogger.Info("Closed task", "description", item.Description)
		uc.notifier.Send(ctx, &model.Message{
			Title:   "GitHub task closed",
			Body:    item.Description,
			Urgency: model.UrgencyNormal,
		})
		report.Closed = append(report.Closed, item.IdentityKey)
	}

	logger.Info("Sweep finished", "checked", len(items), "closed", len(report.Closed), "failed", report.Failed)
	return report, nil
}

// isClosed treats an item without a pull request reference as closed since it
// can never be resolved upstream. Items with unusual URLs are closed as well.
func (uc *sweepUseCase) isClosed(ctx context.Context, item *model.TrackedItem) (bool, error) {
	ref, ok := model.ParsePullRequestRef(item.UpstreamRef)
	if !ok {
		ctxlog.From(ctx).Debug("Task has no pull request reference, treating as closed",
			"task_id", item.ID,
			"upstream_ref", item.UpstreamRef,
		)
		return true, nil
	}

	var state model.PullRequestState
	if err := callWithTimeout(ctx, uc.policy, func(ctx context.Context) error {
		var err error
		state, err = uc.prReader.GetPullRequestState(ctx, ref.Owner, ref.Repo, ref.Number)
		return err
	}); err != nil {
		return false, goerr.Wrap(err, "failed to get pull request state",
			goerr.V("owner", ref.Owner),
			goerr.V("repo", ref.Repo),
			goerr.V("number", ref.Number),
			goerr.T(model.ErrTagExternal),
		)
	}

	return state.IsFinal(), nil
}
