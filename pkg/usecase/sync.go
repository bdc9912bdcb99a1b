package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// ActionHook observes every reconciled event, e.g. to print a dry-run plan
type ActionHook func(ev *model.Event, action model.Action)

type syncUseCase struct {
	source   interfaces.NotificationSource
	store    interfaces.TaskStore
	policy   *model.Policy
	notifier interfaces.Notifier
	archiver interfaces.Archiver
	sweeper  interfaces.SweepUseCase
	hook     ActionHook
	skipAck  bool
	dryRun   bool
	lock     *sync.Mutex
}

// SyncOption is a functional option for the sync use case
type SyncOption func(*syncUseCase)

// WithNotifier sets the notifier for reason and failure messages
func WithNotifier(n interfaces.Notifier) SyncOption {
	return func(uc *syncUseCase) {
		uc.notifier = n
	}
}

// WithArchiver stores every fetched batch before it is processed
func WithArchiver(a interfaces.Archiver) SyncOption {
	return func(uc *syncUseCase) {
		uc.archiver = a
	}
}

// WithSweep runs the sweep after the notifications are reconciled
func WithSweep(s interfaces.SweepUseCase) SyncOption {
	return func(uc *syncUseCase) {
		uc.sweeper = s
	}
}

// WithActionHook registers a hook called for every reconciled event
func WithActionHook(h ActionHook) SyncOption {
	return func(uc *syncUseCase) {
		uc.hook = h
	}
}

// WithoutAcknowledge never marks notifications as read. Used by test harnesses.
func WithoutAcknowledge() SyncOption {
	return func(uc *syncUseCase) {
		uc.skipAck = true
	}
}

// WithDryRun evaluates the policy against the store but performs no writes
func WithDryRun() SyncOption {
	return func(uc *syncUseCase) {
		uc.dryRun = true
	}
}

// WithSyncLock shares a write lock with other use cases touching the same store
func WithSyncLock(mu *sync.Mutex) SyncOption {
	return func(uc *syncUseCase) {
		uc.lock = mu
	}
}

// NewSync creates a new instance of SyncUseCase
func NewSync(source interfaces.NotificationSource, store interfaces.TaskStore, policy *model.Policy, opts ...SyncOption) interfaces.SyncUseCase {
	uc := &syncUseCase{
		source:   source,
		store:    store,
		policy:   policy,
		notifier: nopNotifier{},
		lock:     &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run fetches unread notifications and reconciles them one by one. Only the
// fetch is fatal; per-record failures are logged and counted in the report.
func (uc *syncUseCase) Run(ctx context.Context) (*model.RunReport, error) {
	logger := ctxlog.From(ctx)
	report := &model.RunReport{}

	if err := uc.reconcileAll(ctx, report); err != nil {
		return report, err
	}

	if uc.sweeper != nil && !uc.dryRun {
		sweepReport, err := uc.sweeper.Sweep(ctx)
		report.Merge(sweepReport)
		if err != nil {
			logger.Error("Sweep failed", "error", err)
			report.Failed++
		}
	}

	logger.Info("Sync finished", report.LogAttrs()...)
	return report, nil
}

func (uc *syncUseCase) reconcileAll(ctx context.Context, report *model.RunReport) error {
	logger := ctxlog.From(ctx)

	// check-then-create is not atomic against the store
	uc.lock.Lock()
	defer uc.lock.Unlock()

	var batch []model.RawNotification
	fetchedAt := time.Now()
	if err := callWithTimeout(ctx, uc.policy, func(ctx context.Context) error {
		var err error
		batch, err = uc.source.ListUnread(ctx)
		return err
	}); err != nil {
		return goerr.Wrap(err, "failed to fetch notifications", goerr.T(model.ErrTagExternal))
	}
	report.Fetched = len(batch)
	logger.Info("Fetched unread notifications", "count", len(batch))

	if uc.archiver != nil && len(batch) > 0 {
		if err := callWithTimeout(ctx, uc.policy, func(ctx context.Context) error {
			return uc.archiver.Save(ctx, fetchedAt, batch)
		}); err != nil {
			logger.Warn("Failed to archive notifications", "error", err)
		}
	}

	for i, raw := range batch {
		if err := ctx.Err(); err != nil {
			return goerr.Wrap(err, "sync cancelled",
				goerr.V("processed", i),
				goerr.V("remaining", len(batch)-i),
			)
		}
		uc.processRecord(ctx, raw, report)
	}

	return nil
}

func (uc *syncUseCase) processRecord(ctx context.Context, raw model.RawNotification, report *model.RunReport) {
	logger := ctxlog.From(ctx)

	ev, err := model.ParseNotification(raw)
	if err != nil {
		logger.Warn("Skipping malformed notification", "error", err)
		report.Malformed++
		uc.notifyFailure(ctx, err)
		return
	}

	logger = logger.With(
		"reason", ev.Reason,
		"identity_key", ev.IdentityKey(),
		"notification_id", ev.SourceNotificationID,
	)
	ctx = ctxlog.With(ctx, logger)

	action, err := Reconcile(ctx, uc.policy, ev, uc.lookup)
	if err != nil {
		logger.Error("Failed to reconcile notification", "error", err)
		report.Failed++
		uc.notifyFailure(ctx, err)
		return
	}

	if uc.hook != nil {
		uc.hook(ev, action)
	}

	if uc.dryRun {
		countPlanned(report, action)
		return
	}

	if action.Type != model.ActionSkip && uc.policy.Notify.Has(ev.Reason) {
		uc.notifier.Send(ctx, &model.Message{
			Title:   "GitHub " + string(ev.Reason),
			Body:    ev.SubjectTitle,
			Urgency: model.UrgencyNormal,
		})
	}

	// Acknowledge before creating: a crash in between loses a task instead of
	// duplicating it on the next run.
	if action.ShouldAcknowledge() && !uc.skipAck && !raw.IsTestFixture() {
		if err := uc.acknowledge(ctx, ev); err != nil {
			logger.Error("Failed to mark notification as read", "error", err)
			report.Failed++
			uc.notifyFailure(ctx, err)
			return
		}
		report.Acknowledged++
	}

	switch action.Type {
	case model.ActionSkip:
		logger.Debug("Skipped notification", "cause", action.Cause)
		report.Skipped++

	case model.ActionAcknowledgeOnly:
		logger.Debug("Acknowledged notification without task")

	case model.ActionCreate:
		spec := model.NewTaskSpec(ev, action.Priority)
		var id string
		if err := callWithTimeout(ctx, uc.policy, func(ctx context.Context) error {
			var err error
			id, err = uc.store.Create(ctx, spec)
			return err
		}); err != nil {
			logger.Error("Failed to create task", "error", err)
			report.Failed++
			uc.notifyFailure(ctx, err)
			return
		}
		logger.Info("Created task",
			"task_id", id,
			"description", spec.Description,
			"priority", spec.Priority,
		)
		report.Created++
	}
}

func (uc *syncUseCase) lookup(ctx context.Context, key string, tags []string) (bool, error) {
	var exists bool
	err := callWithTimeout(ctx, uc.policy, func(ctx context.Context) error {
		var err error
		exists, err = uc.store.Exists(ctx, key, tags)
		return err
	})
	return exists, err
}

func (uc *syncUseCase) acknowledge(ctx context.Context, ev *model.Event) error {
	if ev.SourceNotificationID == "" {
		return goerr.New("notification has no thread id", goerr.T(model.ErrTagMalformedRecord))
	}
	return callWithTimeout(ctx, uc.policy, func(ctx context.Context) error {
		return uc.source.MarkRead(ctx, ev.SourceNotificationID)
	})
}

func (uc *syncUseCase) notifyFailure(ctx context.Context, err error) {
	if uc.dryRun {
		return
	}
	uc.notifier.Send(ctx, &model.Message{
		Title:   "GitHub",
		Body:    "Error: " + err.Error(),
		Urgency: model.UrgencyCritical,
	})
}

func countPlanned(report *model.RunReport, action model.Action) {
	switch action.Type {
	case model.ActionSkip:
		report.Skipped++
	case model.ActionCreate:
		report.Created++
	}
}

type nopNotifier struct{}

func (nopNotifier) Send(context.Context, *model.Message) {}
