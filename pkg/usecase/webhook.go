package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/utils/async"
)

type webhookUseCase struct {
	sweeper interfaces.SweepUseCase
}

// NewWebhook creates a new instance of WebhookUseCase. sweeper may be nil, in
// which case events are only logged.
func NewWebhook(sweeper interfaces.SweepUseCase) *webhookUseCase {
	return &webhookUseCase{sweeper: sweeper}
}

// ProcessEvent starts a background sweep when a pull request gets closed, so
// review tasks are finished without waiting for the next scheduled run
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"number", event.Number,
		"sender", event.Sender,
		"triggers_sweep", event.TriggersSweep(),
	)

	if !event.TriggersSweep() || uc.sweeper == nil {
		return nil
	}

	async.Dispatch(ctx, "webhook-sweep", func(ctx context.Context) error {
		report, err := uc.sweeper.Sweep(ctx)
		if err != nil {
			return err
		}
		ctxlog.From(ctx).Info("Webhook triggered sweep finished",
			"delivery_id", event.ID,
			"closed", len(report.Closed),
		)
		return nil
	})

	return nil
}
