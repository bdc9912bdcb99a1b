package interfaces

import (
	"context"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// SyncUseCase turns unread notifications into tracked items
type SyncUseCase interface {
	// Run fetches, reconciles and, unless disabled, sweeps in one pass
	Run(ctx context.Context) (*model.RunReport, error)
}

// SweepUseCase closes tracked items whose upstream pull request is finalized
type SweepUseCase interface {
	Sweep(ctx context.Context) (*model.RunReport, error)
}

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}
