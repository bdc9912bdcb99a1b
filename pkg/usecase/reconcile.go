package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// LookupFunc reports whether a pending tracked item with the identity key and
// all of the tags already exists
type LookupFunc func(ctx context.Context, identityKey string, tags []string) (bool, error)

// Reconcile decides what to do with one event. The ignore set wins over every
// other rule and is evaluated without touching the store.
func Reconcile(ctx context.Context, policy *model.Policy, ev *model.Event, lookup LookupFunc) (model.Action, error) {
	if policy.Ignore.Has(ev.Reason) {
		return model.Action{Type: model.ActionSkip, Cause: model.SkipCauseIgnored}, nil
	}

	if !policy.Create.Has(ev.Reason) {
		return model.Action{Type: model.ActionAcknowledgeOnly}, nil
	}

	exists, err := lookup(ctx, ev.IdentityKey(), ev.Tags())
	if err != nil {
		return model.Action{}, goerr.Wrap(err, "failed to look up tracked item",
			goerr.V("identity_key", ev.IdentityKey()),
			goerr.T(model.ErrTagExternal),
		)
	}
	if exists {
		return model.Action{Type: model.ActionSkip, Cause: model.SkipCauseDuplicate}, nil
	}

	priority := model.PriorityNormal
	if policy.HighPriority.Has(ev.Reason) {
		priority = model.PriorityHigh
	}
	return model.Action{Type: model.ActionCreate, Priority: priority}, nil
}

func callWithTimeout(ctx context.Context, policy *model.Policy, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, policy.CallTimeout)
	defer cancel()
	return fn(ctx)
}
