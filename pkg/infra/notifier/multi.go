package notifier

import (
	"context"

	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// Multi fans a message out to every notifier
type Multi []interfaces.Notifier

func (m Multi) Send(ctx context.Context, msg *model.Message) {
	for _, n := range m {
		n.Send(ctx, msg)
	}
}
