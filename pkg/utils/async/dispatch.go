package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler in a new goroutine detached from the caller's
// cancellation. The logger of ctx is carried over. Panics and returned errors
// are logged under name and reported to Sentry when a client is configured.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		logger := ctxlog.From(newCtx).With("task", name)
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetTag("task", name)

		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()))
				hub.Recover(fmt.Errorf("panic in async handler %s: %v", name, r))
			}
		}()

		if err := handler(newCtx); err != nil {
			logger.Error("error in async handler", "error", err)
			hub.CaptureException(err)
		}
	}()
}

// newBackgroundContext returns context.Background() carrying the ctxlog logger
func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
