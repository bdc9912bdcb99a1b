package cli

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghtask/pkg/cli/config"
	"github.com/m-mizutani/ghtask/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg config.Logger
		sentryCfg config.Sentry
		logger    *slog.Logger
		flush     = func() {}
	)

	app := &cli.Command{
		Name:    "ghtask",
		Usage:   "Turn GitHub notifications into tasks",
		Version: types.Version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			sentryFlush, err := sentryCfg.Configure()
			if err != nil {
				return nil, err
			}
			flush = sentryFlush
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdSync(),
			cmdSweep(),
			cmdServe(),
		},
	}

	// flush is replaced once Sentry is configured
	defer func() { flush() }()

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentry.CaptureException(err)
		return err
	}

	return nil
}
