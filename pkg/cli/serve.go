package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghtask/pkg/cli/config"
	controller "github.com/m-mizutani/ghtask/pkg/controller/http"
	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/metrics"
	"github.com/m-mizutani/ghtask/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		cfg       appConfig
		serverCfg config.Server
		noSweep   bool
	)

	flags := append(serverCfg.Flags(), cfg.flags()...)
	flags = append(flags, cfg.github.WebhookFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "no-sweep",
		Usage:       "Do not close tasks after periodic runs",
		Destination: &noSweep,
		Sources:     cli.EnvVars("GHTASK_NO_SWEEP"),
	})

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server and run sync periodically",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			d, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			recorder := metrics.New()
			sweepUC := &observedSweep{inner: d.newSweep(), recorder: recorder}

			var syncUC interfaces.SyncUseCase
			if serverCfg.Interval > 0 {
				syncUC, err = d.newSync(ctx, &cfg, noSweep)
				if err != nil {
					return err
				}
			}

			server, err := controller.NewServer(
				ctx,
				usecase.NewWebhook(sweepUC),
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(cfg.github.WebhookSecret),
				controller.WithMetricsHandler(recorder.Handler()),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			logger.Info("Starting ghtask server",
				slog.String("addr", serverCfg.Addr),
				slog.Duration("interval", serverCfg.Interval),
				slog.Bool("webhook", cfg.github.WebhookSecret != ""),
			)

			// Start server in goroutine
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			runCtx, stopRuns := context.WithCancel(ctx)
			defer stopRuns()
			if syncUC != nil {
				go runPeriodically(runCtx, serverCfg.Interval, syncUC, recorder)
			}

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}
			stopRuns()

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// runPeriodically runs sync immediately and then every interval until ctx is done
func runPeriodically(ctx context.Context, interval time.Duration, uc interfaces.SyncUseCase, recorder *metrics.Recorder) {
	logger := ctxlog.From(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		started := time.Now()
		report, err := uc.Run(ctx)
		recorder.Observe("sync", started, report, err)
		if err != nil && ctx.Err() == nil {
			logger.Error("Periodic sync failed", "error", err)
			sentry.CaptureException(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// observedSweep records webhook triggered sweeps in metrics
type observedSweep struct {
	inner    interfaces.SweepUseCase
	recorder *metrics.Recorder
}

func (s *observedSweep) Sweep(ctx context.Context) (*model.RunReport, error) {
	started := time.Now()
	report, err := s.inner.Sweep(ctx)
	s.recorder.Observe("sweep", started, report, err)
	return report, err
}
