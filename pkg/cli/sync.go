package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/usecase"
)

func cmdSync() *cli.Command {
	var (
		cfg          appConfig
		dryRun       bool
		noSweep      bool
		skipMarkRead bool
	)

	flags := append(cfg.flags(),
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Print planned actions without marking read, creating or closing",
			Destination: &dryRun,
		},
		&cli.BoolFlag{
			Name:        "no-sweep",
			Usage:       "Do not close tasks of finished pull requests",
			Destination: &noSweep,
			Sources:     cli.EnvVars("GHTASK_NO_SWEEP"),
		},
		&cli.BoolFlag{
			Name:        "skip-mark-read",
			Usage:       "Never mark notifications as read",
			Destination: &skipMarkRead,
			Sources:     cli.EnvVars("GHTASK_SKIP_MARK_READ"),
		},
	)

	return &cli.Command{
		Name:  "sync",
		Usage: "Create tasks from unread GitHub notifications",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			d, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			var extra []usecase.SyncOption
			if skipMarkRead {
				extra = append(extra, usecase.WithoutAcknowledge())
			}
			if dryRun {
				plan := newPlanPrinter(os.Stdout)
				extra = append(extra, usecase.WithDryRun(), usecase.WithActionHook(plan.print))
			}

			uc, err := d.newSync(ctx, &cfg, noSweep || dryRun, extra...)
			if err != nil {
				return err
			}

			started := time.Now()
			report, err := uc.Run(ctx)
			if err != nil {
				return err
			}
			printReport(os.Stdout, "sync", started, report)
			return nil
		},
	}
}

type planPrinter struct {
	w io.Writer
}

func newPlanPrinter(w io.Writer) *planPrinter {
	return &planPrinter{w: w}
}

var (
	createColor = color.New(color.FgGreen, color.Bold)
	ackColor    = color.New(color.FgYellow)
	skipColor   = color.New(color.FgHiBlack)
	labelColor  = color.New(color.FgCyan)
)

func (p *planPrinter) print(ev *model.Event, action model.Action) {
	var label string
	switch action.Type {
	case model.ActionCreate:
		label = createColor.Sprintf("%-8s", "create")
		if action.Priority == model.PriorityHigh {
			label += createColor.Sprint(" (high)")
		}
	case model.ActionAcknowledgeOnly:
		label = ackColor.Sprintf("%-8s", "ack")
	default:
		label = skipColor.Sprintf("%-8s", "skip:"+string(action.Cause))
	}

	_, _ = color.New().Fprintf(p.w, "%s %s %s\n",
		label,
		labelColor.Sprintf("%-18s", ev.Reason),
		ev.IdentityKey(),
	)
}

func printReport(w io.Writer, command string, started time.Time, report *model.RunReport) {
	_, _ = labelColor.Fprintf(w, "%s finished in %s\n", command, time.Since(started).Round(time.Millisecond))
	_, _ = color.New().Fprintf(w,
		"  fetched=%d created=%d skipped=%d acknowledged=%d malformed=%d failed=%d closed=%d\n",
		report.Fetched, report.Created, report.Skipped, report.Acknowledged,
		report.Malformed, report.Failed, len(report.Closed),
	)
	for _, key := range report.Closed {
		_, _ = createColor.Fprintf(w, "  closed %s\n", key)
	}
}
