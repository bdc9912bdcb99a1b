package cli

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

func cmdSweep() *cli.Command {
	var cfg appConfig

	return &cli.Command{
		Name:  "sweep",
		Usage: "Close tasks whose pull request is closed or merged",
		Flags: cfg.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			d, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			started := time.Now()
			report, err := d.newSweep().Sweep(ctx)
			if err != nil {
				return err
			}
			printReport(os.Stdout, "sweep", started, report)
			return nil
		},
	}
}
