package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/archive"
)

// Archive holds raw notification archive configuration
type Archive struct {
	File      string
	GCSBucket string
	GCSPrefix string
}

// Flags returns CLI flags for archive configuration
func (c *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-file",
			Usage:       "JSON file keeping every fetched notification batch",
			Destination: &c.File,
			Sources:     cli.EnvVars("GHTASK_ARCHIVE_FILE"),
		},
		&cli.StringFlag{
			Name:        "archive-gcs-bucket",
			Usage:       "Cloud Storage bucket keeping every fetched notification batch",
			Destination: &c.GCSBucket,
			Sources:     cli.EnvVars("GHTASK_ARCHIVE_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "archive-gcs-prefix",
			Usage:       "Object prefix in the archive bucket",
			Value:       "notifications",
			Destination: &c.GCSPrefix,
			Sources:     cli.EnvVars("GHTASK_ARCHIVE_GCS_PREFIX"),
		},
	}
}

// Build returns the configured archiver, or nil when archiving is disabled
func (c *Archive) Build(ctx context.Context) (interfaces.Archiver, func(), error) {
	switch {
	case c.File != "" && c.GCSBucket != "":
		return nil, nil, goerr.New("--archive-file and --archive-gcs-bucket are exclusive", goerr.T(model.ErrTagConfig))
	case c.File != "":
		return archive.NewFile(c.File), func() {}, nil
	case c.GCSBucket != "":
		a, err := archive.NewGCS(ctx, c.GCSBucket, c.GCSPrefix)
		if err != nil {
			return nil, nil, err
		}
		return a, func() { _ = a.Shutdown() }, nil
	default:
		return nil, func() {}, nil
	}
}
