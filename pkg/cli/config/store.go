package config

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/firestore"
	"github.com/m-mizutani/ghtask/pkg/infra/memory"
	"github.com/m-mizutani/ghtask/pkg/infra/sqlstore"
	"github.com/m-mizutani/ghtask/pkg/infra/taskwarrior"
)

// Store selects and configures the task store backend
type Store struct {
	Backend string

	TaskBin string

	FirestoreProjectID   string
	FirestoreDatabaseID  string
	FirestoreCollection  string
	FirestoreCredentials string

	SQLDriver string
	SQLDSN    string `masq:"secret"`
	SQLTable  string
}

// Flags returns CLI flags for task store configuration
func (c *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Task store backend (taskwarrior, firestore, sql, memory)",
			Value:       "taskwarrior",
			Destination: &c.Backend,
			Sources:     cli.EnvVars("GHTASK_STORE"),
		},
		&cli.StringFlag{
			Name:        "task-bin",
			Usage:       "Path of the Taskwarrior binary",
			Value:       "task",
			Destination: &c.TaskBin,
			Sources:     cli.EnvVars("GHTASK_TASK_BIN"),
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the Firestore database",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("GHTASK_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.FirestoreDatabaseID,
			Sources:     cli.EnvVars("GHTASK_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection of tracked items",
			Value:       "ghtask_items",
			Destination: &c.FirestoreCollection,
			Sources:     cli.EnvVars("GHTASK_FIRESTORE_COLLECTION"),
		},
		&cli.StringFlag{
			Name:        "firestore-credentials",
			Usage:       "Service account key file, default credentials are used when empty",
			Destination: &c.FirestoreCredentials,
			Sources:     cli.EnvVars("GHTASK_FIRESTORE_CREDENTIALS"),
		},
		&cli.StringFlag{
			Name:        "sql-driver",
			Usage:       "SQL driver (sqlite, postgres)",
			Value:       "sqlite",
			Destination: &c.SQLDriver,
			Sources:     cli.EnvVars("GHTASK_SQL_DRIVER"),
		},
		&cli.StringFlag{
			Name:        "sql-dsn",
			Usage:       "SQL data source name",
			Destination: &c.SQLDSN,
			Sources:     cli.EnvVars("GHTASK_SQL_DSN"),
		},
		&cli.StringFlag{
			Name:        "sql-table",
			Usage:       "SQL table of tracked items",
			Value:       "ghtask_items",
			Destination: &c.SQLTable,
			Sources:     cli.EnvVars("GHTASK_SQL_TABLE"),
		},
	}
}

// Build opens the configured store. The returned function releases it.
func (c *Store) Build(ctx context.Context) (interfaces.TaskStore, func(), error) {
	switch strings.ToLower(c.Backend) {
	case "", "taskwarrior":
		return taskwarrior.New(c.TaskBin), func() {}, nil

	case "firestore":
		opts := []firestore.Option{
			firestore.WithDatabaseID(c.FirestoreDatabaseID),
			firestore.WithCollection(c.FirestoreCollection),
		}
		if c.FirestoreCredentials != "" {
			opts = append(opts, firestore.WithCredentialsFile(c.FirestoreCredentials))
		}
		store, err := firestore.New(ctx, c.FirestoreProjectID, opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Shutdown() }, nil

	case "sql":
		store, err := sqlstore.Open(sqlstore.Config{
			Driver:      c.SQLDriver,
			DSN:         c.SQLDSN,
			Table:       c.SQLTable,
			AutoMigrate: true,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Shutdown() }, nil

	case "memory":
		return memory.New(), func() {}, nil

	default:
		return nil, nil, goerr.New("unknown task store backend",
			goerr.V("store", c.Backend),
			goerr.T(model.ErrTagConfig),
		)
	}
}
