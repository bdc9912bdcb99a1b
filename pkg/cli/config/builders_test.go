package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/ghtask/pkg/cli/config"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/notifier"
)

func TestStore_Build(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []string{"", "taskwarrior", "memory"} {
		store, closer, err := (&config.Store{Backend: backend, TaskBin: "task"}).Build(ctx)
		gt.NoError(t, err)
		gt.Value(t, store).NotNil()
		closer()
	}

	store, closer, err := (&config.Store{
		Backend:   "sql",
		SQLDriver: "sqlite",
		SQLDSN:    filepath.Join(t.TempDir(), "ghtask.db"),
		SQLTable:  "ghtask_items",
	}).Build(ctx)
	gt.NoError(t, err)
	gt.Value(t, store).NotNil()
	closer()

	_, _, err = (&config.Store{Backend: "redis"}).Build(ctx)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagConfig))

	_, _, err = (&config.Store{Backend: "firestore"}).Build(ctx)
	gt.Error(t, err)
}

func TestNotifier_Build(t *testing.T) {
	n, err := (&config.Notifier{}).Build()
	gt.NoError(t, err)
	gt.Value(t, n).Nil()

	n, err = (&config.Notifier{Channels: []string{"desktop"}}).Build()
	gt.NoError(t, err)
	_, ok := n.(*notifier.Desktop)
	gt.True(t, ok)

	n, err = (&config.Notifier{
		Channels:        []string{"desktop", "slack"},
		SlackWebhookURL: "https://hooks.slack.com/services/T000/B000/XXX",
	}).Build()
	gt.NoError(t, err)
	multi, ok := n.(notifier.Multi)
	gt.True(t, ok)
	gt.Number(t, len(multi)).Equal(2)

	_, err = (&config.Notifier{Channels: []string{"slack"}}).Build()
	gt.Error(t, err)

	_, err = (&config.Notifier{Channels: []string{"pager"}}).Build()
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagConfig))
}

func TestArchive_Build(t *testing.T) {
	ctx := context.Background()

	a, _, err := (&config.Archive{}).Build(ctx)
	gt.NoError(t, err)
	gt.Value(t, a).Nil()

	a, _, err = (&config.Archive{File: filepath.Join(t.TempDir(), "raw.json")}).Build(ctx)
	gt.NoError(t, err)
	gt.Value(t, a).NotNil()

	_, _, err = (&config.Archive{File: "raw.json", GCSBucket: "bucket"}).Build(ctx)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagConfig))
}

func TestGitHub_NewClient(t *testing.T) {
	_, err := (&config.GitHub{}).NewClient()
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagConfig))

	client, err := (&config.GitHub{Token: "ghp_test", PerPage: 10, MaxPages: 2}).NewClient()
	gt.NoError(t, err)
	gt.Value(t, client).NotNil()

	// Token wins over App credentials
	reader, err := (&config.GitHub{
		Token:          "ghp_test",
		AppID:          1,
		InstallationID: 2,
		PrivateKey:     filepath.Join(t.TempDir(), "missing.pem"),
	}).NewPullRequestReader()
	gt.NoError(t, err)
	gt.Value(t, reader).NotNil()

	_, err = (&config.GitHub{
		AppID:          1,
		InstallationID: 2,
		PrivateKey:     filepath.Join(t.TempDir(), "missing.pem"),
	}).NewPullRequestReader()
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagConfig))
}
