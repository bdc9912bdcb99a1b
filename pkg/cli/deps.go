package cli

import (
	"context"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/ghtask/pkg/cli/config"
	"github.com/m-mizutani/ghtask/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/usecase"
)

// appConfig gathers the configuration shared by every command
type appConfig struct {
	github   config.GitHub
	store    config.Store
	policy   config.Policy
	notifier config.Notifier
	archive  config.Archive
}

func (c *appConfig) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.github.Flags()...)
	flags = append(flags, c.store.Flags()...)
	flags = append(flags, c.policy.Flags()...)
	flags = append(flags, c.notifier.Flags()...)
	flags = append(flags, c.archive.Flags()...)
	return flags
}

// deps holds the adapters built from appConfig
type deps struct {
	policy   *model.Policy
	store    interfaces.TaskStore
	notifier interfaces.Notifier
	prReader interfaces.PullRequestReader
	lock     *sync.Mutex
	closers  []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func (c *appConfig) build(ctx context.Context) (*deps, error) {
	d := &deps{lock: &sync.Mutex{}}

	policy, err := c.policy.Build()
	if err != nil {
		return nil, err
	}
	d.policy = policy

	store, closeStore, err := c.store.Build(ctx)
	if err != nil {
		return nil, err
	}
	d.store = store
	d.closers = append(d.closers, closeStore)

	n, err := c.notifier.Build()
	if err != nil {
		d.Close()
		return nil, err
	}
	d.notifier = n

	reader, err := c.github.NewPullRequestReader()
	if err != nil {
		d.Close()
		return nil, err
	}
	d.prReader = reader

	return d, nil
}

func (d *deps) sweepOptions() []usecase.SweepOption {
	opts := []usecase.SweepOption{usecase.WithSweepLock(d.lock)}
	if d.notifier != nil {
		opts = append(opts, usecase.WithSweepNotifier(d.notifier))
	}
	return opts
}

func (d *deps) newSweep() interfaces.SweepUseCase {
	return usecase.NewSweep(d.store, d.prReader, d.policy, d.sweepOptions()...)
}

// newSync builds the sync use case. The sweep runs after each sync unless noSweep is set.
func (d *deps) newSync(ctx context.Context, c *appConfig, noSweep bool, extra ...usecase.SyncOption) (interfaces.SyncUseCase, error) {
	source, err := c.github.NewClient()
	if err != nil {
		return nil, err
	}

	opts := []usecase.SyncOption{usecase.WithSyncLock(d.lock)}
	if d.notifier != nil {
		opts = append(opts, usecase.WithNotifier(d.notifier))
	}
	if !noSweep {
		opts = append(opts, usecase.WithSweep(d.newSweep()))
	}

	archiver, closeArchive, err := c.archive.Build(ctx)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, closeArchive)
	if archiver != nil {
		opts = append(opts, usecase.WithArchiver(archiver))
	}

	return usecase.NewSync(source, d.store, d.policy, append(opts, extra...)...), nil
}
