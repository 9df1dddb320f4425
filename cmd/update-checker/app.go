package main

import (
	"context"
	"os"

	"github.com/egigoka/telegram-update-checker/internal/bot"
	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/egigoka/telegram-update-checker/internal/datastore"
	"github.com/egigoka/telegram-update-checker/internal/differ"
	"github.com/egigoka/telegram-update-checker/internal/httpclient"
	"github.com/egigoka/telegram-update-checker/internal/monitor"
	"github.com/egigoka/telegram-update-checker/internal/notifier"
	"github.com/egigoka/telegram-update-checker/internal/telegram"
	"github.com/rs/zerolog"
)

// application holds every wired component of the watcher.
type application struct {
	cfg        *config.GlobalConfig
	watchList  *datastore.WatchList
	history    *datastore.History
	checker    *monitor.URLChecker
	dispatcher *bot.Dispatcher
	notifier   *notifier.Notifier
	logger     zerolog.Logger
}

func newApplication(gCfg *config.GlobalConfig, zLogger zerolog.Logger) (*application, error) {
	app := &application{cfg: gCfg, logger: zLogger}
	storage := gCfg.StorageConfig

	if err := os.MkdirAll(storage.SnapshotDir, 0755); err != nil {
		return nil, common.NewStateError("create snapshot dir", storage.SnapshotDir, err)
	}

	snapshots, err := datastore.NewSnapshotStore(storage.SnapshotDir, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize snapshot store")
	}
	app.watchList, err = datastore.NewWatchList(storage.WatchListFile, storage.InitialURLs, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize watch list")
	}
	offsets, err := datastore.NewOffsetStore(storage.OffsetFile, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize offset store")
	}

	if storage.HistoryDBPath != "" {
		app.history, err = datastore.NewHistory(storage.HistoryDBPath, zLogger)
		if err != nil {
			return nil, common.WrapError(err, "failed to open cycle history")
		}
	} else {
		zLogger.Info().Msg("Cycle history disabled")
	}

	diffEngine, err := differ.NewDiffer(gCfg.DiffConfig, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize differ")
	}

	fetchClient, err := httpclient.NewHTTPClientBuilder(zLogger).
		WithTimeout(gCfg.MonitorConfig.HTTPTimeout()).
		WithInsecureSkipVerify(gCfg.MonitorConfig.InsecureSkipVerify).
		WithProxy(gCfg.MonitorConfig.Proxy).
		WithHTTP2(gCfg.MonitorConfig.EnableHTTP2).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to build fetch HTTP client")
	}
	fetcher := monitor.NewFetcher(fetchClient, gCfg.MonitorConfig, zLogger)

	tgClient, err := telegram.NewClient(gCfg.TelegramConfig, nil, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to connect to telegram")
	}
	app.notifier = notifier.NewNotifier(tgClient, gCfg.TelegramConfig, zLogger)

	lock := datastore.NewStateLock()
	clock := common.NewRealClock()

	checkerDeps := monitor.URLCheckerDeps{
		URLs:      app.watchList,
		Fetcher:   fetcher,
		Snapshots: snapshots,
		Differ:    diffEngine,
		Reporter:  app.notifier,
		Lock:      lock,
		Clock:     clock,
	}
	if app.history != nil {
		checkerDeps.History = app.history
	}
	app.checker, err = monitor.NewURLChecker(checkerDeps, gCfg.MonitorConfig, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize URL checker")
	}

	dispatcherDeps := bot.DispatcherDeps{
		Updates:     tgClient,
		Offsets:     offsets,
		URLs:        app.watchList,
		Checker:     app.checker,
		Replier:     app.notifier,
		Lock:        lock,
		Clock:       clock,
		BotUsername: tgClient.Username(),
	}
	if app.history != nil {
		dispatcherDeps.History = app.history
	}
	app.dispatcher, err = bot.NewDispatcher(dispatcherDeps, gCfg.TelegramConfig, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize command dispatcher")
	}

	return app, nil
}

func (a *application) Close() {
	if a.history == nil {
		return
	}
	if err := a.history.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close cycle history")
	}
}

// mergeTargets appends the URLs of a targets file that are not watched yet.
func (a *application) mergeTargets(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return common.NewStateError("open targets file", path, err)
	}
	defer func() { _ = file.Close() }()

	urls, err := datastore.ReadURLLines(file, path)
	if err != nil {
		return err
	}
	added, err := a.watchList.AddMissing(urls)
	if err != nil {
		return err
	}
	a.logger.Info().Str("file", path).Int("read", len(urls)).Int("added", added).Msg("Merged targets into watch list")
	return nil
}

func (a *application) runOnetime(ctx context.Context) (monitor.CycleSummary, error) {
	return a.checker.RunOnce(ctx, monitor.TriggerOnetime)
}
