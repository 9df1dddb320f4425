package monitor

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/egigoka/telegram-update-checker/internal/datastore"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// URLCheckerDeps are the collaborators of a URLChecker. History is optional.
type URLCheckerDeps struct {
	URLs      URLSource
	Fetcher   ContentFetcher
	Snapshots SnapshotStore
	Differ    DiffEngine
	Reporter  Reporter
	History   HistoryRecorder
	Lock      *datastore.StateLock
	Clock     common.Clock
	// Jitter returns a value in [0, 1); defaults to math/rand.
	Jitter func() float64
}

// URLChecker runs fetch-diff-notify cycles over the watch list.
type URLChecker struct {
	deps              URLCheckerDeps
	interval          time.Duration
	notifyOnFirstSeen bool
	logger            zerolog.Logger
}

// NewURLChecker creates a new URLChecker
func NewURLChecker(deps URLCheckerDeps, cfg config.MonitorConfig, logger zerolog.Logger) (*URLChecker, error) {
	switch {
	case deps.URLs == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "url source")
	case deps.Fetcher == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "fetcher")
	case deps.Snapshots == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "snapshot store")
	case deps.Differ == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "differ")
	case deps.Reporter == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "reporter")
	}
	if deps.Lock == nil {
		deps.Lock = datastore.NewStateLock()
	}
	if deps.Clock == nil {
		deps.Clock = common.NewRealClock()
	}
	if deps.Jitter == nil {
		deps.Jitter = rand.Float64
	}

	return &URLChecker{
		deps:              deps,
		interval:          cfg.CheckInterval(),
		notifyOnFirstSeen: cfg.NotifyOnFirstSeen,
		logger:            logger.With().Str("component", "URLChecker").Logger(),
	}, nil
}

// RunOnce checks every watched URL once, in watch-list order. A failing
// URL never stops the cycle; its error is in its CheckResult. The returned
// error is set only when the watch list cannot be read or ctx ends early.
func (uc *URLChecker) RunOnce(ctx context.Context, trigger Trigger) (CycleSummary, error) {
	summary := CycleSummary{
		CycleID:   uuid.NewString(),
		Trigger:   trigger,
		StartedAt: uc.deps.Clock.Now(),
	}
	cycleLogger := uc.logger.With().Str("cycle_id", summary.CycleID).Str("trigger", string(trigger)).Logger()

	urls, err := uc.deps.URLs.List()
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Failed to read watch list, skipping cycle")
		summary.FinishedAt = uc.deps.Clock.Now()
		return summary, err
	}

	cycleLogger.Info().Int("url_count", len(urls)).Msg("Check cycle started")
	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}
		summary.Results = append(summary.Results, uc.CheckURL(ctx, url))
	}
	summary.FinishedAt = uc.deps.Clock.Now()

	cycleLogger.Info().
		Int("checked", len(summary.Results)).
		Int("changes", summary.Changes()).
		Int("errors", summary.Errors()).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("Check cycle finished")

	uc.recordHistory(ctx, summary, cycleLogger)
	return summary, ctx.Err()
}

// RunForever runs cycles until ctx is cancelled, sleeping the check
// interval plus or minus up to half of it between cycles.
func (uc *URLChecker) RunForever(ctx context.Context) error {
	uc.logger.Info().Dur("interval", uc.interval).Msg("Periodic checker started")
	for {
		if _, err := uc.RunOnce(ctx, TriggerTimer); err != nil && ctx.Err() == nil {
			uc.logger.Error().Err(err).Msg("Check cycle failed")
		}

		delay := uc.NextDelay()
		uc.logger.Debug().Dur("delay", delay).Msg("Sleeping until next cycle")
		if err := uc.deps.Clock.Sleep(ctx, delay); err != nil {
			uc.logger.Info().Msg("Periodic checker stopped")
			return err
		}
	}
}

// NextDelay returns the jittered wait before the next cycle, uniformly
// distributed in [interval/2, interval*3/2).
func (uc *URLChecker) NextDelay() time.Duration {
	half := uc.interval / 2
	return half + time.Duration(uc.deps.Jitter()*float64(uc.interval))
}

// CheckURL runs one fetch-compare-notify-store step for url. The fetch runs
// outside the state lock; the rest runs under it.
func (uc *URLChecker) CheckURL(ctx context.Context, url string) CheckResult {
	result := CheckResult{URL: url}
	urlLogger := uc.logger.With().Str("url", url).Logger()

	content, err := uc.deps.Fetcher.Fetch(ctx, url)
	if err != nil {
		result.Err = err
		urlLogger.Warn().Err(err).Msg("Fetch failed")
		uc.reportError(ctx, url, err, urlLogger)
		return result
	}

	err = uc.deps.Lock.WithLock(func() error {
		return uc.compareAndNotify(ctx, url, content, &result)
	})
	if err != nil {
		result.Err = err
		urlLogger.Error().Err(err).Msg("Check failed")
		// a failed notification is not reported through the same channel again
		if !common.IsTransportError(err) {
			uc.reportError(ctx, url, err, urlLogger)
		}
	}
	return result
}

func (uc *URLChecker) compareAndNotify(ctx context.Context, url, content string, result *CheckResult) error {
	previous, found, err := uc.deps.Snapshots.Read(url)
	if err != nil {
		return err
	}
	if found && previous == content {
		return nil
	}

	if !found {
		result.Baseline = true
		if !uc.notifyOnFirstSeen {
			uc.logger.Info().Str("url", url).Msg("First fetch stored as baseline")
			return uc.deps.Snapshots.Write(url, content)
		}
	}

	diff := uc.deps.Differ.Diff(previous, content)
	if diff.Empty() {
		if !found {
			uc.logger.Info().Str("url", url).Msg("First fetch has nothing to report, stored as baseline")
			return uc.deps.Snapshots.Write(url, content)
		}
		uc.logger.Debug().Str("url", url).Msg("Content differs only cosmetically")
		return nil
	}
	result.Changed = true

	at := uc.deps.Clock.Now()
	if found {
		err = uc.deps.Reporter.ReportChange(ctx, url, at, diff)
	} else {
		err = uc.deps.Reporter.ReportFirstSeen(ctx, url, at, diff)
	}
	if err != nil {
		return err
	}
	result.Notified = true

	uc.logger.Info().
		Str("url", url).
		Int("added", diff.Added).
		Int("removed", diff.Removed).
		Bool("truncated", diff.Truncated).
		Msg("Change notified")
	return uc.deps.Snapshots.Write(url, content)
}

func (uc *URLChecker) reportError(ctx context.Context, url string, cause error, logger zerolog.Logger) {
	if errors.Is(cause, context.Canceled) {
		return
	}
	if err := uc.deps.Reporter.ReportError(ctx, url, cause); err != nil {
		logger.Error().Err(err).Msg("Failed to report error")
	}
}

func (uc *URLChecker) recordHistory(ctx context.Context, summary CycleSummary, logger zerolog.Logger) {
	if uc.deps.History == nil {
		return
	}
	// the cycle is recorded even when ctx was cancelled mid-cycle
	if err := uc.deps.History.RecordCycle(context.WithoutCancel(ctx), summary.Record()); err != nil {
		logger.Warn().Err(err).Msg("Failed to record cycle history")
	}
}
