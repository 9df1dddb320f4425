package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/egigoka/telegram-update-checker/internal/datastore"
	"github.com/egigoka/telegram-update-checker/internal/differ"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkerFixture struct {
	checker   *URLChecker
	fetcher   *fakeFetcher
	reporter  *fakeReporter
	snapshots *datastore.SnapshotStore
	clock     *fakeClock
}

func newCheckerFixture(t *testing.T, urls []string, normalizer string, mutate func(*URLCheckerDeps, *config.MonitorConfig)) *checkerFixture {
	t.Helper()

	snapshots, err := datastore.NewSnapshotStore(filepath.Join(t.TempDir(), "url_contents"), zerolog.Nop())
	require.NoError(t, err)
	diffEngine, err := differ.NewDiffer(config.DiffConfig{MaxDiffLength: config.DefaultMaxDiffLength, Normalizer: normalizer}, zerolog.Nop())
	require.NoError(t, err)

	f := &checkerFixture{
		fetcher:   newFakeFetcher(),
		reporter:  &fakeReporter{},
		snapshots: snapshots,
		clock:     newFakeClock(),
	}
	deps := URLCheckerDeps{
		URLs:      staticURLs{urls: urls},
		Fetcher:   f.fetcher,
		Snapshots: snapshots,
		Differ:    diffEngine,
		Reporter:  f.reporter,
		Clock:     f.clock,
		Jitter:    func() float64 { return 0.5 },
	}
	cfg := config.NewDefaultMonitorConfig()
	if mutate != nil {
		mutate(&deps, &cfg)
	}

	f.checker, err = NewURLChecker(deps, cfg, zerolog.Nop())
	require.NoError(t, err)
	return f
}

func TestURLChecker_FirstSeenThenChange(t *testing.T) {
	const url = "https://example.com"
	f := newCheckerFixture(t, []string{url}, config.NormalizerNone, nil)
	ctx := context.Background()

	f.fetcher.set(url, "Hello")
	summary, err := f.checker.RunOnce(ctx, TriggerTimer)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.True(t, summary.Results[0].Baseline)
	assert.False(t, summary.Results[0].Notified)
	assert.Empty(t, f.reporter.changes)

	stored, found, err := f.snapshots.Read(url)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Hello", stored)

	f.fetcher.set(url, "Hello World")
	summary, err = f.checker.RunOnce(ctx, TriggerTimer)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Changes())
	require.Len(t, f.reporter.changes, 1)
	change := f.reporter.changes[0]
	assert.Equal(t, url, change.url)
	assert.False(t, change.firstSeen)
	assert.Contains(t, change.diff.Text, "+Hello World")
	assert.Equal(t, f.clock.Now(), change.at)

	stored, _, err = f.snapshots.Read(url)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", stored)
}

func TestURLChecker_Idempotent(t *testing.T) {
	const url = "https://example.com"
	f := newCheckerFixture(t, []string{url}, config.NormalizerNone, nil)
	ctx := context.Background()
	f.fetcher.set(url, "v1")

	for i := 0; i < 3; i++ {
		_, err := f.checker.RunOnce(ctx, TriggerTimer)
		require.NoError(t, err)
	}

	assert.Empty(t, f.reporter.changes)
	assert.Empty(t, f.reporter.errs)
}

func TestURLChecker_FailedSendKeepsSnapshot(t *testing.T) {
	const url = "https://example.com"
	f := newCheckerFixture(t, []string{url}, config.NormalizerNone, nil)
	ctx := context.Background()
	require.NoError(t, f.snapshots.Write(url, "old"))
	f.fetcher.set(url, "new")

	f.reporter.fail = true
	summary, err := f.checker.RunOnce(ctx, TriggerTimer)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.True(t, summary.Results[0].Changed)
	assert.False(t, summary.Results[0].Notified)
	assert.True(t, common.IsTransportError(summary.Results[0].Err))
	assert.Empty(t, f.reporter.errs, "a failed send is not reported again")

	stored, _, err := f.snapshots.Read(url)
	require.NoError(t, err)
	assert.Equal(t, "old", stored)

	f.reporter.fail = false
	_, err = f.checker.RunOnce(ctx, TriggerTimer)
	require.NoError(t, err)
	require.Len(t, f.reporter.changes, 1)
	stored, _, err = f.snapshots.Read(url)
	require.NoError(t, err)
	assert.Equal(t, "new", stored)
}

func TestURLChecker_ErrorIsolation(t *testing.T) {
	urls := []string{"https://broken.example", "https://ok.example"}
	f := newCheckerFixture(t, urls, config.NormalizerNone, nil)
	ctx := context.Background()
	fetchErr := common.NewTransportError("fetch", urls[0], errors.New("connection refused"))
	f.fetcher.failures[urls[0]] = fetchErr
	require.NoError(t, f.snapshots.Write(urls[1], "a\nb\n"))
	f.fetcher.set(urls[1], "a\nc\n")

	summary, err := f.checker.RunOnce(ctx, TriggerCommand)

	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.ErrorIs(t, summary.Results[0].Err, fetchErr)
	assert.NoError(t, summary.Results[1].Err)
	assert.Equal(t, 1, summary.Errors())
	assert.Equal(t, 1, summary.Changes())
	assert.Equal(t, []string{urls[0]}, summary.Failed())

	require.Len(t, f.reporter.errs, 1)
	assert.Equal(t, urls[0], f.reporter.errs[0].url)
	require.Len(t, f.reporter.changes, 1)
	assert.Equal(t, "@@ -2 +2 @@\n-b\n+c", f.reporter.changes[0].diff.Text)
}

func TestURLChecker_NotifyOnFirstSeen(t *testing.T) {
	const url = "https://example.com"
	f := newCheckerFixture(t, []string{url}, config.NormalizerNone, func(_ *URLCheckerDeps, cfg *config.MonitorConfig) {
		cfg.NotifyOnFirstSeen = true
	})
	f.fetcher.set(url, "Hello")

	summary, err := f.checker.RunOnce(context.Background(), TriggerTimer)

	require.NoError(t, err)
	assert.True(t, summary.Results[0].Baseline)
	assert.True(t, summary.Results[0].Notified)
	require.Len(t, f.reporter.changes, 1)
	assert.True(t, f.reporter.changes[0].firstSeen)
	assert.Equal(t, "@@ -0,0 +1 @@\n+Hello", f.reporter.changes[0].diff.Text)

	stored, found, err := f.snapshots.Read(url)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Hello", stored)
}

func TestURLChecker_NotifyOnFirstSeenEmptyPageStoresBaseline(t *testing.T) {
	const url = "https://example.com/empty"
	f := newCheckerFixture(t, []string{url}, config.NormalizerNone, func(_ *URLCheckerDeps, cfg *config.MonitorConfig) {
		cfg.NotifyOnFirstSeen = true
	})
	f.fetcher.set(url, "")
	ctx := context.Background()

	summary, err := f.checker.RunOnce(ctx, TriggerTimer)
	require.NoError(t, err)
	assert.True(t, summary.Results[0].Baseline)
	assert.False(t, summary.Results[0].Notified)
	assert.Empty(t, f.reporter.changes)

	_, found, err := f.snapshots.Read(url)
	require.NoError(t, err)
	assert.True(t, found)

	summary, err = f.checker.RunOnce(ctx, TriggerTimer)
	require.NoError(t, err)
	assert.False(t, summary.Results[0].Baseline)

	f.fetcher.set(url, "Hello")
	_, err = f.checker.RunOnce(ctx, TriggerTimer)
	require.NoError(t, err)
	require.Len(t, f.reporter.changes, 1)
	assert.False(t, f.reporter.changes[0].firstSeen)
}

// countingSnapshots counts writes to the wrapped store
type countingSnapshots struct {
	SnapshotStore
	mutex  sync.Mutex
	writes int
}

func (c *countingSnapshots) Write(url, content string) error {
	c.mutex.Lock()
	c.writes++
	c.mutex.Unlock()
	return c.SnapshotStore.Write(url, content)
}

func TestURLChecker_ConcurrentCyclesNotifyOnce(t *testing.T) {
	const url = "https://example.com"
	var counting *countingSnapshots
	f := newCheckerFixture(t, []string{url}, config.NormalizerNone, func(deps *URLCheckerDeps, _ *config.MonitorConfig) {
		counting = &countingSnapshots{SnapshotStore: deps.Snapshots}
		deps.Snapshots = counting
	})
	require.NoError(t, f.snapshots.Write(url, "a\nb\n"))
	f.fetcher.set(url, "a\nc\n")

	start := make(chan struct{})
	var wg sync.WaitGroup
	for _, trigger := range []Trigger{TriggerTimer, TriggerCommand} {
		wg.Add(1)
		go func(trigger Trigger) {
			defer wg.Done()
			<-start
			_, err := f.checker.RunOnce(context.Background(), trigger)
			assert.NoError(t, err)
		}(trigger)
	}
	close(start)
	wg.Wait()

	f.reporter.mutex.Lock()
	defer f.reporter.mutex.Unlock()
	require.Len(t, f.reporter.changes, 1)
	assert.Equal(t, "@@ -2 +2 @@\n-b\n+c", f.reporter.changes[0].diff.Text)
	assert.Equal(t, 1, counting.writes)

	stored, _, err := f.snapshots.Read(url)
	require.NoError(t, err)
	assert.Equal(t, "a\nc\n", stored)
}

func TestURLChecker_CosmeticChangeNotNotified(t *testing.T) {
	const url = "https://example.com"
	f := newCheckerFixture(t, []string{url}, config.NormalizerHTML, nil)
	require.NoError(t, f.snapshots.Write(url, "<p>Hello</p>"))
	f.fetcher.set(url, "<p>\n  Hello\n</p>\n")

	summary, err := f.checker.RunOnce(context.Background(), TriggerTimer)

	require.NoError(t, err)
	assert.False(t, summary.Results[0].Changed)
	assert.Empty(t, f.reporter.changes)
	stored, _, err := f.snapshots.Read(url)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello</p>", stored)
}

func TestURLChecker_WatchListFailureSkipsCycle(t *testing.T) {
	listErr := common.NewStateError("read watch list", "urls.txt", errors.New("permission denied"))
	f := newCheckerFixture(t, nil, config.NormalizerNone, func(deps *URLCheckerDeps, _ *config.MonitorConfig) {
		deps.URLs = staticURLs{err: listErr}
	})

	summary, err := f.checker.RunOnce(context.Background(), TriggerTimer)

	assert.ErrorIs(t, err, listErr)
	assert.Empty(t, summary.Results)
	assert.Zero(t, f.fetcher.calls)
}

func TestURLChecker_RecordsHistory(t *testing.T) {
	history, err := datastore.NewHistory(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer history.Close()

	const url = "https://example.com"
	f := newCheckerFixture(t, []string{url}, config.NormalizerNone, func(deps *URLCheckerDeps, _ *config.MonitorConfig) {
		deps.History = history
	})
	f.fetcher.set(url, "Hello")

	summary, err := f.checker.RunOnce(context.Background(), TriggerOnetime)
	require.NoError(t, err)

	last, found, err := history.LastCycle(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, summary.CycleID, last.CycleID)
	assert.Equal(t, "onetime", last.Trigger)
	assert.Equal(t, 1, last.URLsChecked)
}

func TestURLChecker_RunForever(t *testing.T) {
	const url = "https://example.com"
	f := newCheckerFixture(t, []string{url}, config.NormalizerNone, func(_ *URLCheckerDeps, cfg *config.MonitorConfig) {
		cfg.CheckIntervalSeconds = 60
	})
	f.fetcher.set(url, "content")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.clock.cancel = cancel
	f.clock.maxSleeps = 3

	err := f.checker.RunForever(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, f.fetcher.calls)
	require.Len(t, f.clock.sleeps, 3)
	for _, d := range f.clock.sleeps {
		assert.Equal(t, 60*time.Second, d)
	}
}

func TestURLChecker_NextDelayBounds(t *testing.T) {
	tests := []struct {
		jitter   float64
		expected time.Duration
	}{
		{jitter: 0, expected: 30 * time.Minute},
		{jitter: 0.5, expected: time.Hour},
		{jitter: 0.75, expected: 75 * time.Minute},
	}

	for _, tt := range tests {
		jitter := tt.jitter
		f := newCheckerFixture(t, nil, config.NormalizerNone, func(deps *URLCheckerDeps, _ *config.MonitorConfig) {
			deps.Jitter = func() float64 { return jitter }
		})
		assert.Equal(t, tt.expected, f.checker.NextDelay())
	}
}

func TestNewURLChecker_MissingDeps(t *testing.T) {
	_, err := NewURLChecker(URLCheckerDeps{}, config.NewDefaultMonitorConfig(), zerolog.Nop())
	assert.ErrorIs(t, err, common.ErrNotConfigured)
}
