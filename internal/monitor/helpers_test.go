package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/differ"
)

type fakeClock struct {
	mutex     sync.Mutex
	now       time.Time
	sleeps    []time.Duration
	maxSleeps int
	cancel    context.CancelFunc
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

// Sleep advances the clock. After maxSleeps sleeps it cancels the run.
func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mutex.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	stop := c.maxSleeps > 0 && len(c.sleeps) >= c.maxSleeps
	c.mutex.Unlock()

	if stop && c.cancel != nil {
		c.cancel()
	}
	return ctx.Err()
}

type fakeFetcher struct {
	mutex    sync.Mutex
	contents map[string]string
	failures map[string]error
	calls    int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{contents: map[string]string{}, failures: map[string]error{}}
}

func (f *fakeFetcher) set(url, content string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.contents[url] = content
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.calls++
	if err, ok := f.failures[url]; ok {
		return "", err
	}
	return f.contents[url], nil
}

type reportedChange struct {
	url       string
	at        time.Time
	diff      differ.Result
	firstSeen bool
}

type reportedError struct {
	url string
	err error
}

type fakeReporter struct {
	mutex   sync.Mutex
	changes []reportedChange
	errs    []reportedError
	fail    bool
}

func (r *fakeReporter) ReportChange(_ context.Context, url string, at time.Time, diff differ.Result) error {
	return r.record(reportedChange{url: url, at: at, diff: diff})
}

func (r *fakeReporter) ReportFirstSeen(_ context.Context, url string, at time.Time, diff differ.Result) error {
	return r.record(reportedChange{url: url, at: at, diff: diff, firstSeen: true})
}

func (r *fakeReporter) record(change reportedChange) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.fail {
		return errTransport
	}
	r.changes = append(r.changes, change)
	return nil
}

func (r *fakeReporter) ReportError(_ context.Context, url string, err error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.errs = append(r.errs, reportedError{url: url, err: err})
	return nil
}

type staticURLs struct {
	urls []string
	err  error
}

func (s staticURLs) List() ([]string, error) {
	return s.urls, s.err
}

var errTransport error = common.NewTransportError("send", "", errors.New("send failed"))
