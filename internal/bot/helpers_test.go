package bot

import (
	"context"
	"sync"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/datastore"
	"github.com/egigoka/telegram-update-checker/internal/monitor"
	"github.com/egigoka/telegram-update-checker/internal/telegram"
)

const testChatID int64 = 4242

type fakeClock struct {
	mutex     sync.Mutex
	sleeps    []time.Duration
	maxSleeps int
	cancel    context.CancelFunc
}

func (c *fakeClock) Now() time.Time {
	return time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mutex.Lock()
	c.sleeps = append(c.sleeps, d)
	stop := c.maxSleeps > 0 && len(c.sleeps) >= c.maxSleeps
	c.mutex.Unlock()

	if stop && c.cancel != nil {
		c.cancel()
	}
	return ctx.Err()
}

type pollResult struct {
	messages []telegram.InboundMessage
	err      error
}

// fakeUpdates serves queued poll results, then empty polls.
type fakeUpdates struct {
	mutex   sync.Mutex
	queue   []pollResult
	offsets []int
}

func (f *fakeUpdates) GetUpdates(_ context.Context, offset int) ([]telegram.InboundMessage, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.offsets = append(f.offsets, offset)
	if len(f.queue) == 0 {
		return nil, nil
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next.messages, next.err
}

type memOffsets struct {
	value   int
	stored  bool
	writes  []int
	failAt  int
	failErr error
}

func (m *memOffsets) Get() (int, bool, error) {
	return m.value, m.stored, nil
}

func (m *memOffsets) Set(offset int) error {
	if m.failErr != nil && offset == m.failAt {
		return common.NewStateError("write offset", "offset.txt", m.failErr)
	}
	m.value, m.stored = offset, true
	m.writes = append(m.writes, offset)
	return nil
}

type recordingReplier struct {
	mutex   sync.Mutex
	replies []string
	err     error
}

func (r *recordingReplier) Send(_ context.Context, text string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.replies = append(r.replies, text)
	return r.err
}

type fakeChecker struct {
	summary  monitor.CycleSummary
	err      error
	triggers []monitor.Trigger
}

func (f *fakeChecker) RunOnce(_ context.Context, trigger monitor.Trigger) (monitor.CycleSummary, error) {
	f.triggers = append(f.triggers, trigger)
	return f.summary, f.err
}

type fakeHistory struct {
	record datastore.CycleRecord
	found  bool
	err    error
}

func (f *fakeHistory) LastCycle(context.Context) (datastore.CycleRecord, bool, error) {
	return f.record, f.found, f.err
}

func message(updateID int, text string) telegram.InboundMessage {
	return telegram.InboundMessage{UpdateID: updateID, ChatID: testChatID, Text: text}
}
