package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/datastore"
	"github.com/egigoka/telegram-update-checker/internal/differ"
)

// Trigger names what started a check cycle
type Trigger string

const (
	TriggerTimer   Trigger = "timer"
	TriggerCommand Trigger = "command"
	TriggerOnetime Trigger = "onetime"
)

// ContentFetcher returns the current content of a URL
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// URLSource lists the URLs to check, in order
type URLSource interface {
	List() ([]string, error)
}

// SnapshotStore reads and writes the last notified content per URL
type SnapshotStore interface {
	Read(url string) (string, bool, error)
	Write(url, content string) error
}

// DiffEngine compares two versions of a document
type DiffEngine interface {
	Diff(previous, current string) differ.Result
}

// Reporter delivers checker outcomes to the user
type Reporter interface {
	ReportChange(ctx context.Context, url string, at time.Time, diff differ.Result) error
	ReportFirstSeen(ctx context.Context, url string, at time.Time, diff differ.Result) error
	ReportError(ctx context.Context, url string, err error) error
}

// HistoryRecorder persists finished cycles
type HistoryRecorder interface {
	RecordCycle(ctx context.Context, record datastore.CycleRecord) error
}

// CheckResult is the outcome of checking one URL in one cycle
type CheckResult struct {
	URL string
	// Changed is true when a non-empty diff was found
	Changed bool
	// Notified is true when a notification was sent and the snapshot advanced
	Notified bool
	// Baseline is true when the URL had no snapshot before this check
	Baseline bool
	Err      error
}

// CycleSummary collects the results of one pass over the watch list
type CycleSummary struct {
	CycleID    string
	Trigger    Trigger
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []CheckResult
}

// Changes returns how many URLs changed
func (s CycleSummary) Changes() int {
	count := 0
	for _, r := range s.Results {
		if r.Changed {
			count++
		}
	}
	return count
}

// Errors returns how many URLs failed
func (s CycleSummary) Errors() int {
	count := 0
	for _, r := range s.Results {
		if r.Err != nil {
			count++
		}
	}
	return count
}

// Failed lists the URLs that failed
func (s CycleSummary) Failed() []string {
	var urls []string
	for _, r := range s.Results {
		if r.Err != nil {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// String renders the one-line summary sent after an on-demand check
func (s CycleSummary) String() string {
	return fmt.Sprintf("Checked %d URLs: %d changed, %d errors.", len(s.Results), s.Changes(), s.Errors())
}

// Record converts the summary into a history record
func (s CycleSummary) Record() datastore.CycleRecord {
	return datastore.CycleRecord{
		CycleID:     s.CycleID,
		Trigger:     string(s.Trigger),
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		URLsChecked: len(s.Results),
		Changes:     s.Changes(),
		Errors:      s.Errors(),
	}
}
