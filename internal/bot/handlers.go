package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/monitor"
)

func (d *Dispatcher) execute(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case CommandStart:
		return d.reply(ctx, greetingText)
	case CommandAdd:
		return d.handleAdd(ctx, cmd.Arg)
	case CommandRemove:
		return d.handleRemove(ctx, cmd.Arg)
	case CommandPrint:
		return d.handlePrint(ctx)
	case CommandCheck:
		return d.handleCheck(ctx)
	case CommandStatus:
		return d.handleStatus(ctx)
	default:
		return d.reply(ctx, usageText)
	}
}

func (d *Dispatcher) handleAdd(ctx context.Context, url string) error {
	err := d.deps.Lock.WithLock(func() error {
		return d.deps.URLs.Add(url)
	})
	if err != nil {
		return d.replyFailure(ctx, err)
	}
	return d.reply(ctx, fmt.Sprintf(addedFormat, url))
}

func (d *Dispatcher) handleRemove(ctx context.Context, url string) error {
	var removed bool
	err := d.deps.Lock.WithLock(func() error {
		var removeErr error
		removed, removeErr = d.deps.URLs.Remove(url)
		return removeErr
	})
	if err != nil {
		return d.replyFailure(ctx, err)
	}
	if !removed {
		return d.reply(ctx, fmt.Sprintf(notFoundFormat, url))
	}
	return d.reply(ctx, fmt.Sprintf(removedFormat, url))
}

func (d *Dispatcher) handlePrint(ctx context.Context) error {
	urls, err := d.deps.URLs.List()
	if err != nil {
		return d.replyFailure(ctx, err)
	}
	if len(urls) == 0 {
		return d.reply(ctx, noURLsText)
	}
	return d.reply(ctx, "URLs:\n"+strings.Join(urls, "\n"))
}

func (d *Dispatcher) handleCheck(ctx context.Context) error {
	if err := d.reply(ctx, checkingText); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to acknowledge check command")
	}

	summary, err := d.deps.Checker.RunOnce(ctx, monitor.TriggerCommand)
	if err != nil {
		return d.replyFailure(ctx, err)
	}
	return d.reply(ctx, doneText+"\n"+summary.String())
}

func (d *Dispatcher) handleStatus(ctx context.Context) error {
	urls, err := d.deps.URLs.List()
	if err != nil {
		return d.replyFailure(ctx, err)
	}
	watching := fmt.Sprintf(watchingFormat, len(urls))

	if d.deps.History == nil {
		return d.reply(ctx, noHistoryText+"\n"+watching)
	}
	last, found, err := d.deps.History.LastCycle(ctx)
	if err != nil {
		return d.replyFailure(ctx, err)
	}
	if !found {
		return d.reply(ctx, noHistoryText+"\n"+watching)
	}

	status := fmt.Sprintf(statusFormat,
		last.FinishedAt.Local().Format(timestampLayout),
		last.Trigger,
		last.URLsChecked,
		last.Changes,
		last.Errors,
		last.Duration().Round(time.Millisecond),
	)
	return d.reply(ctx, status+"\n"+watching)
}

func (d *Dispatcher) reply(ctx context.Context, text string) error {
	if err := d.deps.Replier.Send(ctx, text); err != nil {
		return common.WrapError(err, "send reply")
	}
	return nil
}

// replyFailure tells the chat a command failed and returns the cause.
func (d *Dispatcher) replyFailure(ctx context.Context, cause error) error {
	if err := d.reply(ctx, fmt.Sprintf(failureFormat, cause)); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func invalidReply(err error) string {
	var parseErr *common.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf(invalidFormat, parseErr.Reason)
	}
	return invalidText
}
