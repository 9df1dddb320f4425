package bot

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/egigoka/telegram-update-checker/internal/datastore"
	"github.com/egigoka/telegram-update-checker/internal/monitor"
	"github.com/egigoka/telegram-update-checker/internal/telegram"
	"github.com/rs/zerolog"
)

// UpdateSource long-polls for inbound messages
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int) ([]telegram.InboundMessage, error)
}

// OffsetStore persists the command cursor
type OffsetStore interface {
	Get() (int, bool, error)
	Set(offset int) error
}

// URLRegistry is the watch list as seen by commands
type URLRegistry interface {
	List() ([]string, error)
	Add(url string) error
	Remove(url string) (bool, error)
}

// Checker runs an on-demand check cycle
type Checker interface {
	RunOnce(ctx context.Context, trigger monitor.Trigger) (monitor.CycleSummary, error)
}

// HistoryReader returns the last recorded cycle
type HistoryReader interface {
	LastCycle(ctx context.Context) (datastore.CycleRecord, bool, error)
}

// Replier sends a text reply to the chat
type Replier interface {
	Send(ctx context.Context, text string) error
}

// DispatcherDeps are the collaborators of a Dispatcher. History is optional.
type DispatcherDeps struct {
	Updates     UpdateSource
	Offsets     OffsetStore
	URLs        URLRegistry
	Checker     Checker
	History     HistoryReader
	Replier     Replier
	Lock        *datastore.StateLock
	Clock       common.Clock
	BotUsername string
}

// Dispatcher consumes chat commands with one persistent cursor.
type Dispatcher struct {
	deps         DispatcherDeps
	chatID       int64
	commitBefore bool
	idleBackoff  time.Duration
	errorBackoff time.Duration
	logger       zerolog.Logger
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(deps DispatcherDeps, cfg config.TelegramConfig, logger zerolog.Logger) (*Dispatcher, error) {
	switch {
	case deps.Updates == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "update source")
	case deps.Offsets == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "offset store")
	case deps.URLs == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "url registry")
	case deps.Checker == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "checker")
	case deps.Replier == nil:
		return nil, common.WrapError(common.ErrNotConfigured, "replier")
	}
	if deps.Lock == nil {
		deps.Lock = datastore.NewStateLock()
	}
	if deps.Clock == nil {
		deps.Clock = common.NewRealClock()
	}

	return &Dispatcher{
		deps:         deps,
		chatID:       cfg.ChatID,
		commitBefore: cfg.OffsetCommit != config.OffsetCommitAfterDispatch,
		idleBackoff:  cfg.IdleBackoff(),
		errorBackoff: cfg.ErrorBackoff(),
		logger:       logger.With().Str("component", "Dispatcher").Logger(),
	}, nil
}

// Run polls and dispatches until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	offset, err := d.initialOffset()
	if err != nil {
		return err
	}
	d.logger.Info().Int("offset", offset).Bool("commit_before_dispatch", d.commitBefore).Msg("Command dispatcher started")

	for {
		if err := ctx.Err(); err != nil {
			d.logger.Info().Msg("Command dispatcher stopped")
			return err
		}

		messages, err := d.deps.Updates.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			d.logger.Warn().Err(err).Dur("backoff", d.errorBackoff).Msg("Polling for updates failed")
			_ = d.deps.Clock.Sleep(ctx, d.errorBackoff)
			continue
		}

		if len(messages) == 0 {
			_ = d.deps.Clock.Sleep(ctx, d.idleBackoff)
			continue
		}

		offset, err = d.ProcessBatch(ctx, offset, messages)
		if err != nil {
			d.logger.Error().Err(err).Int("offset", offset).Msg("Batch aborted, polling again")
			_ = d.deps.Clock.Sleep(ctx, d.errorBackoff)
		}
	}
}

// initialOffset reads the persisted cursor. A missing cursor starts at 0,
// which asks the server for every pending update.
func (d *Dispatcher) initialOffset() (int, error) {
	offset, ok, err := d.deps.Offsets.Get()
	if err != nil {
		d.logger.Error().Err(err).Msg("Failed to read command offset")
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return offset, nil
}

// ProcessBatch handles messages in ascending update order and returns the
// new cursor. The cursor only moves once the matching value is persisted;
// a persistence failure stops the batch with a *common.StateError.
func (d *Dispatcher) ProcessBatch(ctx context.Context, offset int, messages []telegram.InboundMessage) (int, error) {
	sorted := make([]telegram.InboundMessage, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].UpdateID < sorted[j].UpdateID })

	for _, msg := range sorted {
		if msg.UpdateID < offset {
			d.logger.Debug().Int("update_id", msg.UpdateID).Int("offset", offset).Msg("Skipping already processed update")
			continue
		}
		next := msg.UpdateID + 1

		if d.commitBefore {
			if err := d.deps.Offsets.Set(next); err != nil {
				return offset, err
			}
			offset = next
			d.handleLogged(ctx, msg)
			continue
		}

		d.handleLogged(ctx, msg)
		if err := d.deps.Offsets.Set(next); err != nil {
			return offset, err
		}
		offset = next
	}
	return offset, nil
}

func (d *Dispatcher) handleLogged(ctx context.Context, msg telegram.InboundMessage) {
	if err := d.HandleMessage(ctx, msg); err != nil {
		d.logger.Error().Err(err).Int("update_id", msg.UpdateID).Msg("Failed to handle message")
	}
}

// HandleMessage runs the command in msg and sends its replies. Messages
// from other chats and messages without text are ignored.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg telegram.InboundMessage) error {
	msgLogger := d.logger.With().Int("update_id", msg.UpdateID).Int64("chat_id", msg.ChatID).Logger()

	if msg.ChatID != d.chatID {
		msgLogger.Warn().Msg("Ignoring message from unexpected chat")
		return nil
	}
	if msg.Text == "" {
		msgLogger.Debug().Msg("Ignoring update without text")
		return nil
	}

	cmd, err := ParseCommand(msg.Text, d.deps.BotUsername)
	if err != nil {
		if errors.Is(err, errAddressedElsewhere) {
			return nil
		}
		msgLogger.Info().Err(err).Msg("Unparseable command")
		return d.reply(ctx, invalidReply(err))
	}

	msgLogger.Info().Str("command", string(cmd.Name)).Str("arg", cmd.Arg).Msg("Handling command")
	return d.execute(ctx, cmd)
}
