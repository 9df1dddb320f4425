package notifier

import (
	"context"
	"strings"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/egigoka/telegram-update-checker/internal/differ"
	"github.com/egigoka/telegram-update-checker/internal/telegram"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// MessageSender delivers a single Bot API message
type MessageSender interface {
	SendMessage(ctx context.Context, msg telegram.OutboundMessage) error
}

// Notifier sends messages to the one configured chat. Sends are rate
// limited, length capped and never retried.
type Notifier struct {
	sender         MessageSender
	chatID         int64
	parseMode      string
	disablePreview bool
	sendTimeout    time.Duration
	limiter        *rate.Limiter
	formatter      *Formatter
	logger         zerolog.Logger
}

// NewNotifier creates a Notifier for cfg.ChatID
func NewNotifier(sender MessageSender, cfg config.TelegramConfig, logger zerolog.Logger) *Notifier {
	limit := rate.Inf
	if cfg.MessagesPerSecond > 0 {
		limit = rate.Limit(cfg.MessagesPerSecond)
	}
	burst := cfg.MessageBurst
	if burst <= 0 {
		burst = 1
	}
	parseMode := ""
	if strings.EqualFold(cfg.ParseMode, config.ParseModeHTML) {
		parseMode = config.ParseModeHTML
	}

	return &Notifier{
		sender:         sender,
		chatID:         cfg.ChatID,
		parseMode:      parseMode,
		disablePreview: cfg.DisableLinkPreviews,
		sendTimeout:    cfg.SendTimeout(),
		limiter:        rate.NewLimiter(limit, burst),
		formatter:      NewFormatter(parseMode, cfg.MaxMessageLength),
		logger:         logger.With().Str("component", "Notifier").Logger(),
	}
}

// Send delivers a plain text reply
func (n *Notifier) Send(ctx context.Context, text string) error {
	return n.deliver(ctx, TextMessage(text))
}

// ReportChange sends the change notification for url
func (n *Notifier) ReportChange(ctx context.Context, url string, at time.Time, diff differ.Result) error {
	return n.deliver(ctx, ChangeMessage(url, at, diff))
}

// ReportFirstSeen sends the notification for a URL seen for the first time
func (n *Notifier) ReportFirstSeen(ctx context.Context, url string, at time.Time, diff differ.Result) error {
	return n.deliver(ctx, FirstSeenMessage(url, at, diff))
}

// ReportError sends the processing error for url
func (n *Notifier) ReportError(ctx context.Context, url string, err error) error {
	return n.deliver(ctx, ErrorMessage(url, err))
}

func (n *Notifier) deliver(ctx context.Context, msg Message) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return common.NewTransportError("sendMessage", "", err)
	}

	if n.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.sendTimeout)
		defer cancel()
	}

	text := n.formatter.Render(msg)
	err := n.sender.SendMessage(ctx, telegram.OutboundMessage{
		ChatID:                n.chatID,
		Text:                  text,
		ParseMode:             n.parseMode,
		DisableWebPagePreview: n.disablePreview,
	})
	if err != nil {
		n.logger.Error().Err(err).Int("length", len(text)).Msg("Failed to send message")
		if !common.IsTransportError(err) {
			err = common.NewTransportError("sendMessage", "", err)
		}
		return err
	}

	n.logger.Debug().Int("length", len(text)).Msg("Message sent")
	return nil
}
