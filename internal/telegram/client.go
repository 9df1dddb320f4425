package telegram

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/egigoka/telegram-update-checker/internal/httpclient"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// pollMargin is added to the long-poll timeout to bound the HTTP call
const pollMargin = 10 * time.Second

// InboundMessage is the part of an update the command dispatcher needs.
// Updates without a text message have an empty Text.
type InboundMessage struct {
	UpdateID int
	ChatID   int64
	Text     string
}

// OutboundMessage is one sendMessage call
type OutboundMessage struct {
	ChatID                int64
	Text                  string
	ParseMode             string
	DisableWebPagePreview bool
}

// Client talks to the Telegram Bot API: long-poll getUpdates and sendMessage.
type Client struct {
	bot         *tgbotapi.BotAPI
	token       string
	pollTimeout time.Duration
	logger      zerolog.Logger
}

// NewClient connects to the Bot API and verifies the token with getMe. A
// nil httpClient gets one built from the poll timeout.
func NewClient(cfg config.TelegramConfig, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	clientLogger := logger.With().Str("component", "TelegramClient").Logger()
	if cfg.BotToken == "" {
		return nil, common.NewValidationError("bot_token", "", "cannot be empty")
	}

	if httpClient == nil {
		var err error
		httpClient, err = httpclient.NewHTTPClientBuilder(clientLogger).
			WithTimeout(cfg.PollTimeout() + pollMargin).
			Build()
		if err != nil {
			return nil, common.WrapError(err, "failed to build telegram HTTP client")
		}
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, httpClient)
	if err != nil {
		return nil, common.NewTransportError("getMe", "", redact(err, cfg.BotToken))
	}

	clientLogger.Info().Str("username", bot.Self.UserName).Msg("Connected to Telegram Bot API")
	return &Client{
		bot:         bot,
		token:       cfg.BotToken,
		pollTimeout: cfg.PollTimeout(),
		logger:      clientLogger,
	}, nil
}

// Username returns the bot's username without the leading '@'
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// GetUpdates long-polls for message updates starting at offset. The call
// returns early with ctx.Err() when ctx is cancelled.
func (c *Client) GetUpdates(ctx context.Context, offset int) ([]InboundMessage, error) {
	updateConfig := tgbotapi.UpdateConfig{
		Offset:         offset,
		Timeout:        int(c.pollTimeout / time.Second),
		AllowedUpdates: []string{"message"},
	}

	updates, err := callWithContext(ctx, func() ([]tgbotapi.Update, error) {
		return c.bot.GetUpdates(updateConfig)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, common.NewTransportError("getUpdates", "", redact(err, c.token))
	}

	messages := make([]InboundMessage, 0, len(updates))
	for _, u := range updates {
		messages = append(messages, toInbound(u))
	}
	return messages, nil
}

// SendMessage sends msg and waits for the API's answer or ctx.
func (c *Client) SendMessage(ctx context.Context, msg OutboundMessage) error {
	messageConfig := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	messageConfig.ParseMode = msg.ParseMode
	messageConfig.DisableWebPagePreview = msg.DisableWebPagePreview

	_, err := callWithContext(ctx, func() (tgbotapi.Message, error) {
		return c.bot.Send(messageConfig)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return common.NewTransportError("sendMessage", "", ctxErr)
		}
		return common.NewTransportError("sendMessage", "", redact(err, c.token))
	}
	return nil
}

func toInbound(u tgbotapi.Update) InboundMessage {
	msg := InboundMessage{UpdateID: u.UpdateID}
	if u.Message != nil {
		msg.Text = u.Message.Text
		if u.Message.Chat != nil {
			msg.ChatID = u.Message.Chat.ID
		}
	}
	return msg
}

type callResult[T any] struct {
	value T
	err   error
}

// callWithContext runs fn in a goroutine so a blocking Bot API call can be
// abandoned when ctx ends. The abandoned call finishes on its own HTTP
// timeout.
func callWithContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	done := make(chan callResult[T], 1)
	go func() {
		value, err := fn()
		done <- callResult[T]{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case result := <-done:
		return result.value, result.err
	}
}

// redactedError hides the bot token, which net/http errors carry in the
// request URL.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string {
	return e.msg
}

func (e *redactedError) Unwrap() error {
	return e.err
}

func redact(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<redacted>"), err: err}
}

