package config

import (
	"time"
)

// TelegramConfig defines the bot credentials, the single recipient chat and
// the transport limits for both directions.
type TelegramConfig struct {
	BotToken            string  `json:"bot_token,omitempty" yaml:"bot_token,omitempty" validate:"required"`
	ChatID              int64   `json:"chat_id,omitempty" yaml:"chat_id,omitempty" validate:"required"`
	APIEndpoint         string  `json:"api_endpoint,omitempty" yaml:"api_endpoint,omitempty" validate:"required"`
	ParseMode           string  `json:"parse_mode,omitempty" yaml:"parse_mode,omitempty" validate:"parsemode"`
	PollTimeoutSeconds  int     `json:"poll_timeout_seconds,omitempty" yaml:"poll_timeout_seconds,omitempty" validate:"min=0"`
	SendTimeoutSeconds  int     `json:"send_timeout_seconds,omitempty" yaml:"send_timeout_seconds,omitempty" validate:"min=1"`
	IdleBackoffMillis   int     `json:"idle_backoff_millis,omitempty" yaml:"idle_backoff_millis,omitempty" validate:"min=0"`
	ErrorBackoffMillis  int     `json:"error_backoff_millis,omitempty" yaml:"error_backoff_millis,omitempty" validate:"min=0"`
	MaxMessageLength    int     `json:"max_message_length,omitempty" yaml:"max_message_length,omitempty" validate:"min=64,max=4096"`
	MessagesPerSecond   float64 `json:"messages_per_second,omitempty" yaml:"messages_per_second,omitempty" validate:"gt=0"`
	MessageBurst        int     `json:"message_burst,omitempty" yaml:"message_burst,omitempty" validate:"min=1"`
	OffsetCommit        string  `json:"offset_commit,omitempty" yaml:"offset_commit,omitempty" validate:"offsetcommit"`
	DisableCommands     bool    `json:"disable_commands" yaml:"disable_commands"`
	DisableLinkPreviews bool    `json:"disable_link_previews" yaml:"disable_link_previews"`
}

// NewDefaultTelegramConfig creates default telegram configuration
func NewDefaultTelegramConfig() TelegramConfig {
	return TelegramConfig{
		APIEndpoint:         DefaultTelegramAPIEndpoint,
		PollTimeoutSeconds:  DefaultPollTimeoutSeconds,
		SendTimeoutSeconds:  DefaultSendTimeoutSeconds,
		IdleBackoffMillis:   DefaultIdleBackoffMillis,
		ErrorBackoffMillis:  DefaultErrorBackoffMillis,
		MaxMessageLength:    DefaultMaxMessageLength,
		MessagesPerSecond:   DefaultMessagesPerSecond,
		MessageBurst:        DefaultMessageBurst,
		OffsetCommit:        DefaultOffsetCommit,
		DisableLinkPreviews: true,
	}
}

// PollTimeout is the long-poll wait requested from the server
func (tc TelegramConfig) PollTimeout() time.Duration {
	return time.Duration(tc.PollTimeoutSeconds) * time.Second
}

// SendTimeout bounds a single sendMessage call
func (tc TelegramConfig) SendTimeout() time.Duration {
	return time.Duration(tc.SendTimeoutSeconds) * time.Second
}

// IdleBackoff is the wait after a poll that returned nothing
func (tc TelegramConfig) IdleBackoff() time.Duration {
	return time.Duration(tc.IdleBackoffMillis) * time.Millisecond
}

// ErrorBackoff is the wait after a failed poll
func (tc TelegramConfig) ErrorBackoff() time.Duration {
	return time.Duration(tc.ErrorBackoffMillis) * time.Millisecond
}
