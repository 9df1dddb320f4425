package config

const (
	// Mode values
	ModeAutomated = "automated"
	ModeOnetime   = "onetime"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Monitor Defaults
	DefaultCheckIntervalSeconds = 3600 // 1 hour
	DefaultHTTPTimeoutSeconds   = 30
	DefaultMaxContentSize       = 5 * 1024 * 1024
	DefaultUserAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Diff Defaults
	DefaultMaxDiffLength = 3500
	DefaultNormalizer    = NormalizerHTML

	// Normalizer values
	NormalizerNone = "none"
	NormalizerHTML = "html"
	NormalizerAuto = "auto"

	// Telegram Defaults
	DefaultTelegramAPIEndpoint = "https://api.telegram.org/bot%s/%s"
	DefaultPollTimeoutSeconds  = 30
	DefaultSendTimeoutSeconds  = 15
	DefaultIdleBackoffMillis   = 1000
	DefaultErrorBackoffMillis  = 5000
	DefaultMaxMessageLength    = 4096
	DefaultMessagesPerSecond   = 1.0
	DefaultMessageBurst        = 3
	DefaultOffsetCommit        = OffsetCommitBeforeDispatch

	// Offset commit policies
	OffsetCommitBeforeDispatch = "before_dispatch"
	OffsetCommitAfterDispatch  = "after_dispatch"

	ParseModeHTML = "HTML"

	// Environment overrides
	EnvBotToken   = "UPDATE_CHECKER_BOT_TOKEN"
	EnvChatID     = "UPDATE_CHECKER_CHAT_ID"
	EnvConfigPath = "UPDATE_CHECKER_CONFIG"

	// Storage Defaults
	DefaultSnapshotDir   = "url_contents"
	DefaultWatchListFile = "urls.txt"
	DefaultOffsetFile    = "offset.txt"
	DefaultHistoryDBPath = "data/history.db"
)
