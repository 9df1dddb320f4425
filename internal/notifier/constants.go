package notifier

// Message formats
const (
	TimestampLayout = "2006-01-02 15:04:05"

	changeHeaderFormat    = "Change detected in %s at %s:"
	firstSeenHeaderFormat = "Started watching %s at %s:"
	errorFormat           = "Error processing %s: %v"
)
