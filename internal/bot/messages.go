package bot

const (
	greetingText    = "Hello! I am a bot to check the changes in the website."
	usageText       = "Please use /start, add <url>, remove <url>, print, check or status."
	invalidText     = "Invalid command. " + usageText
	noURLsText      = "No URLs are being watched."
	checkingText    = "Checking..."
	doneText        = "Done."
	noHistoryText   = "No checks recorded yet."
	addedFormat     = "URL %s added successfully."
	removedFormat   = "URL %s removed successfully."
	notFoundFormat  = "URL %s not found."
	invalidFormat   = "Invalid command: %s. " + usageText
	failureFormat   = "Command failed: %v"
	statusFormat    = "Last check finished at %s (%s).\nChecked %d URLs: %d changed, %d errors. Took %s."
	watchingFormat  = "Watching %d URLs."
	timestampLayout = "2006-01-02 15:04:05"
)
