package urlhandler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	// maxKeyStemLength keeps snapshot file names well below common filesystem limits
	maxKeyStemLength = 100
	// keyHashLength is the number of hex characters of the URL hash in a key
	keyHashLength = 12
)

// Regex for cleaning filenames
var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// ValidateWatchURL checks that rawURL is an absolute http or https URL with a host.
func ValidateWatchURL(rawURL string) error {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return fmt.Errorf("URL is empty")
	}

	parsedURL, err := url.ParseRequestURI(trimmedURL)
	if err != nil {
		return fmt.Errorf("invalid URL format '%s': %w", trimmedURL, err)
	}

	switch strings.ToLower(parsedURL.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("unsupported URL scheme '%s'", parsedURL.Scheme)
	}

	if parsedURL.Hostname() == "" {
		return fmt.Errorf("URL lacks a valid hostname: %s", trimmedURL)
	}

	return nil
}

// SanitizeFilename creates a safe filename string from a URL or any input string.
// It removes the protocol, replaces unsafe characters with underscores, and cleans up underscores.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}

	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_.")

	if name == "" {
		return "sanitized_empty_input"
	}

	return name
}

// URLHash returns the first n hex characters of the SHA-256 of rawURL.
func URLHash(rawURL string, n int) string {
	if n <= 0 || n > sha256.Size*2 {
		n = sha256.Size * 2
	}
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:n]
}

// SnapshotKey derives the snapshot file name for rawURL. The readable stem
// comes from SanitizeFilename; the hash suffix separates URLs whose stems
// collide, such as https://a.b/c_d and https://a.b/c/d.
func SnapshotKey(rawURL string) string {
	stem := SanitizeFilename(rawURL)
	if len(stem) > maxKeyStemLength {
		stem = strings.TrimRight(stem[:maxKeyStemLength], "_.")
	}
	return stem + "_" + URLHash(rawURL, keyHashLength) + ".txt"
}
