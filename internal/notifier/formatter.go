package notifier

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/egigoka/telegram-update-checker/internal/differ"
)

// Message is an outgoing text split into a plain header and an optional
// preformatted body. The body is what gets shortened when the message does
// not fit.
type Message struct {
	Header string
	Body   string
}

// Formatter renders messages for one parse mode.
type Formatter struct {
	parseMode string
	maxLength int
}

// NewFormatter creates a formatter. maxLength counts visible runes.
func NewFormatter(parseMode string, maxLength int) *Formatter {
	return &Formatter{parseMode: parseMode, maxLength: maxLength}
}

// ChangeMessage builds the notification for a changed URL
func ChangeMessage(url string, at time.Time, diff differ.Result) Message {
	return Message{
		Header: fmt.Sprintf(changeHeaderFormat, url, at.Format(TimestampLayout)),
		Body:   diff.Text,
	}
}

// FirstSeenMessage builds the notification for a URL seen for the first time
func FirstSeenMessage(url string, at time.Time, diff differ.Result) Message {
	return Message{
		Header: fmt.Sprintf(firstSeenHeaderFormat, url, at.Format(TimestampLayout)),
		Body:   diff.Text,
	}
}

// ErrorMessage builds the report for a URL that could not be processed. A
// transport error naming the same URL is unwrapped so the URL is not
// repeated.
func ErrorMessage(url string, err error) Message {
	cause := err
	var transportErr *common.TransportError
	if errors.As(err, &transportErr) && transportErr.URL == url {
		cause = transportErr.Err
	}
	return Message{Header: fmt.Sprintf(errorFormat, url, cause)}
}

// TextMessage wraps a plain reply
func TextMessage(text string) Message {
	return Message{Header: text}
}

// Render fits msg into the length limit and formats it for the parse mode.
// A body is separated from the header by a newline; in HTML mode both are
// escaped and the body is wrapped in <pre>. Invalid UTF-8 is replaced.
func (f *Formatter) Render(msg Message) string {
	msg.Header = strings.ToValidUTF8(msg.Header, string(utf8.RuneError))
	msg.Body = strings.ToValidUTF8(msg.Body, string(utf8.RuneError))
	msg = f.fit(msg)

	if f.parseMode != config.ParseModeHTML {
		if msg.Body == "" {
			return msg.Header
		}
		return msg.Header + "\n" + msg.Body
	}

	text := html.EscapeString(msg.Header)
	if msg.Body != "" {
		text += "\n<pre>" + html.EscapeString(msg.Body) + "</pre>"
	}
	return text
}

// fit shortens the body first and the header only when the header alone is
// too long, so the cut never falls inside markup. Lengths are UTF-16 code
// units, which is how Telegram measures message text.
func (f *Formatter) fit(msg Message) Message {
	if f.maxLength <= 0 {
		return msg
	}

	markerLength := TextLength(differ.TruncationMarker)
	headerLength := TextLength(msg.Header)
	if msg.Body == "" {
		if headerLength > f.maxLength {
			msg.Header = truncateUnits(msg.Header, max(f.maxLength-markerLength, 0))
		}
		return msg
	}

	available := f.maxLength - headerLength - 1
	if TextLength(msg.Body) <= available {
		return msg
	}
	if available-markerLength <= 0 {
		msg.Header = truncateUnits(msg.Header, max(f.maxLength-markerLength, 0))
		msg.Body = ""
		return msg
	}
	msg.Body = truncateUnits(msg.Body, available-markerLength)
	return msg
}

// TextLength returns the length of s in UTF-16 code units
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// truncateUnits cuts text to at most maxUnits UTF-16 code units, never
// inside a rune, and appends the truncation marker when anything was cut.
func truncateUnits(text string, maxUnits int) string {
	units := 0
	for i, r := range text {
		units += utf16.RuneLen(r)
		if units > maxUnits {
			return text[:i] + differ.TruncationMarker
		}
	}
	return text
}
