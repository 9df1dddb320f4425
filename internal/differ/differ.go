package differ

import (
	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/rs/zerolog"
)

// TruncationMarker is appended to a diff cut at the length limit.
const TruncationMarker = "\n\n... (diff too long, truncated)"

// Result is the diff between two versions of one URL's content.
type Result struct {
	Text      string
	Truncated bool
	Added     int
	Removed   int
}

// Empty reports whether no line-level difference was found.
func (r Result) Empty() bool {
	return r.Text == ""
}

// Differ normalizes two versions of a document and renders their line diff
// as zero-context unified hunks.
type Differ struct {
	normalizer Normalizer
	processor  *DiffProcessor
	maxLength  int
	logger     zerolog.Logger
}

// NewDiffer creates a Differ from the diff configuration
func NewDiffer(cfg config.DiffConfig, logger zerolog.Logger) (*Differ, error) {
	if cfg.MaxDiffLength <= 0 {
		return nil, common.NewValidationError("max_diff_length", cfg.MaxDiffLength, "must be positive")
	}

	normalizer, err := NewNormalizer(cfg.Normalizer, cfg.ContentSelector)
	if err != nil {
		return nil, common.WrapError(err, "failed to create normalizer")
	}

	return &Differ{
		normalizer: normalizer,
		processor:  NewDiffProcessor(),
		maxLength:  cfg.MaxDiffLength,
		logger:     logger.With().Str("component", "Differ").Logger(),
	}, nil
}

// Diff compares previous with current. An empty Result means the two are
// equal after normalization.
func (d *Differ) Diff(previous, current string) Result {
	oldText, newText := d.normalize(previous, current)

	hunks := d.processor.Hunks(oldText, newText)
	result := Result{}
	for _, h := range hunks {
		result.Added += len(h.Added)
		result.Removed += len(h.Removed)
	}

	result.Text, result.Truncated = Truncate(RenderUnified(hunks), d.maxLength)
	if result.Truncated {
		d.logger.Debug().Int("max_length", d.maxLength).Msg("Diff truncated")
	}
	return result
}

// normalize applies the normalizer to both versions. If either fails, both
// are compared raw so the two sides stay comparable.
func (d *Differ) normalize(previous, current string) (string, string) {
	oldText, newText, err := d.normalizer.NormalizePair(previous, current)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Normalization failed, comparing raw content")
		return previous, current
	}
	return oldText, newText
}

// Truncate cuts text to at most maxRunes runes and appends TruncationMarker
// when anything was cut. Counting runes keeps the result valid UTF-8.
func Truncate(text string, maxRunes int) (string, bool) {
	if maxRunes <= 0 {
		return text, false
	}

	count := 0
	for i := range text {
		if count == maxRunes {
			return text[:i] + TruncationMarker, true
		}
		count++
	}
	return text, false
}
