package differ

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Hunk is one run of consecutive changed lines. Starts are 1-based; a zero
// count places the start on the line before the change, as unified diff does.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Removed  []string
	Added    []string
}

// DiffProcessor handles the core diffing logic
type DiffProcessor struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDiffProcessor creates a new diff processor
func NewDiffProcessor() *DiffProcessor {
	return &DiffProcessor{
		dmp: diffmatchpatch.New(),
	}
}

// Hunks computes the line diff between text1 and text2 and groups the
// changed lines into hunks with no context.
func (dp *DiffProcessor) Hunks(text1, text2 string) []Hunk {
	chars1, chars2, lineArray := dp.dmp.DiffLinesToChars(text1, text2)
	diffs := dp.dmp.DiffMain(chars1, chars2, false)
	diffs = dp.dmp.DiffCharsToLines(diffs, lineArray)

	var (
		hunks   []Hunk
		current *Hunk
		oldLine = 1
		newLine = 1
	)

	flush := func() {
		if current != nil {
			hunks = append(hunks, *current)
			current = nil
		}
	}

	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			if current == nil {
				current = &Hunk{OldStart: oldLine, NewStart: newLine}
			}
			current.Removed = append(current.Removed, lines...)
			current.OldCount += len(lines)
			oldLine += len(lines)
		case diffmatchpatch.DiffInsert:
			if current == nil {
				current = &Hunk{OldStart: oldLine, NewStart: newLine}
			}
			current.Added = append(current.Added, lines...)
			current.NewCount += len(lines)
			newLine += len(lines)
		}
	}
	flush()

	return hunks
}

// RenderUnified writes hunks as "@@ -a,b +c,d @@" headers followed by the
// removed lines and then the added lines. No file header, no context.
func RenderUnified(hunks []Hunk) string {
	var sb strings.Builder
	for i, h := range hunks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "@@ -%s +%s @@", formatRange(h.OldStart, h.OldCount), formatRange(h.NewStart, h.NewCount))
		for _, line := range h.Removed {
			sb.WriteString("\n-")
			sb.WriteString(line)
		}
		for _, line := range h.Added {
			sb.WriteString("\n+")
			sb.WriteString(line)
		}
	}
	return sb.String()
}

func formatRange(start, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", start-1)
	case 1:
		return fmt.Sprintf("%d", start)
	default:
		return fmt.Sprintf("%d,%d", start, count)
	}
}

// splitLines splits text into lines without their terminators. A trailing
// newline does not start an extra line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
