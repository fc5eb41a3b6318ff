package editor

import "strings"

// LineCount returns the number of lines in the text.
// An empty string is considered to have 1 line.
func LineCount(text string) int {
	if text == "" {
		return 1
	}
	return strings.Count(text, "\n") + 1
}

// lineByteRange returns the byte range of line (0-based), excluding its
// trailing newline, and whether that newline exists.
func lineByteRange(text string, line int) (start, end int, hasNewline bool) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return 0, 0, false
	}
	pos := 0
	for i := 0; i < line; i++ {
		pos += len(lines[i]) + 1
	}
	start = pos
	end = start + len(lines[line])
	hasNewline = line < len(lines)-1
	return start, end, hasNewline
}

// DeleteLineAt removes the given 0-based line, including its trailing
// newline (or the preceding one, if it's the last line), as a single
// undoable op.
func (b *Buffer) DeleteLineAt(line int) error {
	text := b.Text()
	start, end, hasNewline := lineByteRange(text, line)
	if start == 0 && end == 0 && !hasNewline && LineCount(text) <= line {
		return nil
	}
	delStart, delEnd := start, end
	if hasNewline {
		delEnd++ // swallow the trailing newline
	} else if start > 0 {
		delStart-- // last line: swallow the preceding newline instead
	}
	return b.Replace(Range{Start: delStart, End: delEnd}, "")
}

// DuplicateLineAt inserts a copy of the given 0-based line immediately
// after it, as a single undoable op.
func (b *Buffer) DuplicateLineAt(line int) error {
	text := b.Text()
	start, end, _ := lineByteRange(text, line)
	content := text[start:end]
	return b.Replace(Range{Start: end, End: end}, "\n"+content)
}

// MoveLineAt swaps the given 0-based line with the one delta lines away
// (+1 down, -1 up), as a single undoable op. No-op if the target line is
// out of range.
func (b *Buffer) MoveLineAt(line, delta int) error {
	text := b.Text()
	total := LineCount(text)
	target := line + delta
	if line < 0 || line >= total || target < 0 || target >= total {
		return nil
	}
	lo, hi := line, target
	if lo > hi {
		lo, hi = hi, lo
	}
	loStart, loEnd, _ := lineByteRange(text, lo)
	hiStart, hiEnd, _ := lineByteRange(text, hi)
	replacement := text[hiStart:hiEnd] + text[loEnd:hiStart] + text[loStart:loEnd]
	return b.Replace(Range{Start: loStart, End: hiEnd}, replacement)
}
