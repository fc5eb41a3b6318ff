package loop

import (
	"github.com/clipperhouse/uax29/v2/words"

	"github.com/zcode-editor/zcode/editor"
	"github.com/zcode-editor/zcode/rope"
)

// wordLeft returns the byte offset of the start of the word boundary
// immediately before offset, walking UAX #29 word segments on offset's
// line rather than hand-rolling "is this a letter" heuristics — the same
// segmentation the Unicode word-break algorithm uses handles
// contractions, CJK, and punctuation runs consistently.
func wordLeft(r rope.Rope, offset int) int {
	line := r.ByteToLine(offset)
	lineStart := r.LineToByte(line)
	within := offset - lineStart
	if within == 0 {
		return editor.GraphemeLeft(r, offset)
	}
	bounds := wordBoundaries(r.Line(line))
	best := 0
	for _, b := range bounds {
		if b >= within {
			break
		}
		best = b
	}
	return lineStart + best
}

// wordRight is wordLeft's mirror.
func wordRight(r rope.Rope, offset int) int {
	line := r.ByteToLine(offset)
	lineStart := r.LineToByte(line)
	lineText := r.Line(line)
	within := offset - lineStart
	if within >= len(lineText) {
		return editor.GraphemeRight(r, offset)
	}
	bounds := wordBoundaries(lineText)
	for _, b := range bounds {
		if b > within {
			return lineStart + b
		}
	}
	return lineStart + len(lineText)
}

// wordBoundaries returns every word-segment start offset within text,
// including 0.
func wordBoundaries(text string) []int {
	bounds := []int{0}
	pos := 0
	seg := words.NewSegmenter([]byte(text))
	for seg.Next() {
		pos += len(seg.Bytes())
		bounds = append(bounds, pos)
	}
	return bounds
}
