package editor

import (
	"github.com/rivo/uniseg"

	"github.com/zcode-editor/zcode/rope"
)

// GraphemeLeft returns the byte offset of the grapheme cluster boundary
// immediately before offset, or 0 if offset is already at the start.
// Motion is grapheme-based rather than byte- or rune-based so a caret
// never lands inside a multi-rune cluster (combining marks, ZWJ
// sequences) — the same unit §4.2's layout cache renders in.
func GraphemeLeft(r rope.Rope, offset int) int {
	if offset <= 0 {
		return 0
	}
	lineNo := r.ByteToLine(offset)
	lineStart := r.LineToByte(lineNo)
	if offset == lineStart {
		if lineNo == 0 {
			return 0
		}
		prevStart := r.LineToByte(lineNo - 1)
		prevLine := r.Line(lineNo - 1)
		return prevStart + len(prevLine)
	}
	line := r.Line(lineNo)
	within := offset - lineStart
	return lineStart + graphemeBoundaryBefore(line, within)
}

// GraphemeRight is GraphemeLeft's mirror.
func GraphemeRight(r rope.Rope, offset int) int {
	total := r.ByteLen()
	if offset >= total {
		return total
	}
	lineNo := r.ByteToLine(offset)
	lineStart := r.LineToByte(lineNo)
	line := r.Line(lineNo)
	within := offset - lineStart
	if within >= len(line) {
		if lineNo+1 >= r.LineCount() {
			return total
		}
		return r.LineToByte(lineNo + 1)
	}
	return lineStart + graphemeBoundaryAfter(line, within)
}

// LineStart returns the byte offset of the first character on offset's
// line.
func LineStart(r rope.Rope, offset int) int {
	return r.LineToByte(r.ByteToLine(offset))
}

// LineEnd returns the byte offset just past the last character on
// offset's line (before its trailing newline, if any).
func LineEnd(r rope.Rope, offset int) int {
	line := r.ByteToLine(offset)
	return r.LineToByte(line) + len(r.Line(line))
}

// VerticalMove returns the byte offset delta lines away from offset's
// line, at the same visual column (per lc), clamped to that line's
// length. delta is negative for up, positive for down.
func VerticalMove(r rope.Rope, lc *LayoutCache, offset, delta int) int {
	line := r.ByteToLine(offset)
	lineStart := r.LineToByte(line)
	col := lc.VisualCol(line, byteOffsetToCharIndex(r.Line(line), offset-lineStart))

	target := line + delta
	if target < 0 {
		return 0
	}
	if target >= r.LineCount() {
		return r.ByteLen()
	}
	targetLine := r.Line(target)
	char := lc.CharAtCol(target, col)
	return r.LineToByte(target) + charIndexToByteOffset(targetLine, char)
}

func byteOffsetToCharIndex(line string, byteOffset int) int {
	count := 0
	for i := range line {
		if i >= byteOffset {
			break
		}
		count++
	}
	return count
}

func charIndexToByteOffset(line string, charIndex int) int {
	count := 0
	for i := range line {
		if count == charIndex {
			return i
		}
		count++
	}
	return len(line)
}

func graphemeBoundaryBefore(line string, byteOffset int) int {
	boundaries := graphemeBoundaries(line)
	best := 0
	for _, b := range boundaries {
		if b >= byteOffset {
			break
		}
		best = b
	}
	return best
}

func graphemeBoundaryAfter(line string, byteOffset int) int {
	boundaries := graphemeBoundaries(line)
	for _, b := range boundaries {
		if b > byteOffset {
			return b
		}
	}
	return len(line)
}

// graphemeBoundaries returns every cluster start offset in line,
// including 0, but not len(line).
func graphemeBoundaries(line string) []int {
	var out []int
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		from, _ := g.Positions()
		out = append(out, from)
	}
	return out
}
