package editor

import (
	"strings"

	"github.com/zcode-editor/zcode/rope"
)

// BlockSelection represents a rectangular text selection spanning multiple
// lines, addressed by line index and display column rather than byte or
// rune offset, so a vertical edge lines up visually across lines of
// different byte width once tabs and wide glyphs are accounted for via a
// LayoutCache (§C column-aware selection).
type BlockSelection struct {
	StartLine int
	EndLine   int
	StartCol  int
	EndCol    int
	Active    bool
}

// NewBlockSelection creates an inactive block selection.
func NewBlockSelection() *BlockSelection {
	return &BlockSelection{}
}

// Set activates the block selection with the given bounds.
func (bs *BlockSelection) Set(startLine, endLine, startCol, endCol int) {
	bs.StartLine = startLine
	bs.EndLine = endLine
	bs.StartCol = startCol
	bs.EndCol = endCol
	bs.Active = true
	bs.Normalize()
}

// Clear deactivates the block selection.
func (bs *BlockSelection) Clear() {
	*bs = BlockSelection{}
}

// Normalize ensures StartLine <= EndLine and StartCol <= EndCol.
func (bs *BlockSelection) Normalize() {
	if bs.StartLine > bs.EndLine {
		bs.StartLine, bs.EndLine = bs.EndLine, bs.StartLine
	}
	if bs.StartCol > bs.EndCol {
		bs.StartCol, bs.EndCol = bs.EndCol, bs.StartCol
	}
}

// ExpandUp extends the selection one line upward.
func (bs *BlockSelection) ExpandUp() {
	if bs.StartLine > 0 {
		bs.StartLine--
	}
}

// ExpandDown extends the selection one line downward.
func (bs *BlockSelection) ExpandDown(maxLine int) {
	if bs.EndLine < maxLine {
		bs.EndLine++
	}
}

// ExpandLeft extends the selection one display column to the left.
func (bs *BlockSelection) ExpandLeft() {
	if bs.StartCol > 0 {
		bs.StartCol--
	}
}

// ExpandRight extends the selection one display column to the right.
func (bs *BlockSelection) ExpandRight(maxCol int) {
	if bs.EndCol < maxCol {
		bs.EndCol++
	}
}

// Lines returns the range of lines in the selection [start, end] inclusive.
func (bs *BlockSelection) Lines() (int, int) {
	return bs.StartLine, bs.EndLine
}

// Cols returns the display-column range [start, end) for the selection.
func (bs *BlockSelection) Cols() (int, int) {
	return bs.StartCol, bs.EndCol
}

// byteRange resolves this block's [StartCol, EndCol) span on line into a
// byte range within r, using lc to snap display columns to grapheme
// boundaries so tab stops and wide glyphs land on the same visual column
// on every line of the block. ok is false if line does not exist in r.
func (bs *BlockSelection) byteRange(r rope.Rope, lc *LayoutCache, line int) (start, end int, ok bool) {
	if line < 0 || line >= r.LineCount() {
		return 0, 0, false
	}
	content := r.Line(line)
	start = lineCharToByte(content, lc.CharAtCol(line, bs.StartCol))
	end = lineCharToByte(content, lc.CharAtCol(line, bs.EndCol))
	if start > len(content) {
		start = len(content)
	}
	if end > len(content) {
		end = len(content)
	}
	if start > end {
		start = end
	}
	return start, end, true
}

// ExtractBlock returns the selected rectangular region, one string per
// line, clamping ragged short lines to their own length.
func (bs *BlockSelection) ExtractBlock(r rope.Rope, lc *LayoutCache) []string {
	if !bs.Active {
		return nil
	}
	var result []string
	for line := bs.StartLine; line <= bs.EndLine; line++ {
		start, end, ok := bs.byteRange(r, lc, line)
		if !ok {
			break
		}
		result = append(result, r.Line(line)[start:end])
	}
	return result
}

// InsertOp builds the composite Op that inserts text at this block's start
// column on every one of its lines, padding lines shorter than that column
// with spaces first. Apply the result through Buffer.ApplyLocalEdit (like
// MultiCursor's *Op builders) so the block edit is one undo step.
func (bs *BlockSelection) InsertOp(r rope.Rope, lc *LayoutCache, text string) Op {
	if !bs.Active {
		return Op{}
	}
	var prims []Primitive
	for line := bs.StartLine; line <= bs.EndLine && line < r.LineCount(); line++ {
		lineStart := r.LineToByte(line)
		content := r.Line(line)
		if width := lc.LineWidth(line); width < bs.StartCol {
			pad := strings.Repeat(" ", bs.StartCol-width)
			prims = append(prims, Primitive{Offset: lineStart + len(content), NewText: pad + text})
			continue
		}
		byteOff := lineCharToByte(content, lc.CharAtCol(line, bs.StartCol))
		prims = append(prims, Primitive{Offset: lineStart + byteOff, NewText: text})
	}
	return descendingOp(prims)
}

// DeleteOp builds the composite Op that removes this block's selected
// column range from every one of its lines.
func (bs *BlockSelection) DeleteOp(r rope.Rope, lc *LayoutCache) Op {
	if !bs.Active {
		return Op{}
	}
	var prims []Primitive
	for line := bs.StartLine; line <= bs.EndLine && line < r.LineCount(); line++ {
		start, end, ok := bs.byteRange(r, lc, line)
		if !ok || start == end {
			continue
		}
		lineStart := r.LineToByte(line)
		content := r.Line(line)
		prims = append(prims, Primitive{Offset: lineStart + start, OldText: content[start:end]})
	}
	return descendingOp(prims)
}

// lineCharToByte converts a rune index within one line's content into a
// byte offset, mirroring rope.Rope.CharToByte's algorithm but scoped to a
// single line so callers don't pay for a whole-document scan.
func lineCharToByte(line string, char int) int {
	if char <= 0 {
		return 0
	}
	n := 0
	for i := range line {
		if n == char {
			return i
		}
		n++
	}
	return len(line)
}
