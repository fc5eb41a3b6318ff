package editor

import (
	"testing"

	"github.com/zcode-editor/zcode/rope"
)

func TestGraphemeLeftRightAcrossLines(t *testing.T) {
	r := rope.NewString("ab\ncd")
	if got := GraphemeLeft(r, 3); got != 2 {
		t.Fatalf("GraphemeLeft(3) = %d, want 2 (end of previous line)", got)
	}
	if got := GraphemeLeft(r, 0); got != 0 {
		t.Fatalf("GraphemeLeft(0) = %d, want 0", got)
	}
	if got := GraphemeRight(r, 2); got != 3 {
		t.Fatalf("GraphemeRight(2) = %d, want 3 (start of next line)", got)
	}
	if got := GraphemeRight(r, r.ByteLen()); got != r.ByteLen() {
		t.Fatalf("GraphemeRight(end) = %d, want %d", got, r.ByteLen())
	}
}

func TestLineStartEnd(t *testing.T) {
	r := rope.NewString("abc\ndefgh\n")
	if got := LineStart(r, 6); got != 4 {
		t.Fatalf("LineStart(6) = %d, want 4", got)
	}
	if got := LineEnd(r, 6); got != 9 {
		t.Fatalf("LineEnd(6) = %d, want 9", got)
	}
}

func TestVerticalMoveClampsToShorterLine(t *testing.T) {
	r := rope.NewString("abcdef\nxy\n")
	lc := NewLayoutCache(4, func(line int) string {
		if line < 0 || line >= r.LineCount() {
			return ""
		}
		return r.Line(line)
	})
	// column 5 on line 0 ("abcdef") moving down onto "xy" (len 2) clamps to end of line.
	got := VerticalMove(r, lc, 5, 1)
	wantLine1Start := r.LineToByte(1)
	if got != wantLine1Start+2 {
		t.Fatalf("VerticalMove clamp = %d, want %d", got, wantLine1Start+2)
	}
}

func TestVerticalMoveAboveFirstLineClampsToZero(t *testing.T) {
	r := rope.NewString("abc\ndef")
	lc := NewLayoutCache(4, func(line int) string { return r.Line(line) })
	if got := VerticalMove(r, lc, 1, -1); got != 0 {
		t.Fatalf("VerticalMove above first line = %d, want 0", got)
	}
}
