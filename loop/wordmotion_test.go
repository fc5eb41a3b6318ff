package loop

import (
	"testing"

	"github.com/zcode-editor/zcode/rope"
)

func TestWordRightStopsAtNextWordStart(t *testing.T) {
	r := rope.NewString("foo bar baz")
	got := wordRight(r, 0)
	if got <= 0 || got > 4 {
		t.Fatalf("wordRight(0) = %d, want a boundary within the first word/space run", got)
	}
}

func TestWordLeftAtLineStartFallsBackToGrapheme(t *testing.T) {
	r := rope.NewString("foo\nbar")
	got := wordLeft(r, 4) // start of second line
	if got != 3 {
		t.Fatalf("wordLeft at line start = %d, want 3 (previous line's end)", got)
	}
}

func TestWordRightAtLineEndFallsBackToGrapheme(t *testing.T) {
	r := rope.NewString("foo\nbar")
	got := wordRight(r, 3) // end of first line, at the newline
	if got != 4 {
		t.Fatalf("wordRight at line end = %d, want 4 (start of next line)", got)
	}
}
