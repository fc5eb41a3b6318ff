package editor

import "testing"

func seedBuffer(t *testing.T, text string) *Buffer {
	t.Helper()
	b := NewBuffer()
	if err := b.Replace(Range{Start: 0, End: 0}, text); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return b
}

func TestLineCountEmpty(t *testing.T) {
	if got := LineCount(""); got != 1 {
		t.Errorf("LineCount(\"\") = %d, want 1", got)
	}
}

func TestLineCountSingleLine(t *testing.T) {
	if got := LineCount("hello"); got != 1 {
		t.Errorf("LineCount(\"hello\") = %d, want 1", got)
	}
}

func TestLineCountMultipleLines(t *testing.T) {
	if got := LineCount("a\nb\nc"); got != 3 {
		t.Errorf("LineCount(\"a\\nb\\nc\") = %d, want 3", got)
	}
}

func TestLineCountTrailingNewline(t *testing.T) {
	if got := LineCount("a\nb\n"); got != 3 {
		t.Errorf("LineCount(\"a\\nb\\n\") = %d, want 3", got)
	}
}

func TestDeleteLineAtIsUndoable(t *testing.T) {
	b := seedBuffer(t, "one\ntwo\nthree\n")
	if err := b.DeleteLineAt(1); err != nil {
		t.Fatalf("DeleteLineAt: %v", err)
	}
	if got, want := b.Text(), "one\nthree\n"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	if ok, err := b.Undo(); !ok || err != nil {
		t.Fatalf("Undo() = %v, %v", ok, err)
	}
	if got, want := b.Text(), "one\ntwo\nthree\n"; got != want {
		t.Fatalf("after undo Text() = %q, want %q", got, want)
	}
}

func TestDuplicateLineAt(t *testing.T) {
	b := seedBuffer(t, "one\ntwo\n")
	if err := b.DuplicateLineAt(0); err != nil {
		t.Fatalf("DuplicateLineAt: %v", err)
	}
	if got, want := b.Text(), "one\none\ntwo\n"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestMoveLineAtDown(t *testing.T) {
	b := seedBuffer(t, "one\ntwo\nthree\n")
	if err := b.MoveLineAt(0, 1); err != nil {
		t.Fatalf("MoveLineAt: %v", err)
	}
	if got, want := b.Text(), "two\none\nthree\n"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestMoveLineAtOutOfRangeIsNoop(t *testing.T) {
	b := seedBuffer(t, "only\n")
	if err := b.MoveLineAt(0, -1); err != nil {
		t.Fatalf("MoveLineAt at top: %v", err)
	}
	if got, want := b.Text(), "only\n"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}
