package rope

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/zcode-editor/zcode/zerr"
)

func TestInsertAppend(t *testing.T) {
	r := NewString("hello")
	r, err := r.Insert(5, " world")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestInsertAtZero(t *testing.T) {
	r := NewString("world")
	r, err := r.Insert(0, "hello ")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestDeleteEmptyRangeNoop(t *testing.T) {
	r := NewString("hello")
	r2, err := r.Delete(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if r2.String() != "hello" {
		t.Fatalf("expected no-op, got %q", r2.String())
	}
}

func TestInvalidBoundary(t *testing.T) {
	r := NewString("héllo") // é is 2 bytes at offset 1-2
	_, err := r.Insert(2, "X")
	if !zerr.Is(err, zerr.InvalidBoundary) {
		t.Fatalf("expected InvalidBoundary, got %v", err)
	}
	_, err = r.Delete(2, 3)
	if !zerr.Is(err, zerr.InvalidBoundary) {
		t.Fatalf("expected InvalidBoundary on delete, got %v", err)
	}
}

func TestRoundTripInverse(t *testing.T) {
	r := NewString("The quick brown fox")
	inserted, err := r.Insert(4, "very ")
	if err != nil {
		t.Fatal(err)
	}
	back, err := inserted.Delete(4, 4+len("very "))
	if err != nil {
		t.Fatal(err)
	}
	if back.String() != r.String() {
		t.Fatalf("round trip mismatch: %q != %q", back.String(), r.String())
	}
}

func TestLineIndexing(t *testing.T) {
	r := NewString("a\nbb\nccc\n")
	if r.LineCount() != 4 {
		t.Fatalf("expected 4 lines, got %d", r.LineCount())
	}
	if got := r.LineToByte(0); got != 0 {
		t.Fatalf("line 0 byte = %d", got)
	}
	if got := r.LineToByte(1); got != 2 {
		t.Fatalf("line 1 byte = %d", got)
	}
	if got := r.LineToByte(2); got != 5 {
		t.Fatalf("line 2 byte = %d", got)
	}
	if got := r.ByteToLine(6); got != 2 {
		t.Fatalf("byte 6 line = %d", got)
	}
	if got := r.Line(2); got != "ccc" {
		t.Fatalf("line 2 content = %q", got)
	}
}

func TestPositionConversionRoundTrip(t *testing.T) {
	r := NewString("héllo wörld")
	for i := 0; i <= utf8.RuneCountInString(r.String()); i++ {
		b := r.CharToByte(i)
		if got := r.ByteToChar(b); got != i {
			t.Fatalf("char %d -> byte %d -> char %d", i, b, got)
		}
	}
}

func TestLargeInsertsStayBalanced(t *testing.T) {
	r := New()
	var err error
	for i := 0; i < 5000; i++ {
		r, err = r.Insert(r.ByteLen(), "line\n")
		if err != nil {
			t.Fatal(err)
		}
	}
	if r.height > 40 {
		t.Fatalf("rope height grew unbounded: %d", r.height)
	}
	if r.LineCount() != 5001 {
		t.Fatalf("expected 5001 lines, got %d", r.LineCount())
	}
}

func TestCloneIsStructuralShare(t *testing.T) {
	r := NewString(strings.Repeat("x", 4096))
	clone := r // value copy, O(1) by structural sharing of subtrees
	r2, err := r.Insert(0, "y")
	if err != nil {
		t.Fatal(err)
	}
	if clone.String() != strings.Repeat("x", 4096) {
		t.Fatal("clone was mutated")
	}
	if r2.String()[0] != 'y' {
		t.Fatal("insert did not apply to r2")
	}
}

func TestSliceBounds(t *testing.T) {
	r := NewString("0123456789")
	if got := string(r.Slice(2, 5)); got != "234" {
		t.Fatalf("got %q", got)
	}
	if got := string(r.Slice(-5, 100)); got != "0123456789" {
		t.Fatalf("clamped slice got %q", got)
	}
}
