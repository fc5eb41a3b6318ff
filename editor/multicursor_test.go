package editor

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zcode-editor/zcode/rope"
)

func TestNewMultiCursor(t *testing.T) {
	mc := NewMultiCursor()
	if mc.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", mc.Count())
	}
	primary := mc.Primary()
	if primary.Offset != 0 || primary.Anchor != 0 {
		t.Fatalf("Primary() = %+v, want {0 0}", primary)
	}
}

func TestMultiCursorInsertOpAt(t *testing.T) {
	r := rope.NewString("abc\nabc")
	mc := NewMultiCursor()
	mc.SetPrimary(0, 3)
	mc.AddSelection(4, 7)

	op := mc.InsertOpAt(r, "X")
	got, err := applyForwardOp(r, op)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "X\nX" {
		t.Fatalf("got %q", got.String())
	}

	mc.AdvanceAfter(op)
	cursors := mc.Cursors()
	if len(cursors) != 2 {
		t.Fatalf("cursor count = %d, want 2", len(cursors))
	}
	if cursors[0].Offset != 1 || cursors[1].Offset != 3 {
		t.Fatalf("unexpected cursor offsets after edit: %+v", cursors)
	}
}

func TestMultiCursorInsertOpAtBareCursors(t *testing.T) {
	r := rope.NewString("hello")
	mc := NewMultiCursor()
	mc.SetPrimary(1, 1)
	mc.AddCursor(3)

	op := mc.InsertOpAt(r, "-")
	got, err := applyForwardOp(r, op)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "h-el-lo" {
		t.Fatalf("got %q", got.String())
	}
	mc.AdvanceAfter(op)
	cursors := mc.Cursors()
	if cursors[0].Offset != 2 {
		t.Fatalf("primary offset = %d, want 2", cursors[0].Offset)
	}
	if cursors[1].Offset != 5 {
		t.Fatalf("secondary offset = %d, want 5", cursors[1].Offset)
	}
}

func TestMultiCursorAddSelectionOrdersByOffset(t *testing.T) {
	mc := NewMultiCursor()
	mc.SetPrimary(7, 7)
	mc.AddSelection(2, 4)
	mc.AddSelection(9, 12)

	want := []Cursor{{Offset: 4, Anchor: 2}, {Offset: 7, Anchor: 7}, {Offset: 12, Anchor: 9}}
	if diff := cmp.Diff(want, mc.Cursors()); diff != "" {
		t.Fatalf("Cursors() mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiCursorDeleteBackspaceOp(t *testing.T) {
	r := rope.NewString("hello world")
	mc := NewMultiCursor()
	mc.SetPrimary(1, 3)
	mc.AddSelection(4, 7)

	op := mc.DeleteBackspaceOp(r)
	got, err := applyForwardOp(r, op)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "hlorld" {
		t.Fatalf("got %q", got.String())
	}
}

func TestMultiCursorDeleteForwardOp(t *testing.T) {
	r := rope.NewString("abc")
	mc := NewMultiCursor()
	mc.SetPrimary(0, 0)
	mc.AddCursor(1)

	op := mc.DeleteForwardOp(r)
	got, err := applyForwardOp(r, op)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "c" {
		t.Fatalf("got %q", got.String())
	}
}

func TestMultiCursorAddNextOccurrence(t *testing.T) {
	r := rope.NewString("foo foo foo")
	mc := NewMultiCursor()
	mc.SetPrimary(0, 3)

	if !mc.AddNextOccurrence(r) {
		t.Fatalf("first AddNextOccurrence() = false, want true")
	}
	if !mc.AddNextOccurrence(r) {
		t.Fatalf("second AddNextOccurrence() = false, want true")
	}
	if mc.AddNextOccurrence(r) {
		t.Fatalf("third AddNextOccurrence() = true, want false")
	}
	if mc.Count() != 3 {
		t.Fatalf("cursor count = %d, want 3", mc.Count())
	}
}

func TestMultiCursorReset(t *testing.T) {
	mc := NewMultiCursor()
	mc.SetPrimary(10, 2)
	mc.AddCursor(5)
	mc.AddCursor(7)
	mc.Reset()
	if mc.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", mc.Count())
	}
	primary := mc.Primary()
	if primary.Offset != 10 || primary.Anchor != 2 {
		t.Fatalf("Primary() = %+v, want {10 2}", primary)
	}
}
