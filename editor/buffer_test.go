package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zcode-editor/zcode/zerr"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()
	if b == nil {
		t.Fatal("NewBuffer returned nil")
	}
	if b.Text() != "" {
		t.Errorf("new buffer text = %q, want empty", b.Text())
	}
	if b.Path() != "" {
		t.Errorf("new buffer path = %q, want empty", b.Path())
	}
	if b.Dirty() {
		t.Error("new buffer should not be dirty")
	}
}

func TestBufferOpenSaveDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBuffer()
	if err := b.Open(path); err != nil {
		t.Fatal(err)
	}
	if b.Dirty() {
		t.Fatal("freshly opened buffer should not be dirty")
	}
	if b.Language() != "go" {
		t.Fatalf("language = %q, want go", b.Language())
	}

	op := InsertOp(b.Rope().ByteLen(), "\nfunc main() {}\n")
	if err := b.ApplyLocalEdit(op, Selection{}); err != nil {
		t.Fatal(err)
	}
	if !b.Dirty() {
		t.Fatal("buffer should be dirty after edit")
	}

	if err := b.Save(); err != nil {
		t.Fatal(err)
	}
	if b.Dirty() {
		t.Fatal("buffer should be clean after save")
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(saved) != b.Text() {
		t.Fatalf("saved content mismatch: %q != %q", saved, b.Text())
	}
}

func TestBufferCRLFRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "win.txt")
	if err := os.WriteFile(path, []byte("a\r\nb\r\n"), 0644); err != nil {
		t.Fatal(err)
	}
	b := NewBuffer()
	if err := b.Open(path); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "a\nb\n" {
		t.Fatalf("expected normalized LF, got %q", b.Text())
	}
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "a\r\nb\r\n" {
		t.Fatalf("expected CRLF restored on save, got %q", raw)
	}
}

func TestBufferUndoRedo(t *testing.T) {
	b := NewBuffer()
	if err := b.ApplyLocalEdit(InsertOp(0, "hello"), Selection{Cursor: 5}); err != nil {
		t.Fatal(err)
	}
	if err := b.ApplyLocalEdit(InsertOp(5, " world"), Selection{Cursor: 11}); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "hello world" {
		t.Fatalf("got %q", b.Text())
	}

	ok, err := b.Undo()
	if err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if b.Text() != "hello" {
		t.Fatalf("after undo got %q", b.Text())
	}
	if b.Selection().Cursor != 5 {
		t.Fatalf("expected cursor restored to 5, got %d", b.Selection().Cursor)
	}

	ok, err = b.Redo()
	if err != nil || !ok {
		t.Fatalf("redo: ok=%v err=%v", ok, err)
	}
	if b.Text() != "hello world" {
		t.Fatalf("after redo got %q", b.Text())
	}
}

func TestBufferReplaceAll(t *testing.T) {
	b := NewBuffer()
	if err := b.ApplyLocalEdit(InsertOp(0, "foo bar foo baz foo"), Selection{}); err != nil {
		t.Fatal(err)
	}
	n, err := b.ReplaceAll("foo", "X")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 replacements, got %d", n)
	}
	if b.Text() != "X bar X baz X" {
		t.Fatalf("got %q", b.Text())
	}

	ok, err := b.Undo()
	if err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if b.Text() != "foo bar foo baz foo" {
		t.Fatalf("expected single undo step to revert all replacements, got %q", b.Text())
	}
}

func TestBufferVersionMismatch(t *testing.T) {
	b := NewBuffer()
	if err := b.ApplyLocalEdit(InsertOp(0, "hi"), Selection{}); err != nil {
		t.Fatal(err)
	}
	err := b.ApplyRemoteEdit(InsertOp(0, "X"), 0)
	if !zerr.Is(err, zerr.VersionMismatch) {
		t.Fatalf("expected VersionMismatch, got %v", err)
	}
	if err := b.ApplyRemoteEdit(InsertOp(0, "X"), b.Version()); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "Xhi" {
		t.Fatalf("got %q", b.Text())
	}
}

func TestBufferUntitledSaveAs(t *testing.T) {
	b := NewBuffer()
	if !b.Untitled() {
		t.Fatal("new buffer should be untitled")
	}
	if err := b.Save(); err == nil {
		t.Fatal("expected error saving untitled buffer")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := b.ApplyLocalEdit(InsertOp(0, "hi"), Selection{}); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if b.Untitled() {
		t.Fatal("buffer should have a path after SaveAs")
	}
	if b.Title() != "note.txt" {
		t.Fatalf("title = %q", b.Title())
	}
}
