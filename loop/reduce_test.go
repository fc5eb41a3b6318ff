package loop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zcode-editor/zcode/config"
	"github.com/zcode-editor/zcode/editor"
)

func newTestApp(t *testing.T, text string) (*App, *editor.Buffer) {
	t.Helper()
	tabs := editor.NewTabManager()
	tabs.NewUntitled()
	app := NewApp(tabs, nil, config.Default())
	app.Width, app.Height = 80, 24
	buf := app.ActiveBuffer()
	if text != "" {
		if err := buf.Replace(editor.Range{Start: 0, End: 0}, text); err != nil {
			t.Fatalf("seed buffer: %v", err)
		}
	}
	return app, buf
}

func TestReduceInsertTextAppendsAtCursor(t *testing.T) {
	app, _ := newTestApp(t, "")
	// Untitled buffers send no DidChangeEffect, so insert into a file-backed one.
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := app.Tabs.OpenFile(path); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	buf := app.ActiveBuffer()
	effects := Reduce(app, InsertTextAction{Text: "hi"})
	if got, want := buf.Text(), "hi"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	if len(effects) != 1 {
		t.Fatalf("len(effects) = %d, want 1 (DidChangeEffect)", len(effects))
	}
	if _, ok := effects[0].(DidChangeEffect); !ok {
		t.Fatalf("effects[0] = %T, want DidChangeEffect", effects[0])
	}
}

func TestReduceInsertTextGoesToPromptInFindMode(t *testing.T) {
	app, _ := newTestApp(t, "hello")
	app.Mode = ModeFind
	effects := Reduce(app, InsertTextAction{Text: "he"})
	if effects != nil {
		t.Fatalf("effects = %v, want nil while in find mode", effects)
	}
	if got, want := app.PromptInput, "he"; got != want {
		t.Fatalf("PromptInput = %q, want %q", got, want)
	}
}

func TestReduceMoveRightAdvancesCursorByOneGrapheme(t *testing.T) {
	app, buf := newTestApp(t, "abc")
	buf.SetSelection(editor.Selection{Anchor: 0, Cursor: 0})
	Reduce(app, KeyAction{Command: config.ActionMoveRight})
	sel := buf.Selection()
	if sel.Cursor != 1 || sel.Anchor != 1 {
		t.Fatalf("Selection() = %+v, want cursor/anchor collapsed at 1", sel)
	}
}

func TestReduceSelectRightExtendsWithoutMovingAnchor(t *testing.T) {
	app, buf := newTestApp(t, "abc")
	buf.SetSelection(editor.Selection{Anchor: 0, Cursor: 0})
	Reduce(app, KeyAction{Command: config.ActionSelectRight})
	sel := buf.Selection()
	if sel.Anchor != 0 || sel.Cursor != 1 {
		t.Fatalf("Selection() = %+v, want anchor 0, cursor 1", sel)
	}
}

func TestReduceUndoRestoresPriorText(t *testing.T) {
	app, buf := newTestApp(t, "")
	Reduce(app, InsertTextAction{Text: "x"})
	Reduce(app, KeyAction{Command: config.ActionUndo})
	if got, want := buf.Text(), ""; got != want {
		t.Fatalf("Text() after undo = %q, want %q", got, want)
	}
}

func TestReduceSaveOnUntitledBufferSetsStatusInsteadOfEffect(t *testing.T) {
	app, _ := newTestApp(t, "x")
	effects := Reduce(app, KeyAction{Command: config.ActionSave})
	if effects != nil {
		t.Fatalf("effects = %v, want nil for an untitled buffer", effects)
	}
	if app.StatusMessage == "" {
		t.Fatal("StatusMessage unset, want a no-path warning")
	}
}

func TestReduceQuitEmitsQuitEffectAndSetsFlag(t *testing.T) {
	app, _ := newTestApp(t, "")
	effects := Reduce(app, KeyAction{Command: config.ActionQuit})
	if !app.Quit {
		t.Fatal("Quit = false, want true")
	}
	if len(effects) != 1 {
		t.Fatalf("len(effects) = %d, want 1", len(effects))
	}
	if _, ok := effects[0].(QuitEffect); !ok {
		t.Fatalf("effects[0] = %T, want QuitEffect", effects[0])
	}
}

func TestReduceCompletionResultDroppedWhenStale(t *testing.T) {
	app, buf := newTestApp(t, "x")
	buf.SetLanguage("go")
	// Force a request in flight, then simulate a reply to an older id.
	app.activeCompletion = pendingRequest{id: 2, bufferPath: buf.Path()}
	Reduce(app, CompletionResultAction{RequestID: 1})
	if app.Mode == ModeCompletion {
		t.Fatal("Mode = ModeCompletion, want unchanged after a stale reply")
	}
}

func TestReduceCompletionResultAppliedWhenCurrent(t *testing.T) {
	app, buf := newTestApp(t, "x")
	buf.SetLanguage("go")
	app.activeCompletion = pendingRequest{id: 1, bufferPath: buf.Path()}
	Reduce(app, CompletionResultAction{RequestID: 1})
	if app.Mode != ModeCompletion {
		t.Fatalf("Mode = %v, want ModeCompletion", app.Mode)
	}
}

func TestReduceMarksDirtyOnEveryAction(t *testing.T) {
	app, _ := newTestApp(t, "")
	app.TakeDirty() // clear the initial dirty flag from NewApp
	Reduce(app, ResizeAction{Width: 10, Height: 10})
	if !app.TakeDirty() {
		t.Fatal("TakeDirty() = false, want true after any Reduce call")
	}
}
