package loop

import (
	"path/filepath"

	protocol "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/config"
	"github.com/zcode-editor/zcode/editor"
	"github.com/zcode-editor/zcode/zerr"
)

// Reduce is the event loop's pure(-ish) core: it applies action to app in
// place — rope mutations never suspend, so doing them synchronously here
// matches §4.8's "reducer and rope mutations never suspend" rule — and
// returns any Effects that need a worker goroutine (disk or subprocess
// I/O). It never waits on a worker; the one disk read it makes itself is
// TabManager.OpenFile, when an open-file or go-to-definition result names
// a file to load.
func Reduce(app *App, action Action) []Effect {
	app.MarkDirty()
	switch a := action.(type) {
	case KeyAction:
		return reduceKey(app, a.Command)
	case InsertTextAction:
		return reduceInsertText(app, a.Text)
	case ResizeAction:
		app.Width, app.Height = a.Width, a.Height
		return nil
	case MouseScrollAction:
		return nil // ignored: nothing keeps a scroll offset, and ScreenRenderer always draws from the first line
	case MouseClickAction:
		return reduceClick(app, a)
	case SaveResultAction:
		return reduceSaveResult(app, a)
	case OpenFileResultAction:
		return reduceOpenFileResult(app, a)
	case CompletionResultAction:
		return reduceCompletionResult(app, a)
	case HoverResultAction:
		return reduceHoverResult(app, a)
	case DefinitionResultAction:
		return reduceDefinitionResult(app, a)
	case RenameResultAction:
		return reduceRenameResult(app, a)
	case CodeActionResultAction:
		return reduceCodeActionResult(app, a)
	case DiagnosticsAction:
		app.Diagnostics[a.URI] = a.Diagnostics
		return nil
	case ServerCrashedAction:
		app.StatusMessage = "language server (" + a.Language + ") crashed, respawning"
		return nil
	case QuitAction:
		app.Quit = true
		return []Effect{QuitEffect{}}
	default:
		return nil
	}
}

func reduceKey(app *App, cmd config.Action) []Effect {
	buf := app.ActiveBuffer()

	switch cmd {
	case config.ActionQuit:
		app.Quit = true
		return []Effect{QuitEffect{}}
	case config.ActionSave:
		return reduceSave(app, buf)
	case config.ActionSaveAs:
		app.Mode = ModeGoToLine // reuse the single-line prompt UI; submitting it does not save, since ActionSubmitPrompt only acts in ModeRename
		app.PromptInput = ""
		return nil
	case config.ActionUndo:
		if buf != nil {
			if _, err := buf.Undo(); err != nil {
				app.statusError(err)
			}
		}
	case config.ActionRedo:
		if buf != nil {
			if _, err := buf.Redo(); err != nil {
				app.statusError(err)
			}
		}
	case config.ActionFind:
		app.Mode = ModeFind
		app.PromptInput = ""
	case config.ActionReplace:
		app.Mode = ModeReplace
		app.PromptInput = ""
	case config.ActionGoToLine:
		app.Mode = ModeGoToLine
		app.PromptInput = ""
	case config.ActionNewTab:
		app.Tabs.NewUntitled()
	case config.ActionCloseTab:
		app.Tabs.Close(app.Tabs.Active())
	case config.ActionNextTab:
		app.Tabs.SetActive((app.Tabs.Active() + 1) % max1(app.Tabs.Count()))
	case config.ActionPrevTab:
		app.Tabs.SetActive((app.Tabs.Active() - 1 + app.Tabs.Count()) % max1(app.Tabs.Count()))
	case config.ActionMoveUp, config.ActionMoveDown, config.ActionMoveLeft, config.ActionMoveRight,
		config.ActionMoveWordLeft, config.ActionMoveWordRight, config.ActionMoveLineStart, config.ActionMoveLineEnd,
		config.ActionSelectUp, config.ActionSelectDown, config.ActionSelectLeft, config.ActionSelectRight:
		reduceMove(buf, cmd)
	case config.ActionSelectAll:
		if buf != nil {
			sel := buf.Selection()
			sel.SelectAll(buf.Rope())
			buf.SetSelection(sel)
		}
	case config.ActionDeleteLine:
		if buf != nil {
			if block := app.BlockState(buf.Path()); block.Active {
				op := block.DeleteOp(buf.Rope(), lineSourceCache(buf))
				after := editor.TranslateOffset(buf.Selection().Cursor, op.Primitives)
				app.statusError(buf.ApplyLocalEdit(op, editor.Selection{Anchor: after, Cursor: after}))
				block.Clear()
			} else {
				line := buf.Rope().ByteToLine(buf.Selection().Cursor)
				app.statusError(buf.DeleteLineAt(line))
			}
		}
	case config.ActionDuplicateLine:
		if buf != nil {
			line := buf.Rope().ByteToLine(buf.Selection().Cursor)
			app.statusError(buf.DuplicateLineAt(line))
		}
	case config.ActionMoveLineUp:
		if buf != nil {
			line := buf.Rope().ByteToLine(buf.Selection().Cursor)
			app.statusError(buf.MoveLineAt(line, -1))
		}
	case config.ActionMoveLineDown:
		if buf != nil {
			line := buf.Rope().ByteToLine(buf.Selection().Cursor)
			app.statusError(buf.MoveLineAt(line, 1))
		}
	case config.ActionToggleFold:
		if buf != nil {
			line := buf.Rope().ByteToLine(buf.Selection().Cursor)
			app.FoldState(buf).Toggle(line)
		}
	case config.ActionBlockSelectUp, config.ActionBlockSelectDown, config.ActionBlockSelectLeft, config.ActionBlockSelectRight:
		reduceBlockSelect(app, buf, cmd)
	case config.ActionMatchBracket:
		if buf != nil {
			cursor := buf.Selection().Cursor
			if match, ok := editor.FindMatchingBracket(buf.Rope(), cursor); ok {
				buf.SetSelection(editor.Selection{Anchor: match, Cursor: match})
			}
		}
	case config.ActionAddCursorNextOcc:
		if buf != nil {
			buf.AddCursorAtNextOccurrence()
		}
	case config.ActionEscapeMultiCursor:
		if buf != nil {
			buf.Cursors().Reset()
			sel := buf.Selection()
			sel.Clear()
			buf.SetSelection(sel)
			app.BlockState(buf.Path()).Clear()
		}
		app.Mode = ModeNormal
		app.Completions = nil
		app.Hover = nil
	case config.ActionCompletion:
		return reduceRequestCompletion(app, buf)
	case config.ActionHover:
		return reduceRequestHover(app, buf)
	case config.ActionGoToDefinition:
		return reduceRequestDefinition(app, buf)
	case config.ActionRename:
		reduceStartRename(app, buf)
	case config.ActionCodeAction:
		return reduceRequestCodeAction(app, buf)
	case config.ActionSubmitPrompt:
		if app.Mode == ModeRename {
			return reduceSubmitRename(app)
		}
		if app.Mode == ModeNormal {
			return reduceInsertText(app, "\n")
		}
	}
	return nil
}

func reduceMove(buf *editor.Buffer, cmd config.Action) {
	if buf == nil {
		return
	}
	sel := buf.Selection()
	extend := false
	var newOffset int
	switch cmd {
	case config.ActionMoveLeft:
		newOffset = editor.GraphemeLeft(buf.Rope(), sel.Cursor)
	case config.ActionMoveRight:
		newOffset = editor.GraphemeRight(buf.Rope(), sel.Cursor)
	case config.ActionSelectLeft:
		newOffset, extend = editor.GraphemeLeft(buf.Rope(), sel.Cursor), true
	case config.ActionSelectRight:
		newOffset, extend = editor.GraphemeRight(buf.Rope(), sel.Cursor), true
	case config.ActionMoveWordLeft:
		newOffset = wordLeft(buf.Rope(), sel.Cursor)
	case config.ActionMoveWordRight:
		newOffset = wordRight(buf.Rope(), sel.Cursor)
	case config.ActionMoveLineStart:
		newOffset = editor.LineStart(buf.Rope(), sel.Cursor)
	case config.ActionMoveLineEnd:
		newOffset = editor.LineEnd(buf.Rope(), sel.Cursor)
	case config.ActionMoveUp:
		newOffset = editor.VerticalMove(buf.Rope(), lineSourceCache(buf), sel.Cursor, -1)
	case config.ActionMoveDown:
		newOffset = editor.VerticalMove(buf.Rope(), lineSourceCache(buf), sel.Cursor, 1)
	case config.ActionSelectUp:
		newOffset, extend = editor.VerticalMove(buf.Rope(), lineSourceCache(buf), sel.Cursor, -1), true
	case config.ActionSelectDown:
		newOffset, extend = editor.VerticalMove(buf.Rope(), lineSourceCache(buf), sel.Cursor, 1), true
	default:
		return
	}
	if extend {
		buf.SetSelection(editor.Selection{Anchor: sel.Anchor, Cursor: newOffset})
	} else {
		buf.SetSelection(editor.Selection{Anchor: newOffset, Cursor: newOffset})
	}
}

// reduceBlockSelect grows or starts a rectangular block selection anchored
// at the primary cursor's line/display-column, one line or column at a
// time per arrow press (§C block selection).
func reduceBlockSelect(app *App, buf *editor.Buffer, cmd config.Action) {
	if buf == nil {
		return
	}
	r := buf.Rope()
	lc := lineSourceCache(buf)
	block := app.BlockState(buf.Path())
	if !block.Active {
		cursor := buf.Selection().Cursor
		line := r.ByteToLine(cursor)
		col := editor.VisualColAtByte(r, lc, cursor)
		block.Set(line, line, col, col)
	}
	switch cmd {
	case config.ActionBlockSelectUp:
		block.ExpandUp()
	case config.ActionBlockSelectDown:
		block.ExpandDown(r.LineCount() - 1)
	case config.ActionBlockSelectLeft:
		block.ExpandLeft()
	case config.ActionBlockSelectRight:
		block.ExpandRight(app.Width)
	}
}

// lineSourceCache builds a throwaway LayoutCache for one vertical-motion
// calculation. The reducer only needs VisualCol/CharAtCol for the two
// lines involved, so a fresh cache with a tab width of 4 is cheap and
// keeps no state between calls.
func lineSourceCache(buf *editor.Buffer) *editor.LayoutCache {
	r := buf.Rope()
	return editor.NewLayoutCache(4, func(line int) string {
		if line < 0 || line >= r.LineCount() {
			return ""
		}
		return r.Line(line)
	})
}

func reduceInsertText(app *App, text string) []Effect {
	buf := app.ActiveBuffer()
	if buf == nil {
		return nil
	}
	switch app.Mode {
	case ModeFind, ModeReplace, ModeGoToLine, ModeRename:
		app.PromptInput += text
		return nil
	}
	if block := app.BlockState(buf.Path()); block.Active {
		op := block.InsertOp(buf.Rope(), lineSourceCache(buf), text)
		after := editor.TranslateOffset(buf.Selection().Cursor, op.Primitives)
		app.statusError(buf.ApplyLocalEdit(op, editor.Selection{Anchor: after, Cursor: after}))
		block.Clear()
		return reduceDidChangeEffect(app, buf)
	}
	if text == "\n" {
		primary := buf.Cursors().Primary()
		text += editor.ComputeIndent(buf.Rope(), primary.Offset)
	}
	app.statusError(buf.InsertAtCursors(text))
	return reduceDidChangeEffect(app, buf)
}

func reduceClick(app *App, a MouseClickAction) []Effect {
	buf := app.ActiveBuffer()
	if buf == nil {
		return nil
	}
	// The click is ignored: nothing maps a terminal (Col, Row) to a byte
	// offset, so the cursor and selection are left as they are.
	_ = buf
	return nil
}

func reduceSave(app *App, buf *editor.Buffer) []Effect {
	if buf == nil {
		return nil
	}
	if buf.Untitled() {
		app.StatusMessage = "no file path; use Save As"
		return nil
	}
	path, r, crlf := buf.Snapshot()
	return []Effect{SaveEffect{BufferPath: buf.Path(), Path: path, Rope: r, CRLF: crlf}}
}

func reduceSaveResult(app *App, a SaveResultAction) []Effect {
	buf := findBuffer(app, a.BufferPath)
	if buf == nil {
		return nil
	}
	if a.Err != nil {
		app.statusError(a.Err)
		return nil
	}
	buf.MarkSaved(a.Rope)
	app.StatusMessage = "saved"
	return nil
}

func reduceOpenFileResult(app *App, a OpenFileResultAction) []Effect {
	if a.Err != nil {
		app.statusError(a.Err)
		return nil
	}
	if _, err := app.Tabs.OpenFile(a.Path); err != nil {
		app.statusError(err)
	}
	return nil
}

func reduceRequestCompletion(app *App, buf *editor.Buffer) []Effect {
	if buf == nil || buf.Untitled() {
		return nil
	}
	id := app.nextRequestID()
	app.activeCompletion = pendingRequest{id: id, bufferPath: buf.Path()}
	pos := editor.ByteToPosition(buf.Rope(), buf.Selection().Cursor, editor.UTF16)
	return []Effect{RequestCompletionEffect{
		BufferPath: buf.Path(),
		Language:   buf.Language(),
		Root:       workspaceRoot(buf),
		URI:        buf.URI(),
		Pos:        pos,
		RequestID:  id,
	}}
}

func reduceCompletionResult(app *App, a CompletionResultAction) []Effect {
	if a.RequestID != app.activeCompletion.id {
		return nil // stale reply from a superseded request; drop it (§4.8 cancellation)
	}
	if a.Err != nil {
		app.statusError(a.Err)
		return nil
	}
	app.Completions = a.Items
	app.Mode = ModeCompletion
	return nil
}

func reduceRequestHover(app *App, buf *editor.Buffer) []Effect {
	if buf == nil || buf.Untitled() {
		return nil
	}
	id := app.nextRequestID()
	app.activeHover = pendingRequest{id: id, bufferPath: buf.Path()}
	pos := editor.ByteToPosition(buf.Rope(), buf.Selection().Cursor, editor.UTF16)
	return []Effect{RequestHoverEffect{
		BufferPath: buf.Path(),
		Language:   buf.Language(),
		Root:       workspaceRoot(buf),
		URI:        buf.URI(),
		Pos:        pos,
		RequestID:  id,
	}}
}

func reduceHoverResult(app *App, a HoverResultAction) []Effect {
	if a.RequestID != app.activeHover.id {
		return nil
	}
	if a.Err != nil {
		app.statusError(a.Err)
		return nil
	}
	app.Hover = a.Hover
	return nil
}

func reduceRequestDefinition(app *App, buf *editor.Buffer) []Effect {
	if buf == nil || buf.Untitled() {
		return nil
	}
	pos := editor.ByteToPosition(buf.Rope(), buf.Selection().Cursor, editor.UTF16)
	return []Effect{RequestDefinitionEffect{
		BufferPath: buf.Path(),
		Language:   buf.Language(),
		Root:       workspaceRoot(buf),
		URI:        buf.URI(),
		Pos:        pos,
	}}
}

func reduceDefinitionResult(app *App, a DefinitionResultAction) []Effect {
	if a.Err != nil {
		app.statusError(a.Err)
		return nil
	}
	if len(a.Locations) == 0 {
		app.StatusMessage = "no definition found"
		return nil
	}
	loc := a.Locations[0]
	idx, err := app.Tabs.OpenFile(editor.URIToPath(loc.URI))
	if err != nil {
		app.statusError(err)
		return nil
	}
	app.Tabs.SetActive(idx)
	if target := app.Tabs.Buffer(idx); target != nil {
		off := editor.PositionToByte(target.Rope(), loc.Range.Start, editor.UTF16)
		target.SetSelection(editor.Selection{Anchor: off, Cursor: off})
	}
	return nil
}

// reduceStartRename enters the rename prompt, capturing the symbol's
// buffer/position now since the request itself isn't sent until the user
// submits the new name (§C rename via workspace edit).
func reduceStartRename(app *App, buf *editor.Buffer) {
	if buf == nil || buf.Untitled() {
		return
	}
	app.Mode = ModeRename
	app.PromptInput = ""
	app.renameTarget = renameContext{
		bufferPath: buf.Path(),
		language:   buf.Language(),
		root:       workspaceRoot(buf),
		uri:        buf.URI(),
		pos:        editor.ByteToPosition(buf.Rope(), buf.Selection().Cursor, editor.UTF16),
	}
}

func reduceSubmitRename(app *App) []Effect {
	target := app.renameTarget
	newName := app.PromptInput
	app.Mode = ModeNormal
	app.PromptInput = ""
	if target.bufferPath == "" || newName == "" {
		return nil
	}
	id := app.nextRequestID()
	app.activeRename = pendingRequest{id: id, bufferPath: target.bufferPath}
	return []Effect{RequestRenameEffect{
		BufferPath: target.bufferPath,
		Language:   target.language,
		Root:       target.root,
		URI:        target.uri,
		Pos:        target.pos,
		NewName:    newName,
		RequestID:  id,
	}}
}

// reduceRenameResult applies a rename's workspace edit through the same
// atomic edit-application engine a server-originated edit always goes
// through (§4.5.4): every affected open buffer validates before any of
// them are mutated, and each mutation becomes a single composite,
// undoable op on that buffer's history.
func reduceRenameResult(app *App, a RenameResultAction) []Effect {
	if a.RequestID != app.activeRename.id {
		return nil // stale reply from a superseded rename; drop it
	}
	if a.Err != nil {
		app.statusError(a.Err)
		return nil
	}
	if a.Edit == nil || len(a.Edit.Changes) == 0 {
		app.StatusMessage = "no rename edits returned"
		return nil
	}

	targets := make([]editor.DocumentTarget, 0, len(a.Edit.Changes))
	editsByURI := make(map[protocol.DocumentURI][]protocol.TextEdit, len(a.Edit.Changes))
	buffers := make(map[protocol.DocumentURI]*editor.Buffer, len(a.Edit.Changes))
	for uriStr, edits := range a.Edit.Changes {
		uri := protocol.DocumentURI(uriStr)
		target := findBuffer(app, editor.URIToPath(uri))
		if target == nil {
			continue // edit touches a document that isn't open; nothing to apply it to
		}
		buffers[uri] = target
		targets = append(targets, editor.DocumentTarget{
			URI:           uri,
			Rope:          target.Rope(),
			Encoding:      editor.UTF16,
			ActualVersion: target.Version(),
		})
		editsByURI[uri] = edits
	}
	if len(targets) == 0 {
		app.StatusMessage = "rename touched no open buffers"
		return nil
	}

	results, err := editor.ApplyWorkspaceEdit(app.Tabs, nil, targets, editsByURI)
	if err != nil {
		app.statusError(err)
		return nil
	}
	for _, res := range results {
		if target := buffers[res.URI]; target != nil {
			app.statusError(target.ApplyRemoteEdit(res.Op, target.Version()))
		}
	}
	return nil
}

func reduceRequestCodeAction(app *App, buf *editor.Buffer) []Effect {
	if buf == nil || buf.Untitled() {
		return nil
	}
	start, end := buf.Selection().Ordered()
	rng := protocol.Range{
		Start: editor.ByteToPosition(buf.Rope(), start, editor.UTF16),
		End:   editor.ByteToPosition(buf.Rope(), end, editor.UTF16),
	}
	return []Effect{RequestCodeActionEffect{
		BufferPath:  buf.Path(),
		Language:    buf.Language(),
		Root:        workspaceRoot(buf),
		URI:         buf.URI(),
		Range:       rng,
		Diagnostics: app.Diagnostics[buf.URI()],
	}}
}

func reduceCodeActionResult(app *App, a CodeActionResultAction) []Effect {
	if a.Err != nil {
		app.statusError(a.Err)
		return nil
	}
	app.CodeActions = a.Actions
	if len(a.Actions) == 0 {
		app.StatusMessage = "no code actions available"
	}
	return nil
}

func reduceDidChangeEffect(app *App, buf *editor.Buffer) []Effect {
	if buf == nil || buf.Untitled() {
		return nil
	}
	return []Effect{DidChangeEffect{
		Language: buf.Language(),
		Root:     workspaceRoot(buf),
		URI:      buf.URI(),
		Version:  buf.Version(),
		Text:     buf.Text(),
	}}
}

func findBuffer(app *App, path string) *editor.Buffer {
	for _, b := range app.Tabs.Buffers() {
		if b.Path() == path {
			return b
		}
	}
	return nil
}

// workspaceRoot uses the buffer's own directory as the language-server
// root; a real workspace (project-file-based) root resolver is out of
// scope here and does not change any of §4.7's session-lifecycle logic.
func workspaceRoot(buf *editor.Buffer) protocol.DocumentURI {
	return protocol.DocumentURI("file://" + filepath.Dir(buf.Path()))
}

func (a *App) statusError(err error) {
	if err == nil {
		return
	}
	if e, ok := err.(*zerr.Error); ok {
		a.StatusMessage = e.Error()
		return
	}
	a.StatusMessage = err.Error()
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
