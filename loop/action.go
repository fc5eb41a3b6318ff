// Package loop implements zcode's terminal event loop: a tcell input
// poller feeding a pure reducer over an App state, and a ScreenRenderer
// that draws App state, running a chroma lexer over each visible line.
// The narrow Renderer interface, which takes tokens lexed elsewhere, has
// no implementation in this package.
package loop

import (
	protocol "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/config"
	"github.com/zcode-editor/zcode/rope"
)

// Action is anything that can change App state. Keyboard/mouse/resize
// input becomes an Action in the input poller before it ever reaches the
// reducer, and so do the results of async work (LSP replies, respawn
// notices) arriving on the inbound channel — the reducer itself never
// waits for async work (see Reduce for the one disk read it makes).
type Action interface {
	isAction()
}

type baseAction struct{}

func (baseAction) isAction() {}

// KeyAction carries an editor command resolved from a key chord via the
// active keymap.
type KeyAction struct {
	baseAction
	Command config.Action
}

// InsertTextAction carries literal text typed by the user (an
// EventKey.Rune() that didn't match any bound chord).
type InsertTextAction struct {
	baseAction
	Text string
}

// ResizeAction reports the terminal's new dimensions. Multiple resize
// events arriving between two poll cycles collapse to the latest one
// (§5 back-pressure): only the terminal's final size after a resize
// burst matters, and re-rendering after every intermediate resize wastes
// a frame.
type ResizeAction struct {
	baseAction
	Width, Height int
}

// MouseScrollAction reports a scroll delta. Consecutive wheel events, up
// or down, collapse into one summed delta for the same reason resize
// events do.
type MouseScrollAction struct {
	baseAction
	DeltaLines int
}

// MouseClickAction reports a click at terminal cell (Col, Row) and whether
// Shift was held. Reduce ignores it: a click does not move the cursor or
// change the selection.
type MouseClickAction struct {
	baseAction
	Col, Row int
	Shift    bool
}

// CompletionResultAction carries a completion reply from a language
// server. RequestID lets the reducer discard results whose request is no
// longer the most recent one for that buffer (§5 cancellation-and-drop):
// the user may have kept typing while the request was in flight, making
// the completion list stale before it arrives.
type CompletionResultAction struct {
	baseAction
	BufferPath string
	RequestID  uint64
	Items      []protocol.CompletionItem
	Err        error
}

// HoverResultAction carries a hover reply, subject to the same
// staleness check as completions.
type HoverResultAction struct {
	baseAction
	BufferPath string
	RequestID  uint64
	Hover      *protocol.Hover
	Err        error
}

// DiagnosticsAction carries a publishDiagnostics notification for one
// document; unlike request results this is never stale, since diagnostics
// notifications are not responses to a specific in-flight request.
type DiagnosticsAction struct {
	baseAction
	URI         protocol.DocumentURI
	Diagnostics []protocol.Diagnostic
}

// SaveResultAction reports whether a SaveEffect succeeded.
type SaveResultAction struct {
	baseAction
	BufferPath string
	Rope       rope.Rope
	Err        error
}

// OpenFileResultAction reports the outcome of an OpenFileEffect.
type OpenFileResultAction struct {
	baseAction
	Path string
	Err  error
}

// DefinitionResultAction carries a go-to-definition reply.
type DefinitionResultAction struct {
	baseAction
	BufferPath string
	Locations  []protocol.Location
	Err        error
}

// RenameResultAction carries a workspace edit reply to a rename request,
// subject to the same staleness check as completions and hover.
type RenameResultAction struct {
	baseAction
	BufferPath string
	RequestID  uint64
	Edit       *protocol.WorkspaceEdit
	Err        error
}

// CodeActionResultAction carries a code-action reply; unlike completion
// and hover it isn't request-id-gated since it isn't cancelled by further
// typing the way completion is (§C code actions).
type CodeActionResultAction struct {
	baseAction
	BufferPath string
	Actions    []protocol.CodeAction
	Err        error
}

// ServerCrashedAction reports that a language server session's subprocess
// exited and is being respawned; the reducer surfaces this as a status
// message rather than an error dialog, since the session recovers on its
// own.
type ServerCrashedAction struct {
	baseAction
	Language string
}

// QuitAction requests a clean shutdown.
type QuitAction struct{ baseAction }
