package loop

import (
	protocol "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/rope"
)

// Effect is work the reducer wants performed off the UI thread — disk
// I/O, subprocess I/O, or anything else that can suspend. The runner
// executes each Effect on a worker goroutine and feeds its result back
// as an Action.
type Effect interface {
	isEffect()
}

type baseEffect struct{}

func (baseEffect) isEffect() {}

// SaveEffect writes a rope snapshot to disk. Path and Rope are captured
// at submission time so the write never touches Buffer state.
type SaveEffect struct {
	baseEffect
	BufferPath string // key to route the result back to the right buffer
	Path       string
	Rope       rope.Rope
	CRLF       bool
}

// OpenFileEffect asks the runner to open Path. The worker does not read
// the file: it hands Path back as an OpenFileResultAction, and the reducer
// then reads the file on the UI thread through TabManager.OpenFile.
type OpenFileEffect struct {
	baseEffect
	Path string
}

// EnsureSessionEffect spawns (or reuses) a language-server session for a
// buffer that was just opened and sends its didOpen notification.
type EnsureSessionEffect struct {
	baseEffect
	BufferPath string
	Language   string
	Root       protocol.DocumentURI
	URI        protocol.DocumentURI
	Version    int
	Text       string
}

// DidChangeEffect notifies a buffer's session of an edit.
type DidChangeEffect struct {
	baseEffect
	Language string
	Root     protocol.DocumentURI
	URI      protocol.DocumentURI
	Version  int
	Text     string // full document text; sent as a full-text change whatever sync kind the server advertised
}

// DidCloseEffect notifies a buffer's session that it closed.
type DidCloseEffect struct {
	baseEffect
	Language string
	Root     protocol.DocumentURI
	URI      protocol.DocumentURI
}

// RequestCompletionEffect asks the buffer's session for completions at a
// position, tagged with a request id the reducer uses to drop stale
// replies.
type RequestCompletionEffect struct {
	baseEffect
	BufferPath string
	Language   string
	Root       protocol.DocumentURI
	URI        protocol.DocumentURI
	Pos        protocol.Position
	RequestID  uint64
}

// RequestHoverEffect is Completion's hover equivalent.
type RequestHoverEffect struct {
	baseEffect
	BufferPath string
	Language   string
	Root       protocol.DocumentURI
	URI        protocol.DocumentURI
	Pos        protocol.Position
	RequestID  uint64
}

// RequestDefinitionEffect asks for the definition location(s) of the
// symbol at Pos.
type RequestDefinitionEffect struct {
	baseEffect
	BufferPath string
	Language   string
	Root       protocol.DocumentURI
	URI        protocol.DocumentURI
	Pos        protocol.Position
}

// RequestRenameEffect asks the buffer's session to rename the symbol at
// Pos to NewName, tagged with a request id so a stale reply (the user
// re-triggered rename before the first one returned) can be dropped.
type RequestRenameEffect struct {
	baseEffect
	BufferPath string
	Language   string
	Root       protocol.DocumentURI
	URI        protocol.DocumentURI
	Pos        protocol.Position
	NewName    string
	RequestID  uint64
}

// RequestCodeActionEffect asks for the code actions available over Range,
// including any diagnostics already known for the document so quick fixes
// can be offered without a round trip just to re-fetch them.
type RequestCodeActionEffect struct {
	baseEffect
	BufferPath  string
	Language    string
	Root        protocol.DocumentURI
	URI         protocol.DocumentURI
	Range       protocol.Range
	Diagnostics []protocol.Diagnostic
}

// QuitEffect signals the runner to shut down every language server
// session and stop the loop.
type QuitEffect struct{ baseEffect }
