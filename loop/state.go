package loop

import (
	protocol "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/config"
	"github.com/zcode-editor/zcode/editor"
	"github.com/zcode-editor/zcode/lsp"
)

// Mode is the event loop's input mode, gating which keymap entries apply
// (§3 "pending input-mode: normal / completion / dialog / command-palette").
type Mode int

const (
	ModeNormal Mode = iota
	ModeFind
	ModeReplace
	ModeGoToLine
	ModeCompletion
	ModeCommandPalette
	ModeRename
)

// pendingRequest tracks an in-flight capability-gated request so a stale
// reply can be dropped by id (§4.8 cancellation).
type pendingRequest struct {
	id         uint64
	bufferPath string
}

// renameContext remembers which symbol a pending F2 rename targets while
// the user types the new name into the prompt, since the request itself
// isn't sent until the prompt is submitted.
type renameContext struct {
	bufferPath string
	language   string
	root       protocol.DocumentURI
	uri        protocol.DocumentURI
	pos        protocol.Position
}

// App is the event loop's exclusively-owned mutable state (§3). It is
// never touched by a worker goroutine directly; workers only see rope
// snapshots handed to them at effect-submission time and report back via
// Actions on the inbound channel.
type App struct {
	Tabs       *editor.TabManager
	Supervisor *lsp.Supervisor
	Cfg        config.Config

	Width, Height int
	Mode          Mode

	PromptInput   string
	StatusMessage string

	Folds       map[string]*editor.FoldState      // keyed by buffer path
	Blocks      map[string]*editor.BlockSelection // keyed by buffer path
	Diagnostics map[protocol.DocumentURI][]protocol.Diagnostic

	Completions []protocol.CompletionItem
	Hover       *protocol.Hover
	CodeActions []protocol.CodeAction

	activeCompletion pendingRequest
	activeHover      pendingRequest
	activeRename     pendingRequest
	renameTarget     renameContext
	requestSeq       uint64

	dirty bool // render-only-if-dirty (§4.8 step 1)
	Quit  bool
}

// NewApp creates event loop state around an already-populated TabManager
// and a supervisor for spawning language servers on demand.
func NewApp(tabs *editor.TabManager, sv *lsp.Supervisor, cfg config.Config) *App {
	return &App{
		Tabs:        tabs,
		Supervisor:  sv,
		Cfg:         cfg,
		Folds:       make(map[string]*editor.FoldState),
		Blocks:      make(map[string]*editor.BlockSelection),
		Diagnostics: make(map[protocol.DocumentURI][]protocol.Diagnostic),
		dirty:       true,
	}
}

// ActiveBuffer returns the focused buffer, or nil if no tabs are open.
func (a *App) ActiveBuffer() *editor.Buffer {
	return a.Tabs.ActiveBuffer()
}

// FoldState returns (creating if needed) the fold state for buf, syncing its
// regions from the buffer's current rope whenever the buffer's edit version
// has advanced since the last sync.
func (a *App) FoldState(buf *editor.Buffer) *editor.FoldState {
	path := buf.Path()
	fs, ok := a.Folds[path]
	if !ok {
		fs = editor.NewFoldState()
		a.Folds[path] = fs
	}
	fs.Sync(buf.Rope(), buf.Version())
	return fs
}

// BlockState returns (creating if needed) the block selection for path.
func (a *App) BlockState(path string) *editor.BlockSelection {
	bs, ok := a.Blocks[path]
	if !ok {
		bs = editor.NewBlockSelection()
		a.Blocks[path] = bs
	}
	return bs
}

// MarkDirty flags that a re-render is needed before the next poll.
func (a *App) MarkDirty() { a.dirty = true }

// TakeDirty reports and clears the render-dirty flag.
func (a *App) TakeDirty() bool {
	d := a.dirty
	a.dirty = false
	return d
}

// nextRequestID hands out a monotonic id used to detect stale async
// replies (§4.8 cancellation-and-drop). Only ever called from the UI
// thread, so it needs no synchronization.
func (a *App) nextRequestID() uint64 {
	a.requestSeq++
	return a.requestSeq
}
