package loop

import (
	"context"

	protocol "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/editor"
)

// inboundCapacity bounds the channel worker goroutines report Actions back
// on. §5 calls for a bounded inbound queue ("e.g. 1024") with priority-drop
// semantics under back-pressure: diagnostics notifications are dropped
// first since a later publishDiagnostics supersedes an earlier one for the
// same document, while save/open results are never dropped since they have
// no future replacement.
const inboundCapacity = 1024

// Runner drives the tick loop: poll input, reduce, execute effects on
// worker goroutines, drain results, render. It is the only place in the
// package that spawns goroutines; Reduce itself never does.
type Runner struct {
	App      *App
	Input    *InputSource
	Render   func(app *App)
	inbound  chan Action
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewRunner wires an App to an input source and a render callback. The
// render callback is intentionally a plain func rather than the Renderer
// interface so a headless test harness can pass one that just records
// calls.
func NewRunner(app *App, input *InputSource, render func(app *App)) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{App: app, Input: input, Render: render, inbound: make(chan Action, inboundCapacity), ctx: ctx, cancel: cancel}
	app.Supervisor.OnDiagnostics(func(uri protocol.DocumentURI, diags []protocol.Diagnostic) {
		r.deliver(DiagnosticsAction{URI: uri, Diagnostics: diags}, true)
	})
	return r
}

// deliver pushes an Action onto the inbound channel. dropPriority marks an
// Action safe to drop under back-pressure (superseded-by-later-message
// cases); everything else blocks briefly rather than lose a result the
// user is waiting on.
func (r *Runner) deliver(a Action, dropPriority bool) {
	if dropPriority {
		select {
		case r.inbound <- a:
		default:
		}
		return
	}
	select {
	case r.inbound <- a:
	case <-r.ctx.Done():
	}
}

// Run blocks until a QuitAction is reduced. Per §4.8's ordering guarantee,
// each tick reduces every Action already produced by this tick's input
// poll before draining any Actions that arrived asynchronously on the
// inbound channel, so a keystroke typed this tick is never reordered
// behind a slow LSP reply from three ticks ago.
func (r *Runner) Run() {
	defer r.cancel()
	for !r.App.Quit {
		actions := r.Input.Poll()
		var effects []Effect
		for _, a := range actions {
			effects = append(effects, Reduce(r.App, a)...)
		}

	drainInbound:
		for {
			select {
			case a := <-r.inbound:
				effects = append(effects, Reduce(r.App, a)...)
			default:
				break drainInbound
			}
		}

		for _, e := range effects {
			r.execute(e)
		}

		if r.App.TakeDirty() && r.Render != nil {
			r.Render(r.App)
		}
	}
	r.App.Supervisor.CloseAll()
}

// execute runs one Effect on its own goroutine and feeds the result back
// as an Action; it never mutates App directly.
func (r *Runner) execute(e Effect) {
	switch eff := e.(type) {
	case SaveEffect:
		go func() {
			err := editor.WriteSnapshot(eff.Path, eff.Rope, eff.CRLF)
			r.deliver(SaveResultAction{BufferPath: eff.BufferPath, Rope: eff.Rope, Err: err}, false)
		}()
	case OpenFileEffect:
		go func() {
			r.deliver(OpenFileResultAction{Path: eff.Path}, false)
		}()
	case EnsureSessionEffect:
		go func() {
			sess, err := r.App.Supervisor.Session(eff.Language, eff.Root)
			if err != nil {
				return
			}
			r.App.Supervisor.MarkOpen(eff.URI)
			_ = sess.DidOpen(r.ctx, eff.URI, eff.Language, eff.Version, eff.Text)
		}()
	case DidChangeEffect:
		go func() {
			sess, err := r.App.Supervisor.Session(eff.Language, eff.Root)
			if err != nil {
				return
			}
			changes := []protocol.TextDocumentContentChangeEvent{{Text: eff.Text}}
			_ = sess.DidChange(r.ctx, eff.URI, eff.Version, changes)
		}()
	case DidCloseEffect:
		go func() {
			sess, err := r.App.Supervisor.Session(eff.Language, eff.Root)
			if err != nil {
				return
			}
			r.App.Supervisor.MarkClosed(eff.URI)
			_ = sess.DidClose(r.ctx, eff.URI)
		}()
	case RequestCompletionEffect:
		go func() {
			sess, err := r.App.Supervisor.Session(eff.Language, eff.Root)
			if err != nil {
				r.deliver(CompletionResultAction{BufferPath: eff.BufferPath, RequestID: eff.RequestID, Err: err}, false)
				return
			}
			items, err := sess.Completion(r.ctx, eff.URI, eff.Pos)
			r.deliver(CompletionResultAction{BufferPath: eff.BufferPath, RequestID: eff.RequestID, Items: items, Err: err}, false)
		}()
	case RequestHoverEffect:
		go func() {
			sess, err := r.App.Supervisor.Session(eff.Language, eff.Root)
			if err != nil {
				r.deliver(HoverResultAction{BufferPath: eff.BufferPath, RequestID: eff.RequestID, Err: err}, false)
				return
			}
			hover, err := sess.HoverInfo(r.ctx, eff.URI, eff.Pos)
			r.deliver(HoverResultAction{BufferPath: eff.BufferPath, RequestID: eff.RequestID, Hover: hover, Err: err}, false)
		}()
	case RequestDefinitionEffect:
		go func() {
			sess, err := r.App.Supervisor.Session(eff.Language, eff.Root)
			if err != nil {
				r.deliver(DefinitionResultAction{BufferPath: eff.BufferPath, Err: err}, false)
				return
			}
			locs, err := sess.Definition(r.ctx, eff.URI, eff.Pos)
			r.deliver(DefinitionResultAction{BufferPath: eff.BufferPath, Locations: locs, Err: err}, false)
		}()
	case RequestRenameEffect:
		go func() {
			sess, err := r.App.Supervisor.Session(eff.Language, eff.Root)
			if err != nil {
				r.deliver(RenameResultAction{BufferPath: eff.BufferPath, RequestID: eff.RequestID, Err: err}, false)
				return
			}
			edit, err := sess.Rename(r.ctx, eff.URI, eff.Pos, eff.NewName)
			r.deliver(RenameResultAction{BufferPath: eff.BufferPath, RequestID: eff.RequestID, Edit: edit, Err: err}, false)
		}()
	case RequestCodeActionEffect:
		go func() {
			sess, err := r.App.Supervisor.Session(eff.Language, eff.Root)
			if err != nil {
				r.deliver(CodeActionResultAction{BufferPath: eff.BufferPath, Err: err}, false)
				return
			}
			actions, err := sess.CodeAction(r.ctx, eff.URI, eff.Range, eff.Diagnostics)
			r.deliver(CodeActionResultAction{BufferPath: eff.BufferPath, Actions: actions, Err: err}, false)
		}()
	case QuitEffect:
		r.cancel()
	}
}
