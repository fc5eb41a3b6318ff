package lsp

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	protocol "github.com/sourcegraph/go-lsp"
	"golang.org/x/time/rate"

	"github.com/zcode-editor/zcode/zlog"
)

// changeDebounce is how long didChange notifications wait for further
// keystrokes before being flushed to the server, coalescing bursty typing
// into one notification per pause.
const changeDebounce = 30 * time.Millisecond

// pendingChange accumulates one buffer's outgoing edits while the
// debounce timer is running.
type pendingChange struct {
	uri     protocol.DocumentURI
	version int
	changes []protocol.TextDocumentContentChangeEvent
	timer   *time.Timer
}

// Session owns one language server subprocess for one (language, root
// path) pair: its lifecycle (spawn, crash detection, exponential-backoff
// respawn), its negotiated capabilities, and its outgoing request
// pacing — foreground requests (completion, hover, go-to-definition) go
// straight through, background ones (diagnostics-adjacent housekeeping)
// are paced through a rate limiter so a slow server doesn't get buried
// under a burst of low-priority calls.
type Session struct {
	Language string
	Root     protocol.DocumentURI
	log      *zlog.Logger

	spawn func(ctx context.Context) (*Client, error)

	mu           sync.Mutex
	client       *Client
	caps         Capabilities
	closed       bool
	pending      map[protocol.DocumentURI]*pendingChange
	backgroundRL *rate.Limiter

	onDiagnostics func(uri protocol.DocumentURI, diags []protocol.Diagnostic)
	onCrash       func(err error)
}

// NewSession creates a session that lazily spawns its client via spawn on
// first use. spawn is a closure over the server command/args so a crash
// can respawn an identical subprocess.
func NewSession(language string, root protocol.DocumentURI, log *zlog.Logger, spawn func(ctx context.Context) (*Client, error)) *Session {
	return &Session{
		Language:     language,
		Root:         root,
		log:          log,
		spawn:        spawn,
		pending:      make(map[protocol.DocumentURI]*pendingChange),
		backgroundRL: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

// OnDiagnostics registers the callback invoked when the server publishes
// diagnostics for a document.
func (s *Session) OnDiagnostics(fn func(uri protocol.DocumentURI, diags []protocol.Diagnostic)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDiagnostics = fn
}

// OnCrash registers a callback invoked (from the respawn goroutine) every
// time the subprocess exits before Close was called.
func (s *Session) OnCrash(fn func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCrash = fn
}

// ensure returns the live client, spawning and initializing it on first
// call, and respawning it if a previous crash tore it down.
func (s *Session) ensure(ctx context.Context) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	if s.closed {
		return nil, context.Canceled
	}
	client, err := s.spawnAndInit(ctx)
	if err != nil {
		return nil, err
	}
	s.client = client
	go s.watch(client)
	return client, nil
}

func (s *Session) spawnAndInit(ctx context.Context) (*Client, error) {
	client, err := s.spawn(ctx)
	if err != nil {
		return nil, err
	}
	client.SetNotifyHandler(s.handleNotify)
	raw, err := client.Initialize(ctx, s.Root)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	s.caps = ParseCapabilities(raw)
	return client, nil
}

// watch waits for the subprocess to exit, then respawns it with
// exponential backoff (500ms up to a 30s cap) as long as the session
// hasn't been explicitly closed.
func (s *Session) watch(client *Client) {
	defer s.log.RecoverPanic("lsp.Session.watch:"+s.Language, nil)
	_ = client.cmd.Wait()

	s.mu.Lock()
	wasClosed := s.closed
	if s.client == client {
		s.client = nil
	}
	onCrash := s.onCrash
	s.mu.Unlock()

	if wasClosed {
		return
	}
	s.log.Warnf("language server %q for %s exited, respawning", s.Language, s.Root)
	if onCrash != nil {
		onCrash(context.Canceled)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0 // retry indefinitely; the editor stays usable without LSP features meanwhile

	for {
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return
		}
		time.Sleep(wait)

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		newClient, err := s.spawnAndInit(context.Background())
		if err != nil {
			s.log.Warnf("respawn of %q failed: %v", s.Language, err)
			continue
		}
		s.mu.Lock()
		s.client = newClient
		s.mu.Unlock()
		go s.watch(newClient)
		s.log.Infof("language server %q for %s respawned", s.Language, s.Root)
		return
	}
}

func (s *Session) handleNotify(method string, params json.RawMessage) {
	if method != "textDocument/publishDiagnostics" {
		return
	}
	var payload struct {
		URI         protocol.DocumentURI  `json:"uri"`
		Diagnostics []protocol.Diagnostic `json:"diagnostics"`
	}
	if err := json.Unmarshal(params, &payload); err != nil {
		return
	}
	s.mu.Lock()
	fn := s.onDiagnostics
	s.mu.Unlock()
	if fn != nil {
		fn(payload.URI, payload.Diagnostics)
	}
}

// Capabilities returns the server's negotiated capabilities, spawning the
// session if it hasn't started yet.
func (s *Session) Capabilities(ctx context.Context) (Capabilities, error) {
	if _, err := s.ensure(ctx); err != nil {
		return Capabilities{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps, nil
}

// DidOpen forwards to the client, spawning the session if needed.
func (s *Session) DidOpen(ctx context.Context, uri protocol.DocumentURI, languageID string, version int, text string) error {
	client, err := s.ensure(ctx)
	if err != nil {
		return err
	}
	return client.DidOpen(ctx, uri, languageID, version, text)
}

// DidChange debounces rapid edits to the same document into one
// notification per changeDebounce pause, per §4.7's incremental-sync
// coalescing requirement.
func (s *Session) DidChange(ctx context.Context, uri protocol.DocumentURI, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	client, err := s.ensure(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	pc, ok := s.pending[uri]
	if !ok {
		pc = &pendingChange{uri: uri}
		s.pending[uri] = pc
	}
	pc.version = version
	pc.changes = append(pc.changes, changes...)
	if pc.timer != nil {
		pc.timer.Stop()
	}
	pc.timer = time.AfterFunc(changeDebounce, func() { s.flushChange(ctx, client, uri) })
	s.mu.Unlock()
	return nil
}

func (s *Session) flushChange(ctx context.Context, client *Client, uri protocol.DocumentURI) {
	s.mu.Lock()
	pc, ok := s.pending[uri]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, uri)
	version, changes := pc.version, pc.changes
	s.mu.Unlock()

	if err := client.DidChange(ctx, uri, version, changes); err != nil {
		s.log.Warnf("didChange flush for %s failed: %v", uri, err)
	}
}

// DidSave forwards to the client immediately (saves are not debounced).
func (s *Session) DidSave(ctx context.Context, uri protocol.DocumentURI, text string) error {
	client, err := s.ensure(ctx)
	if err != nil {
		return err
	}
	return client.DidSave(ctx, uri, text)
}

// DidClose forwards to the client.
func (s *Session) DidClose(ctx context.Context, uri protocol.DocumentURI) error {
	client, err := s.ensure(ctx)
	if err != nil {
		return err
	}
	return client.DidClose(ctx, uri)
}

// Completion, HoverInfo, and GoToDefinition are foreground requests: they
// go straight to the client without background pacing since they are
// always the direct result of a user action awaiting a reply.

func (s *Session) Completion(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.CompletionItem, error) {
	client, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return client.Completion(ctx, uri, pos)
}

func (s *Session) Definition(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.Location, error) {
	client, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return client.Definition(ctx, uri, pos)
}

func (s *Session) HoverInfo(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) (*protocol.Hover, error) {
	client, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return client.HoverInfo(ctx, uri, pos)
}

func (s *Session) Rename(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position, newName string) (*protocol.WorkspaceEdit, error) {
	client, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	return client.Rename(ctx, uri, pos, newName)
}

// References is a background-priority request: paced through
// backgroundRL so a "find all references" storm on a large symbol
// doesn't starve foreground completion/hover requests riding the same
// connection.
func (s *Session) References(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]protocol.Location, error) {
	client, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.backgroundRL.Wait(ctx); err != nil {
		return nil, err
	}
	return client.References(ctx, uri, pos)
}

// CodeAction is likewise background-priority.
func (s *Session) CodeAction(ctx context.Context, uri protocol.DocumentURI, rng protocol.Range, diagnostics []protocol.Diagnostic) ([]protocol.CodeAction, error) {
	client, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.backgroundRL.Wait(ctx); err != nil {
		return nil, err
	}
	return client.CodeAction(ctx, uri, rng, diagnostics)
}

// Close shuts down the subprocess and prevents any further respawn.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	client := s.client
	s.client = nil
	for _, pc := range s.pending {
		if pc.timer != nil {
			pc.timer.Stop()
		}
	}
	s.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}
