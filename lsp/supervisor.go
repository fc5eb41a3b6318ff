package lsp

import (
	"context"
	"fmt"
	"sync"

	protocol "github.com/sourcegraph/go-lsp"

	"github.com/zcode-editor/zcode/zerr"
	"github.com/zcode-editor/zcode/zlog"
)

// Supervisor owns every live Session, keyed by (language, workspace root),
// and is the editor's single point of contact with language servers: it
// spawns sessions lazily on first use, tracks which documents are
// currently open so diagnostics for a document nobody has open anymore
// can be dropped cheaply, and fans published diagnostics out to a single
// callback the event loop installs once.
type Supervisor struct {
	log     *zlog.Logger
	servers map[string]ServerConfig

	mu       sync.Mutex
	sessions map[string]*Session
	openDocs map[protocol.DocumentURI]bool

	onDiagnostics func(uri protocol.DocumentURI, diags []protocol.Diagnostic)
}

// NewSupervisor creates a Supervisor that spawns servers according to
// servers (typically config.Config.ResolveServers()).
func NewSupervisor(log *zlog.Logger, servers map[string]ServerConfig) *Supervisor {
	return &Supervisor{
		log:      log,
		servers:  servers,
		sessions: make(map[string]*Session),
		openDocs: make(map[protocol.DocumentURI]bool),
	}
}

// OnDiagnostics installs the callback invoked when any session's server
// publishes diagnostics for a document that is still open.
func (sv *Supervisor) OnDiagnostics(fn func(uri protocol.DocumentURI, diags []protocol.Diagnostic)) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.onDiagnostics = fn
}

func sessionKey(language string, root protocol.DocumentURI) string {
	return language + "\x00" + string(root)
}

// Session returns the session for (language, root), spawning it (and its
// subprocess, lazily on first LSP call, not here) if one doesn't exist
// yet. Returns Unsupported if no server is configured for language.
func (sv *Supervisor) Session(language string, root protocol.DocumentURI) (*Session, error) {
	cfg, ok := sv.servers[language]
	if !ok {
		return nil, zerr.New(zerr.Unsupported, fmt.Sprintf("no language server configured for %q", language))
	}

	sv.mu.Lock()
	defer sv.mu.Unlock()
	key := sessionKey(language, root)
	if s, ok := sv.sessions[key]; ok {
		return s, nil
	}

	sessionLog := sv.log.With(fmt.Sprintf("lsp:%s", language))
	s := NewSession(language, root, sessionLog, func(ctx context.Context) (*Client, error) {
		return NewClient(ctx, sessionLog, cfg.Command, cfg.Args...)
	})
	s.OnDiagnostics(sv.routeDiagnostics)
	sv.sessions[key] = s
	return s, nil
}

// routeDiagnostics drops diagnostics for documents the editor no longer
// has open, sniffing the URI field is unnecessary here since Session
// already decoded the payload — the openDocs check itself is the cheap
// early-out this method exists for.
func (sv *Supervisor) routeDiagnostics(uri protocol.DocumentURI, diags []protocol.Diagnostic) {
	sv.mu.Lock()
	open := sv.openDocs[uri]
	fn := sv.onDiagnostics
	sv.mu.Unlock()
	if !open || fn == nil {
		return
	}
	fn(uri, diags)
}

// MarkOpen records uri as open so its diagnostics are delivered.
func (sv *Supervisor) MarkOpen(uri protocol.DocumentURI) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.openDocs[uri] = true
}

// MarkClosed stops delivering diagnostics for uri.
func (sv *Supervisor) MarkClosed(uri protocol.DocumentURI) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	delete(sv.openDocs, uri)
}

// CloseAll shuts down every session's subprocess. Called on editor exit.
func (sv *Supervisor) CloseAll() {
	sv.mu.Lock()
	sessions := make([]*Session, 0, len(sv.sessions))
	for _, s := range sv.sessions {
		sessions = append(sessions, s)
	}
	sv.sessions = make(map[string]*Session)
	sv.mu.Unlock()

	for _, s := range sessions {
		if err := s.Close(); err != nil {
			sv.log.Warnf("closing session %q: %v", s.Language, err)
		}
	}
}
